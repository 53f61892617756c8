//go:build ignore

// This program generates a sample sprite and group-family file.
// Run with: go run generate.go
package main

import (
	"os"

	"github.com/Faultbox/facegen/pkg/aseprite/asepritetest"
)

func main() {
	skin := asepritetest.Opaque(0xf1, 0xc2, 0x7d)
	eye := asepritetest.Opaque(0x20, 0x20, 0x40)
	hair := asepritetest.Opaque(0x6b, 0x3e, 0x1e)
	hat := asepritetest.Opaque(0xc0, 0x30, 0x30)

	// Layers: 0 Head, 1 Round, 2 Eyes, 3 Dots, 4 Wide, 5 Hair, 6 Short, 7 Long, 8 Hat, 9 Cap
	b := asepritetest.New(16, 16).
		Palette(asepritetest.Opaque(0, 0, 0), skin, eye, hair, hat).
		Group("Head").
		Child("Round").
		Group("Eyes").
		Child("Dots").
		Child("Wide").
		Group("Hair").
		Child("Short").
		Child("Long").
		Group("Hat").
		Child("Cap").
		Cel(1, 3, 3, 10, 11, asepritetest.Fill(10, 11, 1)).
		Cel(3, 5, 8, 6, 1, []byte{2, 0, 0, 0, 0, 2}).
		Cel(4, 4, 7, 8, 2, []byte{2, 2, 0, 0, 0, 0, 2, 2, 2, 2, 0, 0, 0, 0, 2, 2}).
		Cel(6, 3, 2, 10, 2, asepritetest.Fill(10, 2, 3)).
		Cel(7, 2, 2, 12, 8, asepritetest.Fill(12, 8, 3)).
		Cel(9, 2, 0, 12, 3, asepritetest.Fill(12, 3, 4))

	if err := os.WriteFile("faces.aseprite", b.Bytes(), 0644); err != nil {
		panic(err)
	}

	families := `[
  [["Head"], [1]],
  [["Eyes"], [1]],
  [["", "Hair"], [1, 3]],
  [["", "Hat"], [3, 1]]
]
`
	if err := os.WriteFile("facebuilder.json", []byte(families), 0644); err != nil {
		panic(err)
	}

	println("Generated faces.aseprite:", len(b.Bytes()), "bytes")
	println("  - 4 groups (Head, Eyes, Hair, Hat)")
	println("Generated facebuilder.json: 4 families")
}
