package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/Faultbox/facegen/internal/parts"
	"github.com/Faultbox/facegen/pkg/aseprite"
)

func inspectCommand() *cli.Command {
	return &cli.Command{
		Name:      "inspect",
		Usage:     "Show the palette, layers and groups of a sprite",
		ArgsUsage: "INPUT",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "addressing", Usage: "layer-order or group-count"},
		},
		Action: func(c *cli.Context) error {
			input := c.Args().First()
			cfg := loadedConfig(c)
			if input == "" {
				input = cfg.Sprite.Path
			}
			if input == "" {
				cli.ShowCommandHelpAndExit(c, c.Command.Name, 1)
			}
			if c.IsSet("addressing") {
				cfg.Sprite.Addressing = c.String("addressing")
			}

			addressing, err := parts.ParseAddressing(cfg.Sprite.Addressing)
			if err != nil {
				return cli.Exit(err, 1)
			}
			if err := inspect(os.Stdout, input, addressing, cfg.Elements.Weights); err != nil {
				return cli.Exit(err, 1)
			}
			return nil
		},
	}
}

func inspect(w io.Writer, input string, addressing parts.Addressing, weights map[string]map[string]float64) error {
	f, err := aseprite.DecodeFile(input)
	if err != nil {
		return err
	}
	pal, err := f.Palette()
	if err != nil {
		return err
	}
	ix, err := parts.Build(f, parts.Options{Addressing: addressing, Weights: weights})
	if err != nil {
		return err
	}

	head := color.New(color.FgCyan, color.Bold)
	dim := color.New(color.FgHiBlack)
	warn := color.New(color.FgYellow)

	head.Fprintf(w, "%s\n", input)
	fmt.Fprintf(w, "  Size:       %dx%d\n", f.Width, f.Height)
	fmt.Fprintf(w, "  Frames:     %d (first decoded)\n", f.FrameCount)
	fmt.Fprintf(w, "  Palette:    %d colors\n", pal.Len())
	fmt.Fprintf(w, "  Addressing: %s\n", addressing)

	head.Fprintln(w, "\nLayers")
	for _, l := range f.Layers() {
		indent := strings.Repeat("  ", l.ChildLevel)
		cel := "no cel"
		if c, ok := f.Cel(l.Index); ok {
			cel = fmt.Sprintf("cel %dx%d at (%d,%d)", c.Width, c.Height, c.X, c.Y)
		}
		fmt.Fprintf(w, "  %3d %s%s ", l.Index, indent, l.Name)
		dim.Fprintf(w, "[%s, %s]\n", l.Kind, cel)
	}

	head.Fprintln(w, "\nGroups")
	for _, g := range ix.Groups {
		fmt.Fprintf(w, "  %s (%d elements)\n", g.Name, len(g.Elements))
		for _, e := range g.Elements {
			fmt.Fprintf(w, "    %-20s ", e.Name)
			dim.Fprintf(w, "weight %g\n", e.Weight)
		}
	}

	if len(ix.Missing) > 0 {
		head.Fprintln(w, "\nMissing cels")
		for _, m := range ix.Missing {
			warn.Fprintf(w, "  %v\n", m)
		}
	}
	return nil
}
