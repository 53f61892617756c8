// Package parts indexes the layer groups of a decoded sprite into named
// groups of interchangeable elements.
package parts

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/Faultbox/facegen/pkg/aseprite"
)

// ErrInvalidWeight is returned for negative, NaN or infinite element weights.
var ErrInvalidWeight = errors.New("parts: invalid element weight")

// DefaultWeight is the weight of an element with no configured override.
const DefaultWeight = 1.0

// Addressing selects how a group child is linked to its cel.
type Addressing int

const (
	// AddressLayerOrder uses the child's position in the flattened layer
	// list, counting grouped and ungrouped layers alike.
	AddressLayerOrder Addressing = iota
	// AddressGroupCount adds the number of groups seen so far to the
	// child's ordinal among normal layers. Children declared after a
	// nested group resolve to the wrong cel.
	AddressGroupCount
)

func (a Addressing) String() string {
	switch a {
	case AddressLayerOrder:
		return "layer-order"
	case AddressGroupCount:
		return "group-count"
	default:
		return fmt.Sprintf("addressing(%d)", int(a))
	}
}

// ParseAddressing converts a config or flag value to an Addressing.
func ParseAddressing(s string) (Addressing, error) {
	switch s {
	case "", "layer-order":
		return AddressLayerOrder, nil
	case "group-count":
		return AddressGroupCount, nil
	default:
		return 0, fmt.Errorf("unknown addressing %q", s)
	}
}

// Element is one drawable choice inside a group.
type Element struct {
	Name   string
	Weight float64
	Cel    *aseprite.CelChunk
}

// Group is a named set of elements in declaration order.
type Group struct {
	Name     string
	Elements []Element
}

// Weights returns the element weights in element order.
func (g Group) Weights() []float64 {
	w := make([]float64, len(g.Elements))
	for i, e := range g.Elements {
		w[i] = e.Weight
	}
	return w
}

// MissingCelError reports a group child with no cel in the first frame.
// It is never fatal: the group keeps the children before it.
type MissingCelError struct {
	Group string
	Child string
	Key   int
}

func (e *MissingCelError) Error() string {
	return fmt.Sprintf("group %q: no cel for child %q (layer %d)", e.Group, e.Child, e.Key)
}

// Options controls Build.
type Options struct {
	Addressing Addressing
	// Weights overrides element weights by group name, then element name.
	Weights map[string]map[string]float64
	Logger  *zap.Logger
}

// Index is the result of Build. It is read-only once built.
type Index struct {
	Groups  []Group
	Missing []*MissingCelError
}

// Group returns the group with the given name.
func (ix *Index) Group(name string) (Group, bool) {
	for _, g := range ix.Groups {
		if g.Name == name {
			return g, true
		}
	}
	return Group{}, false
}

// Names returns the group names in file order.
func (ix *Index) Names() []string {
	names := make([]string, len(ix.Groups))
	for i, g := range ix.Groups {
		names[i] = g.Name
	}
	return names
}

// Build walks the layers of the first frame and links every group child
// to its cel. A group stops at its first child without a cel.
func Build(f *aseprite.File, opts Options) (*Index, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	layers := f.Layers()

	// Ordinal of each layer among normal layers, for group-count addressing.
	normalOrdinal := make([]int, len(layers))
	n := 0
	for i, l := range layers {
		normalOrdinal[i] = n
		if l.Kind != aseprite.LayerGroup {
			n++
		}
	}

	ix := &Index{}
	groupCount := 0

	for gi, grp := range layers {
		if grp.Kind != aseprite.LayerGroup {
			continue
		}
		groupCount++

		g := Group{Name: grp.Name}
		for _, child := range children(layers, gi) {
			key := child.Index
			if opts.Addressing == AddressGroupCount {
				key = groupCount + normalOrdinal[child.Index]
			}

			cel, ok := f.Cel(key)
			if !ok {
				miss := &MissingCelError{Group: grp.Name, Child: child.Name, Key: key}
				ix.Missing = append(ix.Missing, miss)
				log.Warn("group truncated at missing cel",
					zap.String("group", grp.Name),
					zap.String("child", child.Name),
					zap.Int("layer", key),
					zap.Int("kept", len(g.Elements)))
				break
			}

			w, err := weightFor(opts.Weights, grp.Name, child.Name)
			if err != nil {
				return nil, err
			}
			g.Elements = append(g.Elements, Element{Name: child.Name, Weight: w, Cel: cel})
		}

		log.Debug("indexed group",
			zap.String("group", g.Name),
			zap.Int("elements", len(g.Elements)))
		ix.Groups = append(ix.Groups, g)
	}

	return ix, nil
}

// children returns the direct drawable children of the group at
// layers[gi]: the following normal layers one level deeper, up to the
// next layer at or above the group's level. Nested groups are indexed
// on their own.
func children(layers []*aseprite.LayerChunk, gi int) []*aseprite.LayerChunk {
	level := layers[gi].ChildLevel
	var out []*aseprite.LayerChunk
	for _, l := range layers[gi+1:] {
		if l.ChildLevel <= level {
			break
		}
		if l.ChildLevel == level+1 && l.Kind != aseprite.LayerGroup {
			out = append(out, l)
		}
	}
	return out
}

func weightFor(weights map[string]map[string]float64, group, element string) (float64, error) {
	w, ok := weights[group][element]
	if !ok {
		return DefaultWeight, nil
	}
	if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
		return 0, fmt.Errorf("%w: %s/%s = %v", ErrInvalidWeight, group, element, w)
	}
	return w, nil
}
