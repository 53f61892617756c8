// Package selector makes the weighted random choices of a generation
// round: which groups take part and which element each one draws.
//
// All randomness comes from the rand.Source handed to New. Seeding that
// source once reproduces a whole run.
package selector

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/sampleuv"

	"github.com/Faultbox/facegen/internal/parts"
)

// Selection errors.
var (
	ErrEmptyWeight   = errors.New("selector: total weight is zero")
	ErrInvalidWeight = errors.New("selector: invalid weight")
	ErrInvalidFamily = errors.New("selector: invalid group family")
)

// Skip is the family candidate that activates no group.
const Skip = ""

// Family is a mutually exclusive choice of at most one group per round.
// Groups and Weights are parallel.
type Family struct {
	Groups  []string
	Weights []float64
}

// Validate checks the family shape and weights.
func (f Family) Validate() error {
	if len(f.Groups) == 0 {
		return fmt.Errorf("%w: no candidates", ErrInvalidFamily)
	}
	if len(f.Groups) != len(f.Weights) {
		return fmt.Errorf("%w: %d groups but %d weights", ErrInvalidFamily, len(f.Groups), len(f.Weights))
	}
	_, err := checkWeights(f.Weights)
	return err
}

func checkWeights(w []float64) (float64, error) {
	var sum float64
	for i, v := range w {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, fmt.Errorf("%w: weight %d is %v", ErrInvalidWeight, i, v)
		}
		sum += v
	}
	if sum == 0 {
		return 0, ErrEmptyWeight
	}
	return sum, nil
}

// Selector draws from an injected random source. It is not safe for
// concurrent use.
type Selector struct {
	src rand.Source
}

// New returns a Selector drawing from src.
func New(src rand.Source) *Selector {
	return &Selector{src: src}
}

// NewSeeded returns a Selector over a PCG source seeded with seed.
func NewSeeded(seed uint64) *Selector {
	return New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Draw returns an index with probability proportional to its weight.
// Zero-weight indices are never returned.
func (s *Selector) Draw(weights []float64) (int, error) {
	if _, err := checkWeights(weights); err != nil {
		return -1, err
	}

	w := sampleuv.NewWeighted(weights, s.src)
	for {
		idx, ok := w.Take()
		if !ok {
			return -1, ErrEmptyWeight
		}
		// Rounding at the end of the heap walk can land Take on a zero weight.
		if weights[idx] > 0 {
			return idx, nil
		}
	}
}

// DrawElement draws one element of g by element weight.
func (s *Selector) DrawElement(g parts.Group) (parts.Element, error) {
	if len(g.Elements) == 0 {
		return parts.Element{}, fmt.Errorf("group %q: %w", g.Name, ErrEmptyWeight)
	}
	idx, err := s.Draw(g.Weights())
	if err != nil {
		return parts.Element{}, fmt.Errorf("group %q: %w", g.Name, err)
	}
	return g.Elements[idx], nil
}

// DrawFamily draws one candidate of f. ok is false when the skip
// candidate was drawn.
func (s *Selector) DrawFamily(f Family) (name string, ok bool, err error) {
	if err := f.Validate(); err != nil {
		return "", false, err
	}
	idx, err := s.Draw(f.Weights)
	if err != nil {
		return "", false, err
	}
	name = f.Groups[idx]
	return name, name != Skip, nil
}

// ChooseActiveGroups draws every family in order and returns the drawn
// group names, skips left out.
func (s *Selector) ChooseActiveGroups(fams []Family) ([]string, error) {
	active := make([]string, 0, len(fams))
	for i, f := range fams {
		name, ok, err := s.DrawFamily(f)
		if err != nil {
			return nil, fmt.Errorf("family %d: %w", i, err)
		}
		if ok {
			active = append(active, name)
		}
	}
	return active, nil
}
