package face

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/facegen/internal/selector"
)

// FailurePolicy decides what a batch does when a round fails.
type FailurePolicy int

const (
	// FailAbort stops the batch at the first failed round.
	FailAbort FailurePolicy = iota
	// FailSkip logs the failed round and carries on.
	FailSkip
)

func (p FailurePolicy) String() string {
	switch p {
	case FailAbort:
		return "abort"
	case FailSkip:
		return "skip"
	default:
		return fmt.Sprintf("policy(%d)", int(p))
	}
}

// ParseFailurePolicy converts a config or flag value to a FailurePolicy.
func ParseFailurePolicy(s string) (FailurePolicy, error) {
	switch s {
	case "", "abort":
		return FailAbort, nil
	case "skip":
		return FailSkip, nil
	default:
		return 0, fmt.Errorf("unknown failure policy %q", s)
	}
}

// RoundError is a failed round of a batch.
type RoundError struct {
	Round int
	Err   error
}

func (e *RoundError) Error() string {
	return fmt.Sprintf("round %d: %v", e.Round, e.Err)
}

func (e *RoundError) Unwrap() error { return e.Err }

// BatchResult holds the faces of a batch in round order. Failed lists
// the rounds skipped under FailSkip.
type BatchResult struct {
	Faces  []*Face
	Failed []*RoundError
}

// Batch runs n independent rounds. Under FailAbort the first failure is
// returned as a *RoundError together with the faces generated so far.
func (a *Assembler) Batch(n int, fams []selector.Family, policy FailurePolicy) (*BatchResult, error) {
	res := &BatchResult{Faces: make([]*Face, 0, n)}

	for i := 0; i < n; i++ {
		f, err := a.Generate(fams)
		if err != nil {
			rerr := &RoundError{Round: i, Err: err}
			if policy == FailAbort {
				return res, rerr
			}
			a.log.Warn("skipping failed round", zap.Int("round", i), zap.Error(err))
			res.Failed = append(res.Failed, rerr)
			continue
		}
		f.Index = i
		res.Faces = append(res.Faces, f)
	}

	a.log.Info("batch complete",
		zap.Int("requested", n),
		zap.Int("generated", len(res.Faces)),
		zap.Int("failed", len(res.Failed)))
	return res, nil
}

// UnknownGroups returns the family candidates that name no indexed
// group. Such candidates still count in the draw but draw nothing.
func (a *Assembler) UnknownGroups(fams []selector.Family) []string {
	known := make(map[string]bool, len(a.groups))
	for _, g := range a.groups {
		known[g.Name] = true
	}

	seen := map[string]bool{}
	var unknown []string
	for _, f := range fams {
		for _, name := range f.Groups {
			if name == selector.Skip || known[name] || seen[name] {
				continue
			}
			seen[name] = true
			unknown = append(unknown, name)
		}
	}
	return unknown
}
