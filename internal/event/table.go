package event

import (
	"errors"
	"fmt"

	"github.com/nidhogg/ambience/internal/sound"
)

// ErrEmptyTable is returned when a table is built without outcomes.
var ErrEmptyTable = errors.New("outcome table is empty")

// Outcome is one candidate result of an ambience draw.
//
// Weight controls how likely the outcome is to be drawn; Duration controls how
// long the owning event stays live once it is. The two are independent.
type Outcome struct {
	Name     string   `json:"name"`
	Sound    sound.ID `json:"sound"`
	Duration int      `json:"duration,omitempty"` // 0 keeps the event default
	Weight   int      `json:"weight,omitempty"`   // 0 counts as 1
}

func (o Outcome) weight() int {
	if o.Weight <= 0 {
		return 1
	}
	return o.Weight
}

// Table is a closed, ordered set of outcomes. Draws cover [1, Span] and the
// last outcome is the catch-all: every integer resolves to exactly one outcome.
type Table struct {
	outcomes []Outcome
	bounds   []int // inclusive upper draw bound per outcome
	span     int
}

// NewTable builds a table from outcomes in order.
func NewTable(outcomes ...Outcome) (*Table, error) {
	if len(outcomes) == 0 {
		return nil, ErrEmptyTable
	}

	t := &Table{
		outcomes: make([]Outcome, len(outcomes)),
		bounds:   make([]int, len(outcomes)),
	}
	copy(t.outcomes, outcomes)

	seen := make(map[string]struct{}, len(outcomes))
	for i, o := range outcomes {
		if o.Name == "" {
			return nil, fmt.Errorf("outcome %d: empty name", i)
		}
		if _, dup := seen[o.Name]; dup {
			return nil, fmt.Errorf("outcome %q: duplicate name", o.Name)
		}
		seen[o.Name] = struct{}{}
		if o.Sound == "" {
			return nil, fmt.Errorf("outcome %q: empty sound", o.Name)
		}
		if o.Duration < 0 {
			return nil, fmt.Errorf("outcome %q: negative duration %d", o.Name, o.Duration)
		}
		if o.Weight < 0 {
			return nil, fmt.Errorf("outcome %q: negative weight %d", o.Name, o.Weight)
		}
		t.span += o.weight()
		t.bounds[i] = t.span
	}
	return t, nil
}

// MustTable is NewTable for static tables; it panics on error.
func MustTable(outcomes ...Outcome) *Table {
	t, err := NewTable(outcomes...)
	if err != nil {
		panic(err)
	}
	return t
}

// Len returns the number of outcomes.
func (t *Table) Len() int { return len(t.outcomes) }

// Span returns the upper bound of the draw range [1, Span].
func (t *Table) Span() int { return t.span }

// Outcomes returns a copy of the outcomes in table order.
func (t *Table) Outcomes() []Outcome {
	out := make([]Outcome, len(t.outcomes))
	copy(out, t.outcomes)
	return out
}

// Draw takes exactly one value from src in [1, Span].
func (t *Table) Draw(src Source) int {
	return Between(src, 1, t.span)
}

// Resolve maps a draw to its outcome. Values outside [1, Span] fall to the
// catch-all.
func (t *Table) Resolve(r int) Outcome {
	last := len(t.outcomes) - 1
	if r < 1 {
		return t.outcomes[last]
	}
	for i := 0; i < last; i++ {
		if r <= t.bounds[i] {
			return t.outcomes[i]
		}
	}
	return t.outcomes[last]
}

// Pick draws once and resolves.
func (t *Table) Pick(src Source) (int, Outcome) {
	r := t.Draw(src)
	return r, t.Resolve(r)
}
