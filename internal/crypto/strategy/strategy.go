// Package strategy schedules the doublings and isogeny evaluations of a
// (2,2)-isogeny chain.
//
// A strategy for a chain of length n is a list of n-1 positive integers.
// Starting from a single kernel entry of height n, each entry d doubles the
// most recent kernel entry d times and keeps the result with height h-d;
// an entry of height 1 is consumed by the next isogeny, which decrements
// the height of everything still held.
package strategy

import (
	"errors"
	"fmt"
)

var (
	ErrChainLength    = errors.New("strategy: chain length must be positive")
	ErrStrategyLength = errors.New("strategy: wrong number of entries")
	ErrStrategyEntry  = errors.New("strategy: entry out of range")
	ErrPlanComplete   = errors.New("strategy: all steps already scheduled")
)

// OpKind is the kind of operation a Planner schedules.
type OpKind int

const (
	// OpDouble doubles the top kernel entry Count times and pushes the
	// result.
	OpDouble OpKind = iota + 1
	// OpStep pops the top kernel entry, builds the isogeny it spans and
	// pushes everything else through it. Count is the step index.
	OpStep
)

func (k OpKind) String() string {
	switch k {
	case OpDouble:
		return "double"
	case OpStep:
		return "step"
	default:
		return fmt.Sprintf("OpKind(%d)", int(k))
	}
}

// Op is one scheduled operation.
type Op struct {
	Kind  OpKind
	Count int
}

func (o Op) String() string {
	return fmt.Sprintf("%s %d", o.Kind, o.Count)
}

// Planner walks a strategy with an explicit stack of kernel heights.
type Planner struct {
	n       int
	doubles []int
	next    int
	steps   int
	heights []int
}

// NewPlanner checks the length of doubles and returns a planner positioned
// before the first operation.
func NewPlanner(n int, doubles []int) (*Planner, error) {
	if n < 1 {
		return nil, ErrChainLength
	}
	if len(doubles) != n-1 {
		return nil, fmt.Errorf("%w: have %d, want %d", ErrStrategyLength, len(doubles), n-1)
	}
	return &Planner{n: n, doubles: doubles, heights: []int{n}}, nil
}

// Done reports whether all n steps have been scheduled.
func (p *Planner) Done() bool {
	return p.steps == p.n
}

// Steps returns the number of steps scheduled so far.
func (p *Planner) Steps() int {
	return p.steps
}

// stack returns the heights of the held kernel entries, bottom first.
func (p *Planner) stack() []int {
	return append([]int(nil), p.heights...)
}

// Next advances the planner by one operation. It fails once every step has
// been scheduled or when the strategy is malformed.
func (p *Planner) Next() (Op, error) {
	if p.Done() {
		return Op{}, ErrPlanComplete
	}
	top := len(p.heights) - 1
	h := p.heights[top]
	if h > 1 {
		if p.next >= len(p.doubles) {
			return Op{}, fmt.Errorf("%w: exhausted before step %d", ErrStrategyLength, p.steps)
		}
		d := p.doubles[p.next]
		if d <= 0 || d >= h {
			return Op{}, fmt.Errorf("%w: entry %d is %d, height is %d", ErrStrategyEntry, p.next, d, h)
		}
		p.next++
		p.heights = append(p.heights, h-d)
		return Op{Kind: OpDouble, Count: d}, nil
	}

	p.heights = p.heights[:top]
	for i := range p.heights {
		p.heights[i]--
	}
	step := p.steps
	p.steps++
	if p.Done() && p.next != len(p.doubles) {
		return Op{}, fmt.Errorf("%w: %d entries unused", ErrStrategyLength, len(p.doubles)-p.next)
	}
	return Op{Kind: OpStep, Count: step}, nil
}

// Validate dry-runs the planner over doubles.
func Validate(n int, doubles []int) error {
	p, err := NewPlanner(n, doubles)
	if err != nil {
		return err
	}
	for !p.Done() {
		if _, err := p.Next(); err != nil {
			return err
		}
	}
	return nil
}

// Walk returns the full operation sequence.
func Walk(n int, doubles []int) ([]Op, error) {
	p, err := NewPlanner(n, doubles)
	if err != nil {
		return nil, err
	}
	var ops []Op
	for !p.Done() {
		op, err := p.Next()
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}
	return ops, nil
}

// Balanced splits every subtree in half.
func Balanced(n int) []int {
	out := make([]int, 0, n)
	var rec func(h int)
	rec = func(h int) {
		if h <= 1 {
			return
		}
		d := h / 2
		out = append(out, d)
		rec(h - d)
		rec(d)
	}
	rec(n)
	return out
}
