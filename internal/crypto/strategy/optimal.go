package strategy

import (
	"fmt"
	"math"

	lru "github.com/hashicorp/golang-lru"
)

// Costs are the relative prices of field multiplication, squaring and
// inversion, typically measured in nanoseconds.
type Costs struct {
	Mul, Sqr, Inv int64
}

// FESTACosts were measured for the 1293-bit FESTA prime.
var FESTACosts = Costs{Mul: 2717, Sqr: 2265, Inv: 54823}

// Plan is an optimised strategy together with the cheaper step formula for
// every step.
type Plan struct {
	Doubles     []int
	InverseFree []bool
	Cost        int64
}

// model prices the chain operations. Index [f] selects the generic (0) or
// inverse-free (1) step formula and [l] whether the operation sits on the
// leftmost edge of the tree, i.e. on the elliptic product before gluing.
type model struct {
	pre      [2]int64
	dbl      [2][2]int64
	dblFirst int64 // extra cost of the first inverse-free doubling on the product
	img      [2][2]int64
	cod      [2][2]int64
}

func newModel(c Costs) model {
	m, s, i := c.Mul, c.Sqr, c.Inv
	return model{
		pre:      [2]int64{4*s + 21*m + i, 4*s + 12*m},
		dbl:      [2][2]int64{{8*s + 6*m, 12*s + 12*m}, {8*s + 8*m, 8*s + 14*m}},
		dblFirst: 6*s + 22*m,
		img:      [2][2]int64{{4*s + 3*m, 18*s + 82*m + i}, {4*s + 4*m, 18*s + 81*m}},
		cod:      [2][2]int64{{8*s + 23*m + i, 8*s + 13*m + i}, {8*s + 9*m, 8*s + 4*m}},
	}
}

func (md *model) doubling(n, f, l int) int64 {
	c := int64(n) * md.dbl[f][l]
	if f == 1 && l == 1 {
		c += md.dblFirst
	}
	return c
}

func (md *model) images(count, inverseFree, l int) int64 {
	return int64(inverseFree)*md.img[1][l] + int64(count-inverseFree)*md.img[0][l]
}

// codomain: the generic formula pays for a fresh precomputation unless the
// subtree already did it, the inverse-free one depends on the edge.
func (md *model) codomain(f, l, precomp int) int64 {
	if f == 1 {
		return md.cod[f][l]
	}
	return md.cod[f][precomp]
}

type state struct {
	n, f, l, precomp int
}

type result struct {
	cost  int64
	split int
	// right is the formula of the right subtree.
	right int
	// inverseFree counts inverse-free steps in the subtree.
	inverseFree int
}

// optimiser evaluates the tree cost recursion. Every evaluated state
// records its best split in checkpoints[l][n]; the strategy is read back
// from those checkpoints.
type optimiser struct {
	md          model
	memo        map[state]result
	checkpoints [2]map[int]int
}

func (o *optimiser) cost(s state) result {
	if r, ok := o.memo[s]; ok {
		return r
	}
	if s.n <= 1 {
		r := result{cost: o.md.codomain(s.f, s.l, s.precomp), inverseFree: s.f}
		o.memo[s] = r
		return r
	}

	best := result{cost: math.MaxInt64}
	for i := 1; i < s.n; i++ {
		var c int64
		if s.precomp == 0 {
			c = o.md.pre[s.f]
		}
		c += 2 * o.md.doubling(i, s.f, s.l)
		left := o.cost(state{n: s.n - i, f: s.f, l: s.l, precomp: 1})
		c += left.cost + 2*o.md.images(s.n-i, left.inverseFree, s.l)

		right, rf := o.cost(state{n: i, f: 0}), 0
		if alt := o.cost(state{n: i, f: 1}); alt.cost <= right.cost {
			right, rf = alt, 1
		}
		c += right.cost

		if c < best.cost {
			best = result{cost: c, split: i, right: rf, inverseFree: left.inverseFree + right.inverseFree}
			o.checkpoints[s.l][s.n] = i
		}
	}
	o.memo[s] = best
	return best
}

// formulas expands the per-step formula choice of the best tree for s.
func (o *optimiser) formulas(s state, out []bool) []bool {
	if s.n <= 1 {
		return append(out, s.f == 1)
	}
	r := o.memo[s]
	out = o.formulas(state{n: s.n - r.split, f: s.f, l: s.l, precomp: 1}, out)
	return o.formulas(state{n: r.split, f: r.right}, out)
}

func convert(n int, checkpoints [2]map[int]int) ([]int, error) {
	kernels := []int{n}
	doubles := make([]int, 0, n)
	l := 1
	for len(kernels) > 0 {
		top := kernels[len(kernels)-1]
		if top == 1 {
			kernels = kernels[:len(kernels)-1]
			for i := range kernels {
				kernels[i]--
			}
			l = 0
			continue
		}
		d, ok := checkpoints[l][top]
		if !ok {
			return nil, fmt.Errorf("strategy: no split recorded for height %d", top)
		}
		doubles = append(doubles, d)
		kernels = append(kernels, top-d)
	}
	return doubles, nil
}

func copyCheckpoints(c [2]map[int]int) [2]map[int]int {
	var out [2]map[int]int
	for i := range c {
		out[i] = make(map[int]int, len(c[i]))
		for k, v := range c[i] {
			out[i][k] = v
		}
	}
	return out
}

type planKey struct {
	n int
	c Costs
}

var planCache = mustCache(32)

func mustCache(size int) *lru.Cache {
	c, err := lru.New(size)
	if err != nil {
		panic(fmt.Sprintf("strategy: plan cache: %v", err))
	}
	return c
}

// Optimal returns the cheapest strategy for a chain of length n under the
// cost model. Gluing-side doublings and images are priced separately from
// the rest of the tree, and every subtree may use either step formula.
func Optimal(n int, c Costs) (Plan, error) {
	if n < 1 {
		return Plan{}, ErrChainLength
	}
	key := planKey{n: n, c: c}
	if v, ok := planCache.Get(key); ok {
		return clonePlan(v.(Plan)), nil
	}

	o := &optimiser{
		md:          newModel(c),
		memo:        make(map[state]result),
		checkpoints: [2]map[int]int{{}, {}},
	}
	generic := state{n: n, f: 0, l: 1, precomp: 1}
	fast := state{n: n, f: 1, l: 1, precomp: 1}

	old := o.cost(generic)
	oldCheckpoints := copyCheckpoints(o.checkpoints)
	root, checkpoints := fast, o.checkpoints
	if r := o.cost(fast); old.cost < r.cost {
		root, checkpoints = generic, oldCheckpoints
	}

	doubles, err := convert(n, checkpoints)
	if err != nil {
		return Plan{}, err
	}
	plan := Plan{
		Doubles:     doubles,
		InverseFree: o.formulas(root, make([]bool, 0, n)),
		Cost:        o.memo[root].cost,
	}
	planCache.Add(key, clonePlan(plan))
	return plan, nil
}

func clonePlan(p Plan) Plan {
	out := Plan{
		Doubles:     make([]int, len(p.Doubles)),
		InverseFree: make([]bool, len(p.InverseFree)),
		Cost:        p.Cost,
	}
	copy(out.Doubles, p.Doubles)
	copy(out.InverseFree, p.InverseFree)
	return out
}

// node is a strategy read as a tree: d doublings split a subtree of height
// h into a left subtree of height h-d and a right one of height d.
type node struct {
	h, d        int
	left, right *node
}

func parseTree(h int, doubles []int, pos *int) (*node, error) {
	if h <= 1 {
		return &node{h: h}, nil
	}
	if *pos >= len(doubles) {
		return nil, fmt.Errorf("%w: exhausted at height %d", ErrStrategyLength, h)
	}
	d := doubles[*pos]
	if d <= 0 || d >= h {
		return nil, fmt.Errorf("%w: entry %d is %d, height is %d", ErrStrategyEntry, *pos, d, h)
	}
	*pos++
	left, err := parseTree(h-d, doubles, pos)
	if err != nil {
		return nil, err
	}
	right, err := parseTree(d, doubles, pos)
	if err != nil {
		return nil, err
	}
	return &node{h: h, d: d, left: left, right: right}, nil
}

type nodeState struct {
	nd            *node
	f, l, precomp int
}

// Cost prices a given strategy under the same model as Optimal, choosing
// the cheaper formula for every subtree.
func Cost(n int, doubles []int, c Costs) (int64, error) {
	if err := Validate(n, doubles); err != nil {
		return 0, err
	}
	pos := 0
	root, err := parseTree(n, doubles, &pos)
	if err != nil {
		return 0, err
	}

	md := newModel(c)
	memo := make(map[nodeState]result)
	var eval func(s nodeState) result
	eval = func(s nodeState) result {
		if r, ok := memo[s]; ok {
			return r
		}
		nd := s.nd
		if nd.h <= 1 {
			r := result{cost: md.codomain(s.f, s.l, s.precomp), inverseFree: s.f}
			memo[s] = r
			return r
		}
		var total int64
		if s.precomp == 0 {
			total = md.pre[s.f]
		}
		total += 2 * md.doubling(nd.d, s.f, s.l)
		left := eval(nodeState{nd: nd.left, f: s.f, l: s.l, precomp: 1})
		total += left.cost + 2*md.images(nd.h-nd.d, left.inverseFree, s.l)
		right := eval(nodeState{nd: nd.right, f: 0})
		if alt := eval(nodeState{nd: nd.right, f: 1}); alt.cost <= right.cost {
			right = alt
		}
		r := result{cost: total + right.cost, inverseFree: left.inverseFree + right.inverseFree}
		memo[s] = r
		return r
	}

	generic := eval(nodeState{nd: root, f: 0, l: 1, precomp: 1})
	fast := eval(nodeState{nd: root, f: 1, l: 1, precomp: 1})
	if generic.cost < fast.cost {
		return generic.cost, nil
	}
	return fast.cost, nil
}
