package lookahead

import (
	"math"

	"github.com/dekarrin/lrgen/internal/bitset"
)

// Digraph is the single reusable routine behind all three DeRemer–Pennello
// transitive closures (SLR Follow, LALR Read, LALR Follow): a Tarjan-style
// SCC traversal that computes, for every vertex x, the least fixed point
//
//	F(x) = I(x) ∪ ⋃{F(y) : x has an edge to y}
//
// over bitset.Set-valued initial sets and accumulators. Every vertex in an
// SCC converges to the same F value, matching the mutual-recursion case the
// digraph relations over grammar transitions exhibit (e.g. left-recursive
// nonterminals).
//
// vertices enumerates the traversal's roots (every vertex must appear, but
// duplicates and vertices only reachable via edges are handled correctly).
// indexOf projects a vertex to a dense index in [0, numVertices). edgesOf
// returns a vertex's out-neighbors. initial supplies I(x); it is evaluated
// at most once per vertex regardless of how many times the vertex is
// reached, satisfying the "each I(x) evaluated at most once" requirement
// for algorithms where I(x) is itself the result of a nested digraph run.
func Digraph[V comparable](
	vertices []V,
	numVertices int,
	indexOf func(V) int,
	edgesOf func(V) []V,
	initial func(V) bitset.Set,
) []bitset.Set {
	const unvisited = 0
	// done must sort above every real depth so a cross-edge into an
	// already-finished (and already-broadcast) vertex never lowers a
	// still-live vertex's low-link.
	const done = math.MaxInt

	depthOf := make([]int, numVertices)
	f := make([]bitset.Set, numVertices)
	haveInitial := make([]bool, numVertices)

	stack := make([]V, 0, numVertices)
	depth := 0

	ensureInitial := func(x V, xi int) bitset.Set {
		if !haveInitial[xi] {
			f[xi] = initial(x)
			haveInitial[xi] = true
		}
		return f[xi]
	}

	var traverse func(x V)
	traverse = func(x V) {
		xi := indexOf(x)
		stack = append(stack, x)
		depth++
		d := depth
		depthOf[xi] = d
		f[xi] = ensureInitial(x, xi)

		for _, y := range edgesOf(x) {
			yi := indexOf(y)
			if depthOf[yi] == unvisited {
				traverse(y)
			}
			if depthOf[yi] < depthOf[xi] {
				depthOf[xi] = depthOf[yi]
			}
			f[xi].UnionAssign(f[yi])
		}

		if depthOf[xi] == d {
			for {
				top := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				zi := indexOf(top)
				depthOf[zi] = done
				f[zi] = f[xi]
				if zi == xi {
					break
				}
			}
		}
	}

	for _, v := range vertices {
		if depthOf[indexOf(v)] == unvisited {
			traverse(v)
		}
	}

	return f
}
