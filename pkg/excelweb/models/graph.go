package models

// Edge is a directed dependency: To depends on From.
type Edge struct {
	// From is the referenced cell.
	From CellAddress `json:"from"`
	// To is the formula cell doing the referencing.
	To CellAddress `json:"to"`
}

// Score holds the per-cell complexity measures of a formula cell.
type Score struct {
	// Depth is the longest chain of formula dependencies below the cell.
	Depth int `json:"depth"`
	// DirectDeps is the number of cells the formula references directly.
	DirectDeps int `json:"direct_deps"`
	// Score is Depth*10 + DirectDeps.
	Score int `json:"score"`
}

// DependencyGraph is the read-only dependency report for one sheet.
// For every edge whose endpoints are outside Cycles, the From cell appears
// before the To cell in CalcOrder.
type DependencyGraph struct {
	// Nodes lists every formula cell and every referenced cell, sorted.
	Nodes []CellAddress `json:"nodes"`
	// Edges lists every dependency, sorted by (From, To).
	Edges []Edge `json:"edges"`
	// CalcOrder is a valid evaluation order for the acyclic subgraph.
	CalcOrder []CellAddress `json:"calc_order"`
	// Cycles holds the formula cells unreachable by the topological sweep.
	Cycles []CellAddress `json:"cycles,omitempty"`
	// Scores maps each formula cell to its complexity measures.
	Scores map[CellAddress]Score `json:"scores"`
	// MaxDepth is the largest Depth over all formula cells.
	MaxDepth int `json:"max_depth"`
}

// HasCycle reports whether any dependency cycle was detected.
func (g *DependencyGraph) HasCycle() bool {
	return len(g.Cycles) > 0
}

// InCycle reports whether cell belongs to a dependency cycle.
func (g *DependencyGraph) InCycle(cell CellAddress) bool {
	for _, c := range g.Cycles {
		if c == cell {
			return true
		}
	}
	return false
}
