// Package graph builds the formula dependency report for one sheet.
package graph

import (
	"sort"

	"github.com/seolcoding/excelweb/pkg/excelweb/models"
	"github.com/seolcoding/excelweb/pkg/excelweb/refs"
)

// Build constructs the dependency graph for the given formulas. All
// addresses are assumed to be on one sheet; cross-sheet references were
// already stripped by the resolver.
//
// Build never fails. Cells that cannot be ordered end up in Cycles and
// are excluded from CalcOrder; a fully cyclic input yields an empty
// CalcOrder and a Cycles set covering every formula cell.
func Build(formulas []models.Formula) *models.DependencyGraph {
	dependsOn := make(map[models.CellAddress][]models.CellAddress, len(formulas))
	isFormula := make(map[models.CellAddress]bool, len(formulas))
	for _, f := range formulas {
		isFormula[f.Cell] = true
		dependsOn[f.Cell] = append([]models.CellAddress(nil), f.Dependencies...)
	}

	nodes := make(map[models.CellAddress]struct{}, len(formulas))
	dependents := make(map[models.CellAddress][]models.CellAddress)
	indegree := make(map[models.CellAddress]int)
	var edges []models.Edge
	for cell, deps := range dependsOn {
		nodes[cell] = struct{}{}
		for _, dep := range deps {
			nodes[dep] = struct{}{}
			dependents[dep] = append(dependents[dep], cell)
			indegree[cell]++
			edges = append(edges, models.Edge{From: dep, To: cell})
		}
	}

	// Deterministic sweep: seed and adjacency in address order.
	sortedNodes := make([]models.CellAddress, 0, len(nodes))
	for n := range nodes {
		sortedNodes = append(sortedNodes, n)
	}
	refs.SortAddresses(sortedNodes)
	for _, adj := range dependents {
		refs.SortAddresses(adj)
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].From != edges[j].From {
			return refs.Less(edges[i].From, edges[j].From)
		}
		return refs.Less(edges[i].To, edges[j].To)
	})

	// Kahn's algorithm. Non-formula leaf cells carry in-degree 0 and
	// seed the queue alongside dependency-free formulas.
	var queue []models.CellAddress
	for _, n := range sortedNodes {
		if indegree[n] == 0 {
			queue = append(queue, n)
		}
	}

	order := make([]models.CellAddress, 0, len(sortedNodes))
	done := make(map[models.CellAddress]bool, len(sortedNodes))
	for len(queue) > 0 {
		cell := queue[0]
		queue = queue[1:]
		order = append(order, cell)
		done[cell] = true
		for _, dep := range dependents[cell] {
			indegree[dep]--
			if indegree[dep] == 0 {
				queue = append(queue, dep)
			}
		}
	}

	var cycles []models.CellAddress
	for _, n := range sortedNodes {
		if isFormula[n] && !done[n] {
			cycles = append(cycles, n)
		}
	}

	scores, maxDepth := computeScores(formulas, dependsOn, isFormula)

	return &models.DependencyGraph{
		Nodes:     sortedNodes,
		Edges:     edges,
		CalcOrder: order,
		Cycles:    cycles,
		Scores:    scores,
		MaxDepth:  maxDepth,
	}
}

// computeScores derives depth, direct dependency count, and the combined
// complexity score per formula cell. Depth is computed with an explicit
// stack and a memo table so deep dependency chains cannot exhaust the
// call stack. A back-reference into a cell still being expanded counts
// as depth 0, which keeps the sweep finite on cyclic input.
func computeScores(
	formulas []models.Formula,
	dependsOn map[models.CellAddress][]models.CellAddress,
	isFormula map[models.CellAddress]bool,
) (map[models.CellAddress]models.Score, int) {
	memo := make(map[models.CellAddress]int, len(formulas))
	visiting := make(map[models.CellAddress]bool)

	depthOf := func(root models.CellAddress) int {
		if d, ok := memo[root]; ok {
			return d
		}
		stack := []models.CellAddress{root}
		for len(stack) > 0 {
			cell := stack[len(stack)-1]
			if _, ok := memo[cell]; ok {
				stack = stack[:len(stack)-1]
				continue
			}
			visiting[cell] = true

			ready := true
			max := -1
			for _, dep := range dependsOn[cell] {
				if !isFormula[dep] {
					continue
				}
				d, ok := memo[dep]
				if !ok {
					if visiting[dep] {
						d = 0 // cycle back-edge
					} else {
						stack = append(stack, dep)
						ready = false
						continue
					}
				}
				if d > max {
					max = d
				}
			}
			if !ready {
				continue
			}
			if max < 0 {
				memo[cell] = 0
			} else {
				memo[cell] = max + 1
			}
			delete(visiting, cell)
			stack = stack[:len(stack)-1]
		}
		return memo[root]
	}

	scores := make(map[models.CellAddress]models.Score, len(formulas))
	maxDepth := 0
	for _, f := range formulas {
		depth := depthOf(f.Cell)
		direct := len(dependsOn[f.Cell])
		scores[f.Cell] = models.Score{
			Depth:      depth,
			DirectDeps: direct,
			Score:      depth*10 + direct,
		}
		if depth > maxDepth {
			maxDepth = depth
		}
	}
	return scores, maxDepth
}
