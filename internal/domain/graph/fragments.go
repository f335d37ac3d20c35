package graph

import "sort"

// Fragments returns the connected components of the graph as slices of atom
// indices in ascending order.  Disconnected inputs (salts, mixtures) are
// legal; the fingerprint engines treat each fragment independently because
// expansion never crosses a missing bond.
func (g *Graph) Fragments() [][]int {
	visited := make([]bool, len(g.atoms))
	var fragments [][]int

	for start := range g.atoms {
		if visited[start] {
			continue
		}
		component := []int{start}
		visited[start] = true
		queue := []int{start}
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			for _, n := range g.adj[cur] {
				if visited[n.Atom] {
					continue
				}
				visited[n.Atom] = true
				component = append(component, n.Atom)
				queue = append(queue, n.Atom)
			}
		}
		// BFS discovery order from an ascending start is not itself sorted;
		// normalise so callers get a stable form.
		sort.Ints(component)
		fragments = append(fragments, component)
	}
	return fragments
}
