package graph

// perceiveRings computes ring membership for every bond and atom.  A bond is
// a ring bond iff it lies on some cycle, which holds exactly when its
// endpoints remain connected after the bond is removed.  Connectivity is
// tested with an iterative BFS so fused polycyclic systems terminate cleanly.
//
// Molecular graphs are small (tens to low hundreds of atoms), so the
// per-bond BFS is well within budget and keeps the logic obvious compared to
// a biconnected-components pass.
func (g *Graph) perceiveRings() {
	for i := range g.bonds {
		b := &g.bonds[i]
		if g.connectedWithout(b.A, b.B, b) {
			b.InRing = true
			g.atoms[b.A].InRing = true
			g.atoms[b.B].InRing = true
		}
	}
}

// connectedWithout reports whether target is reachable from start while the
// excluded bond is treated as absent.
func (g *Graph) connectedWithout(start, target int, excluded *Bond) bool {
	visited := make([]bool, len(g.atoms))
	visited[start] = true
	queue := []int{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, n := range g.adj[cur] {
			if n.Bond == excluded || visited[n.Atom] {
				continue
			}
			if n.Atom == target {
				return true
			}
			visited[n.Atom] = true
			queue = append(queue, n.Atom)
		}
	}
	return false
}

// RingBondCount returns the number of bonds that lie on a cycle.
func (g *Graph) RingBondCount() int {
	count := 0
	for i := range g.bonds {
		if g.bonds[i].InRing {
			count++
		}
	}
	return count
}

// RingAtomCount returns the number of atoms that lie on a cycle.
func (g *Graph) RingAtomCount() int {
	count := 0
	for i := range g.atoms {
		if g.atoms[i].InRing {
			count++
		}
	}
	return count
}

// CycleRank returns the circuit rank (number of independent cycles):
// bonds − atoms + fragments.  Zero for acyclic molecules.
func (g *Graph) CycleRank() int {
	return len(g.bonds) - len(g.atoms) + len(g.Fragments())
}
