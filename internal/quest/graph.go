package quest

import (
	"fmt"
	"sort"
)

// HasCycles reports whether the dependency graph contains a directed
// cycle. Only edges whose prerequisite exists in the manager are
// followed; dangling dependencies cannot participate in a cycle. A quest
// that lists itself as a dependency counts as a cycle.
func (m *Manager) HasCycles() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.hasCyclesLocked()
}

// hasCyclesLocked runs a depth-first search with an explicit stack so
// long dependency chains cannot exhaust the goroutine stack. A node on
// the current path (onStack) reached again closes a cycle.
func (m *Manager) hasCyclesLocked() bool {
	type frame struct {
		id   string
		deps []string
		next int
	}

	visited := make(map[string]bool, len(m.quests))
	onStack := make(map[string]bool)

	for rootID := range m.quests {
		if visited[rootID] {
			continue
		}

		visited[rootID] = true
		onStack[rootID] = true
		stack := []frame{{id: rootID, deps: m.quests[rootID].DependencyList()}}

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			if top.next >= len(top.deps) {
				delete(onStack, top.id)
				stack = stack[:len(stack)-1]
				continue
			}

			dep := top.deps[top.next]
			top.next++

			depQuest, exists := m.quests[dep]
			if !exists {
				continue
			}
			if onStack[dep] {
				return true
			}
			if visited[dep] {
				continue
			}

			visited[dep] = true
			onStack[dep] = true
			stack = append(stack, frame{id: dep, deps: depQuest.DependencyList()})
		}
	}
	return false
}

// CompletionOrder returns an ordering of every quest ID such that each
// quest appears after all of its known prerequisites. Fails with
// ErrConflict if the graph contains a cycle. Dangling dependencies
// contribute no edge and never block ordering. The relative order of
// simultaneously-ready quests is deterministic but not part of the
// contract.
func (m *Manager) CompletionOrder() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.hasCyclesLocked() {
		return nil, fmt.Errorf("%w: cannot determine completion order: graph contains cycles", ErrConflict)
	}

	ids := make([]string, 0, len(m.quests))
	for id := range m.quests {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	// Kahn's algorithm over edges whose prerequisite is a known quest.
	inDegree := make(map[string]int, len(ids))
	dependents := make(map[string][]string, len(ids))
	for _, id := range ids {
		inDegree[id] = 0
	}
	for _, id := range ids {
		for _, dep := range m.quests[id].DependencyList() {
			if _, exists := m.quests[dep]; !exists {
				continue
			}
			dependents[dep] = append(dependents[dep], id)
			inDegree[id]++
		}
	}

	frontier := make([]string, 0, len(ids))
	for _, id := range ids {
		if inDegree[id] == 0 {
			frontier = append(frontier, id)
		}
	}

	order := make([]string, 0, len(ids))
	for head := 0; head < len(frontier); head++ {
		id := frontier[head]
		order = append(order, id)

		for _, dependent := range dependents[id] {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				frontier = append(frontier, dependent)
			}
		}
	}

	if len(order) != len(m.quests) {
		return nil, fmt.Errorf("%w: topological sort covered %d of %d quests despite a cycle-free graph",
			ErrInvariant, len(order), len(m.quests))
	}
	return order, nil
}
