// Package wbs turns the flat work-breakdown rows of a project item into
// dotted paths and a nested tree.
//
// Nodes only carry a parent pointer. A node whose parent is not in the set
// is treated as a root, and a parent chain that loops back on itself is cut
// at the node where the loop is detected, so every call terminates.
package wbs

import (
	"cmp"
	"slices"
	"strings"

	"github.com/google/uuid"

	"jobcard_portal/internal/models"
)

const Separator = "."

type Tree struct {
	Node     models.WbsNode `json:"node"`
	Children []*Tree        `json:"children,omitempty"`
}

type resolver struct {
	byID     map[uuid.UUID]models.WbsNode
	memo     map[uuid.UUID]string
	visiting map[uuid.UUID]bool
	roots    map[uuid.UUID]bool
}

func newResolver(nodes []models.WbsNode) *resolver {
	r := &resolver{
		byID:     make(map[uuid.UUID]models.WbsNode, len(nodes)),
		memo:     make(map[uuid.UUID]string, len(nodes)),
		visiting: make(map[uuid.UUID]bool),
		roots:    make(map[uuid.UUID]bool),
	}
	for _, n := range nodes {
		r.byID[n.ID] = n
	}
	for _, n := range nodes {
		r.path(n.ID)
	}
	return r
}

func (r *resolver) path(id uuid.UUID) string {
	if p, ok := r.memo[id]; ok {
		return p
	}
	n := r.byID[id]

	parentID := n.ParentID
	if parentID != nil {
		if _, ok := r.byID[*parentID]; !ok || r.visiting[*parentID] {
			parentID = nil
		}
	}
	if parentID == nil {
		r.roots[id] = true
		r.memo[id] = n.Code
		return n.Code
	}

	r.visiting[id] = true
	parentPath := r.path(*parentID)
	delete(r.visiting, id)

	// The recursion may have cut a loop at this very node.
	if p, ok := r.memo[id]; ok {
		return p
	}
	p := parentPath + Separator + n.Code
	r.memo[id] = p
	return p
}

// Paths maps every node id to its dotted code path, e.g. "1.2.3".
func Paths(nodes []models.WbsNode) map[uuid.UUID]string {
	return newResolver(nodes).memo
}

// Annotate returns a copy of nodes with Path filled in, in tree pre-order.
func Annotate(nodes []models.WbsNode) []models.WbsNode {
	out := make([]models.WbsNode, 0, len(nodes))
	var walk func(ts []*Tree)
	walk = func(ts []*Tree) {
		for _, t := range ts {
			out = append(out, t.Node)
			walk(t.Children)
		}
	}
	walk(Build(nodes))
	return out
}

// Build nests nodes under their parents. Siblings are ordered by sort order,
// then code.
func Build(nodes []models.WbsNode) []*Tree {
	r := newResolver(nodes)

	trees := make(map[uuid.UUID]*Tree, len(nodes))
	for _, n := range nodes {
		n.Path = r.memo[n.ID]
		trees[n.ID] = &Tree{Node: n}
	}

	var roots []*Tree
	for _, n := range nodes {
		t := trees[n.ID]
		if r.roots[n.ID] {
			roots = append(roots, t)
			continue
		}
		parent := trees[*n.ParentID]
		parent.Children = append(parent.Children, t)
	}

	sortTrees(roots)
	return roots
}

func sortTrees(ts []*Tree) {
	slices.SortFunc(ts, func(a, b *Tree) int {
		if c := cmp.Compare(a.Node.SortOrder, b.Node.SortOrder); c != 0 {
			return c
		}
		return strings.Compare(a.Node.Code, b.Node.Code)
	})
	for _, t := range ts {
		sortTrees(t.Children)
	}
}

// IsDescendant reports whether candidate is ancestor itself or lies below it.
func IsDescendant(nodes []models.WbsNode, ancestor, candidate uuid.UUID) bool {
	byID := make(map[uuid.UUID]models.WbsNode, len(nodes))
	for _, n := range nodes {
		byID[n.ID] = n
	}

	seen := make(map[uuid.UUID]bool)
	cur := candidate
	for {
		if cur == ancestor {
			return true
		}
		if seen[cur] {
			return false
		}
		seen[cur] = true

		n, ok := byID[cur]
		if !ok || n.ParentID == nil {
			return false
		}
		cur = *n.ParentID
	}
}
