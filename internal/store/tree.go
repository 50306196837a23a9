package store

import "storefront-service/internal/model"

// CategoryTree is an arena of categories linked by index rather than by pointer.
// Parents missing from the input turn their children into roots.
type CategoryTree struct {
	nodes []treeNode
	index map[uint]int
	roots []int
}

type treeNode struct {
	category model.Category
	parent   int
	children []int
}

// CategoryNode is the nested representation of a category and its descendants
type CategoryNode struct {
	model.Category
	Children []CategoryNode `json:"children"`
}

// BuildCategoryTree links categories by ParentID, keeping the input order among siblings
func BuildCategoryTree(categories []model.Category) *CategoryTree {
	t := &CategoryTree{
		nodes: make([]treeNode, len(categories)),
		index: make(map[uint]int, len(categories)),
	}
	for i, c := range categories {
		t.nodes[i] = treeNode{category: c, parent: -1}
		t.index[c.ID] = i
	}
	for i, c := range categories {
		if c.ParentID == nil {
			t.roots = append(t.roots, i)
			continue
		}
		p, ok := t.index[*c.ParentID]
		if !ok || p == i {
			t.roots = append(t.roots, i)
			continue
		}
		t.nodes[i].parent = p
		t.nodes[p].children = append(t.nodes[p].children, i)
	}
	return t
}

// Contains reports whether id is part of the tree
func (t *CategoryTree) Contains(id uint) bool {
	_, ok := t.index[id]
	return ok
}

// Children returns the direct children of id
func (t *CategoryTree) Children(id uint) []model.Category {
	i, ok := t.index[id]
	if !ok {
		return []model.Category{}
	}
	return t.collect(t.nodes[i].children)
}

// Ancestors returns the chain of parents of id, nearest first
func (t *CategoryTree) Ancestors(id uint) []model.Category {
	ancestors := []model.Category{}
	i, ok := t.index[id]
	if !ok {
		return ancestors
	}
	seen := map[int]bool{i: true}
	for p := t.nodes[i].parent; p >= 0 && !seen[p]; p = t.nodes[p].parent {
		seen[p] = true
		ancestors = append(ancestors, t.nodes[p].category)
	}
	return ancestors
}

// Subtree returns id and the ids of all its descendants, breadth first
func (t *CategoryTree) Subtree(id uint) []uint {
	i, ok := t.index[id]
	if !ok {
		return nil
	}
	ids := []uint{}
	seen := map[int]bool{}
	queue := []int{i}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		if seen[n] {
			continue
		}
		seen[n] = true
		ids = append(ids, t.nodes[n].category.ID)
		queue = append(queue, t.nodes[n].children...)
	}
	return ids
}

// WouldCycle reports whether making parentID the parent of id would create a loop
func (t *CategoryTree) WouldCycle(id, parentID uint) bool {
	if id == parentID {
		return true
	}
	for _, a := range t.Ancestors(parentID) {
		if a.ID == id {
			return true
		}
	}
	return false
}

// Nested returns the forest as nested nodes
func (t *CategoryTree) Nested() []CategoryNode {
	seen := map[int]bool{}
	var build func(i int) CategoryNode
	build = func(i int) CategoryNode {
		seen[i] = true
		node := CategoryNode{Category: t.nodes[i].category, Children: []CategoryNode{}}
		for _, c := range t.nodes[i].children {
			if !seen[c] {
				node.Children = append(node.Children, build(c))
			}
		}
		return node
	}

	forest := make([]CategoryNode, 0, len(t.roots))
	for _, r := range t.roots {
		forest = append(forest, build(r))
	}
	return forest
}

func (t *CategoryTree) collect(indexes []int) []model.Category {
	out := make([]model.Category, 0, len(indexes))
	for _, i := range indexes {
		out = append(out, t.nodes[i].category)
	}
	return out
}
