// Package layout implements the tiling binary tree: the arena of nodes,
// and the insert/remove/focus/resize operations that keep a set of
// windows arranged as a non-overlapping tiled layout over a fixed outer
// rectangle.
//
// The tree never talks to the display server. Every operation returns a
// changed-set of (window, bounds) pairs for a driver to apply.
package layout

import "github.com/Skulhunter5/xnebula/geometry"

// Window is an opaque window identifier, wide enough to hold an X11
// window id.
type Window uint32

const (
	noIndex = -1

	initialCapacity = 20

	// minProportion and maxProportion bound an internal node's split
	// proportion. The source this engine is modeled on never clamps
	// this value, which lets repeated resizes drive a child's bounds to
	// zero or negative width; we clamp to a safe open interval instead.
	minProportion = 0.05
	maxProportion = 0.95
)

type nodeKind int

const (
	leafNode nodeKind = iota
	internalNode
)

// treeNode is one arena slot. A nil slot is empty. Leaf fields (window)
// and internal fields (left, right, focus, proportion) are only
// meaningful for the matching kind; this is enforced entirely by
// construction, not by a wrapper type, to keep the arena flat.
type treeNode struct {
	index     int
	parent    int // noIndex iff this is the root
	bounds    geometry.Bounds
	direction geometry.Direction // leaf: next-split hint; internal: split axis used to create it
	kind      nodeKind

	window Window // kind == leafNode

	left, right int                // kind == internalNode
	focus       geometry.Direction // kind == internalNode: which child (by direction) is focused
	proportion  float64            // kind == internalNode: fraction of bounds given to the near (direction.Invert()) side... see childForDirection
}

// childForDirection returns the child index on the side named by d. d
// must be either n.direction or n.direction.Invert().
func (n *treeNode) childForDirection(d geometry.Direction) int {
	if d == n.direction {
		return n.right
	}
	return n.left
}

// Change is one entry of a changed-set: a window that must be moved/
// resized to bounds, in the order the engine produced it.
type Change struct {
	Window Window
	Bounds geometry.Bounds
}

// Leaf describes one tile currently in the tree.
type Leaf struct {
	Window Window
	Bounds geometry.Bounds
}

// RemoveResult is the outcome of RemoveFocused.
type RemoveResult struct {
	Removed       Window
	NewFocused    Window
	HasNewFocused bool
	Changes       []Change
}

// WindowTree is the tiling binary tree: a growable arena of nodes, an
// optional root, and the fixed outer bounds (monitor rectangle) the
// root's bounds always equal.
type WindowTree struct {
	nodes  []*treeNode
	root   int
	bounds geometry.Bounds
}

// NewWindowTree creates an empty tree over the given monitor bounds.
func NewWindowTree(bounds geometry.Bounds) *WindowTree {
	return &WindowTree{
		nodes:  make([]*treeNode, initialCapacity),
		root:   noIndex,
		bounds: bounds,
	}
}

// IsEmpty reports whether the tree holds no windows.
func (t *WindowTree) IsEmpty() bool {
	return t.root == noIndex
}

// Bounds returns the tree's fixed outer (monitor) bounds.
func (t *WindowTree) Bounds() geometry.Bounds {
	return t.bounds
}

// FocusedWindow returns the currently focused leaf's window, if any.
func (t *WindowTree) FocusedWindow() (Window, bool) {
	idx := t.focusedIndex()
	if idx == noIndex {
		return 0, false
	}
	return t.nodes[idx].window, true
}

// Leaves lists every tile currently in the tree, in left-to-right,
// depth-first order. Useful for driver bootstrap and for tests that
// check coverage/validity invariants.
func (t *WindowTree) Leaves() []Leaf {
	if t.root == noIndex {
		return nil
	}
	var out []Leaf
	var walk func(idx int)
	walk = func(idx int) {
		n := t.nodes[idx]
		if n.kind == leafNode {
			out = append(out, Leaf{Window: n.window, Bounds: n.bounds})
			return
		}
		walk(n.left)
		walk(n.right)
	}
	walk(t.root)
	return out
}

// Insert adds new as a new tile. If the tree is empty, it takes the full
// monitor bounds. Otherwise the focused leaf is split in half along its
// current direction hint: the old window keeps the near side, the new
// window takes the far side, and focus moves to the new window. Both
// resulting leaves are given the perpendicular direction as their next-
// split hint, so a run of inserts alternates axis and grows a balanced
// grid instead of an ever-thinner strip.
func (t *WindowTree) Insert(newWindow Window) []Change {
	if t.root == noIndex {
		idx := t.allocLeaf(noIndex, t.bounds, geometry.Right, newWindow)
		t.root = idx
		return []Change{{Window: newWindow, Bounds: t.bounds}}
	}

	focusedIdx := t.focusedIndex()
	f := t.nodes[focusedIdx]
	d := f.direction
	near, far := f.bounds.Split(d, 0.5)
	oldWindow := f.window
	parentIdx := f.parent
	nextHint := geometry.Perpendicular(d)

	leftIdx := t.allocLeaf(focusedIdx, near, nextHint, oldWindow)
	rightIdx := t.allocLeaf(focusedIdx, far, nextHint, newWindow)

	*f = treeNode{
		index:      focusedIdx,
		parent:     parentIdx,
		bounds:     f.bounds,
		direction:  d,
		kind:       internalNode,
		left:       leftIdx,
		right:      rightIdx,
		focus:      d,
		proportion: 0.5,
	}

	return []Change{{Window: oldWindow, Bounds: near}, {Window: newWindow, Bounds: far}}
}

// RemoveFocused deletes the focused leaf. If the tree held exactly one
// window, it is emptied entirely. Otherwise the focused leaf's sibling
// is spliced into its parent's place, bounds are recomputed for the
// spliced subtree, and the new focus is whatever leaf the (possibly new)
// root's focus chain now reaches.
//
// The second return value is false iff the tree was already empty.
func (t *WindowTree) RemoveFocused() (RemoveResult, bool) {
	if t.root == noIndex {
		return RemoveResult{}, false
	}

	root := t.nodes[t.root]
	if root.kind == leafNode {
		removed := root.window
		t.free(t.root)
		t.root = noIndex
		return RemoveResult{Removed: removed}, true
	}

	focusedIdx := t.focusedIndex()
	f := t.nodes[focusedIdx]
	removed := f.window
	parentIdx := f.parent
	parent := t.nodes[parentIdx]

	siblingIdx := parent.left
	if siblingIdx == focusedIdx {
		siblingIdx = parent.right
	}
	sibling := t.nodes[siblingIdx]

	grandparentIdx := parent.parent
	if grandparentIdx != noIndex {
		gp := t.nodes[grandparentIdx]
		if gp.left == parentIdx {
			gp.left = siblingIdx
		} else {
			gp.right = siblingIdx
		}
		sibling.parent = grandparentIdx
	} else {
		t.root = siblingIdx
		sibling.parent = noIndex
	}

	t.free(focusedIdx)
	t.free(parentIdx)

	changes := t.applyBounds(siblingIdx)

	newFocusedIdx := t.focusedIndex()
	newFocused := t.nodes[newFocusedIdx]
	if newFocused.kind != leafNode {
		panic("layout: focus chain did not resolve to a leaf after RemoveFocused")
	}

	return RemoveResult{
		Removed:       removed,
		NewFocused:    newFocused.window,
		HasNewFocused: true,
		Changes:       changes,
	}, true
}

// MoveFocus walks up from the focused leaf to the nearest ancestor whose
// split axis matches d and whose focus is not already on the d side,
// flips that ancestor's focus to d, and returns the newly focused
// window. It returns false (without mutating anything) if no such
// ancestor exists, i.e. the focused leaf is already at the d edge of the
// tree.
func (t *WindowTree) MoveFocus(d geometry.Direction) (Window, bool) {
	if t.root == noIndex {
		return 0, false
	}
	cur := t.nodes[t.focusedIndex()].parent
	for cur != noIndex {
		a := t.nodes[cur]
		if geometry.SameAxis(a.direction, d) && a.focus != d {
			a.focus = d
			newFocused := t.nodes[t.focusedIndex()]
			return newFocused.window, true
		}
		cur = a.parent
	}
	return 0, false
}

// ChangeTilingDirection sets the focused leaf's next-split hint. It is a
// pure state mutation: no geometry changes as a result.
func (t *WindowTree) ChangeTilingDirection(d geometry.Direction) {
	if t.root == noIndex {
		return
	}
	t.nodes[t.focusedIndex()].direction = d
}

// ResizeFocused walks up from the focused leaf to the nearest ancestor
// whose split axis matches d, grows (or shrinks) that ancestor's
// proportion by amount along d, clamps it to a safe range, and
// recomputes bounds for the affected subtree. It returns false if no
// ancestor shares d's axis.
func (t *WindowTree) ResizeFocused(d geometry.Direction, amount float64) ([]Change, bool) {
	if t.root == noIndex {
		return nil, false
	}
	cur := t.nodes[t.focusedIndex()].parent
	for cur != noIndex {
		a := t.nodes[cur]
		if geometry.SameAxis(a.direction, d) {
			signed := amount
			if a.direction != d {
				signed = -amount
			}
			a.proportion = clamp(a.proportion+signed, minProportion, maxProportion)
			return t.applyBounds(cur), true
		}
		cur = a.parent
	}
	return nil, false
}

// applyBounds is an iterative breadth-first walk from start. Every
// visited node's bounds are recomputed from its parent's (already
// correct) bounds and split; leaves contribute an entry to the returned
// changed-set.
func (t *WindowTree) applyBounds(start int) []Change {
	var changes []Change
	queue := []int{start}
	for i := 0; i < len(queue); i++ {
		idx := queue[i]
		n := t.nodes[idx]

		var b geometry.Bounds
		if n.parent == noIndex {
			b = t.bounds
		} else {
			p := t.nodes[n.parent]
			near, far := p.bounds.Split(p.direction, p.proportion)
			if idx == p.left {
				b = near
			} else {
				b = far
			}
		}
		n.bounds = b

		if n.kind == internalNode {
			queue = append(queue, n.left, n.right)
		} else {
			changes = append(changes, Change{Window: n.window, Bounds: b})
		}
	}
	return changes
}

// focusedIndex descends from the root by following each internal node's
// focus field, and returns the leaf it reaches. It returns noIndex only
// when the tree is empty.
func (t *WindowTree) focusedIndex() int {
	idx := t.root
	for idx != noIndex {
		n := t.nodes[idx]
		if n.kind == leafNode {
			return idx
		}
		idx = n.childForDirection(n.focus)
	}
	return noIndex
}

func (t *WindowTree) allocLeaf(parent int, bounds geometry.Bounds, direction geometry.Direction, w Window) int {
	idx := t.allocIndex()
	t.nodes[idx] = &treeNode{
		index:     idx,
		parent:    parent,
		bounds:    bounds,
		direction: direction,
		kind:      leafNode,
		window:    w,
	}
	return idx
}

// allocIndex returns the first empty slot, growing the arena by one if
// none is free. Index reuse is preferred over compaction to keep indices
// stable and small.
func (t *WindowTree) allocIndex() int {
	for i, n := range t.nodes {
		if n == nil {
			return i
		}
	}
	t.nodes = append(t.nodes, nil)
	return len(t.nodes) - 1
}

func (t *WindowTree) free(idx int) {
	t.nodes[idx] = nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
