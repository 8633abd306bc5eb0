package partition

import (
	"encoding/json"
	"slices"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/bayespart/density"
	"github.com/hupe1980/bayespart/sample"
)

// Node is a node of the partition tree. Internal nodes split their bounds at SplitAt
// along SplitDim: the left child takes [Lo, SplitAt), the right child [SplitAt, Hi].
type Node struct {
	// ID is the 1-based position of a leaf in left-to-right order; 0 for internal nodes.
	ID       int
	Bounds   density.Bounds
	Cost     float64
	Indices  *roaring.Bitmap
	SplitDim int
	SplitAt  float64
	Left     *Node
	Right    *Node
}

// IsLeaf reports whether the node has no children.
func (n *Node) IsLeaf() bool {
	return n.Left == nil && n.Right == nil
}

// NumSamples returns the number of exploration samples in the node.
func (n *Node) NumSamples() int {
	if n.Indices == nil {
		return 0
	}
	return int(n.Indices.GetCardinality())
}

// Tree is a partition of a rectangle into leaf rectangles.
// A tree is read-only once ExtendBounds (if any) has been applied.
type Tree struct {
	Root   *Node
	leaves []*Node
}

func newTree(root *Node) *Tree {
	t := &Tree{Root: root}
	t.index()
	return t
}

// index collects the leaves in left-to-right order and assigns their IDs.
func (t *Tree) index() {
	t.leaves = t.leaves[:0]
	var walk func(n *Node)
	walk = func(n *Node) {
		if n.IsLeaf() {
			t.leaves = append(t.leaves, n)
			n.ID = len(t.leaves)
			return
		}
		n.ID = 0
		walk(n.Left)
		walk(n.Right)
	}
	walk(t.Root)
}

// Leaves returns the leaves ordered by ID.
func (t *Tree) Leaves() []*Node {
	out := make([]*Node, len(t.leaves))
	copy(out, t.leaves)
	return out
}

// NumLeaves returns the number of leaves.
func (t *Tree) NumLeaves() int { return len(t.leaves) }

// Leaf returns the leaf with the given 1-based ID, or nil.
func (t *Tree) Leaf(id int) *Node {
	if id < 1 || id > len(t.leaves) {
		return nil
	}
	return t.leaves[id-1]
}

// Bounds returns the root rectangle.
func (t *Tree) Bounds() density.Bounds { return t.Root.Bounds.Clone() }

// Locate returns the leaf containing v, or nil if v is outside the root bounds.
func (t *Tree) Locate(v []float64) *Node {
	if !t.Root.Bounds.Contains(v) {
		return nil
	}
	n := t.Root
	for !n.IsLeaf() {
		if v[n.SplitDim] < n.SplitAt {
			n = n.Left
		} else {
			n = n.Right
		}
	}
	return n
}

// ExtendBounds moves every face of the tree that descends from a face of the root to
// the corresponding face of b, so the leaves cover b instead of the bounding box of
// the exploration samples. Faces created by a split never move, even when the split
// plane coincides with a root face. Applying it twice has the same effect as applying
// it once.
func ExtendBounds(t *Tree, b density.Bounds) error {
	dim := t.Root.Bounds.Dim()
	if b.Dim() != dim {
		return &density.DimensionMismatchError{Expected: dim, Actual: b.Dim()}
	}
	if err := b.Validate(); err != nil {
		return err
	}

	outerLo, outerHi := make([]bool, dim), make([]bool, dim)
	for d := range outerLo {
		outerLo[d], outerHi[d] = true, true
	}

	var walk func(n *Node, lo, hi []bool)
	walk = func(n *Node, lo, hi []bool) {
		for d := range n.Bounds.Lo {
			if lo[d] {
				n.Bounds.Lo[d] = b.Lo[d]
			}
			if hi[d] {
				n.Bounds.Hi[d] = b.Hi[d]
			}
		}
		if n.IsLeaf() {
			return
		}
		leftHi, rightLo := slices.Clone(hi), slices.Clone(lo)
		leftHi[n.SplitDim] = false
		rightLo[n.SplitDim] = false
		walk(n.Left, lo, leftHi)
		walk(n.Right, rightLo, hi)
	}
	walk(t.Root, outerLo, outerHi)
	return nil
}

type nodeJSON struct {
	ID       int            `json:"id,omitempty"`
	Bounds   density.Bounds `json:"bounds"`
	Cost     sample.Float   `json:"cost"`
	Indices  []uint32       `json:"indices,omitempty"`
	SplitDim int            `json:"split_dim"`
	SplitAt  sample.Float   `json:"split_at"`
	Left     *Node          `json:"left,omitempty"`
	Right    *Node          `json:"right,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (n *Node) MarshalJSON() ([]byte, error) {
	w := nodeJSON{
		ID:       n.ID,
		Bounds:   n.Bounds,
		Cost:     sample.Float(n.Cost),
		SplitDim: n.SplitDim,
		SplitAt:  sample.Float(n.SplitAt),
		Left:     n.Left,
		Right:    n.Right,
	}
	if n.Indices != nil {
		w.Indices = n.Indices.ToArray()
	}
	return json.Marshal(w)
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *Node) UnmarshalJSON(data []byte) error {
	var w nodeJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*n = Node{
		ID:       w.ID,
		Bounds:   w.Bounds,
		Cost:     float64(w.Cost),
		Indices:  roaring.BitmapOf(w.Indices...),
		SplitDim: w.SplitDim,
		SplitAt:  float64(w.SplitAt),
		Left:     w.Left,
		Right:    w.Right,
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (t *Tree) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Root)
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Tree) UnmarshalJSON(data []byte) error {
	root := new(Node)
	if err := json.Unmarshal(data, root); err != nil {
		return err
	}
	t.Root = root
	t.index()
	return nil
}
