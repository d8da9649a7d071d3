// Package btree implements the engine's primary-key index: a B+-tree
// keyed by int64, holding row-store slot numbers as values. Nodes live in
// a single arena (a slice on Tree) addressed by index rather than pointer,
// so a leaf split can rewrite its neighbors' sibling links without parent
// back-references or ownership cycles.
package btree

import "github.com/embedsql/embedsql/dberrors"

const defaultDegree = 4

// id is an arena index. noNode is the sentinel "no neighbor"/"no node".
type id int

const noNode id = -1

type node struct {
	leaf bool

	// leaf fields
	keys   []int64
	values []int
	prev   id
	next   id

	// interior fields
	ikeys    []int64
	children []id
}

// Tree is a B+-tree mapping int64 keys to row-store slots.
type Tree struct {
	degree int
	nodes  []node
	root   id
}

// Option configures a Tree at construction time.
type Option func(*Tree)

// WithDegree sets the branching factor (default 4).
func WithDegree(degree int) Option {
	return func(t *Tree) { t.degree = degree }
}

// New creates an empty Tree.
func New(opts ...Option) *Tree {
	t := &Tree{degree: defaultDegree}
	for _, opt := range opts {
		opt(t)
	}
	t.nodes = []node{{leaf: true, prev: noNode, next: noNode}}
	t.root = 0
	return t
}

func (t *Tree) alloc(n node) id {
	t.nodes = append(t.nodes, n)
	return id(len(t.nodes) - 1)
}

// Pair is one (key, slot) entry yielded by iteration.
type Pair struct {
	Key  int64
	Slot int
}

// leafFor descends from root to the leaf that contains key or would
// contain it if present: at an interior node, pick the first child whose
// separator strictly exceeds key, else the last child.
func (t *Tree) leafFor(key int64) id {
	cur := t.root
	for !t.nodes[cur].leaf {
		n := &t.nodes[cur]
		idx := len(n.children) - 1
		for i, k := range n.ikeys {
			if key < k {
				idx = i
				break
			}
		}
		cur = n.children[idx]
	}
	return cur
}

func (t *Tree) leftmostLeaf() id {
	cur := t.root
	for !t.nodes[cur].leaf {
		cur = t.nodes[cur].children[0]
	}
	return cur
}

func (t *Tree) rightmostLeaf() id {
	cur := t.root
	for !t.nodes[cur].leaf {
		children := t.nodes[cur].children
		cur = children[len(children)-1]
	}
	return cur
}

// Get performs a point lookup, returning the row slot and true, or
// (0, false) if key is not present.
func (t *Tree) Get(key int64) (int, bool) {
	n := &t.nodes[t.leafFor(key)]
	for i, k := range n.keys {
		if k == key {
			return n.values[i], true
		}
	}
	return 0, false
}

// Contains reports whether key is present.
func (t *Tree) Contains(key int64) bool {
	_, ok := t.Get(key)
	return ok
}

// Len returns the number of distinct keys in the tree.
func (t *Tree) Len() int {
	count := 0
	for cur := t.leftmostLeaf(); cur != noNode; cur = t.nodes[cur].next {
		count += len(t.nodes[cur].keys)
	}
	return count
}

// Insert inserts key->value, or replaces the value if key is already
// present, splitting and promoting up the tree as needed.
func (t *Tree) Insert(key int64, value int) {
	promoted, splitKey, split := t.insert(t.root, key, value)
	if split {
		t.root = t.alloc(node{
			ikeys:    []int64{splitKey},
			children: promoted,
			prev:     noNode,
			next:     noNode,
		})
		return
	}
	t.root = promoted[0]
}

// insert descends into the subtree rooted at cur, returning the node(s)
// that should replace cur in its parent, the key to promote (valid only
// when split is true), and whether a split occurred.
func (t *Tree) insert(cur id, key int64, value int) (promoted []id, splitKey int64, split bool) {
	n := &t.nodes[cur]
	if n.leaf {
		for i, k := range n.keys {
			if k == key {
				n.values[i] = value
				return []id{cur}, 0, false
			}
		}
		idx := len(n.keys)
		for i, k := range n.keys {
			if key < k {
				idx = i
				break
			}
		}
		n.keys = append(n.keys, 0)
		copy(n.keys[idx+1:], n.keys[idx:])
		n.keys[idx] = key
		n.values = append(n.values, 0)
		copy(n.values[idx+1:], n.values[idx:])
		n.values[idx] = value

		if len(n.keys) <= t.degree-1 {
			return []id{cur}, 0, false
		}

		oldPrev, oldNext := n.prev, n.next
		half := len(n.keys) / 2
		leftID := t.alloc(node{
			leaf: true,
			keys: append([]int64{}, n.keys[:half]...), values: append([]int{}, n.values[:half]...),
			prev: oldPrev,
		})
		rightID := t.alloc(node{
			leaf: true,
			keys: append([]int64{}, n.keys[half:]...), values: append([]int{}, n.values[half:]...),
			next: oldNext,
		})
		t.nodes[leftID].next = rightID
		t.nodes[rightID].prev = leftID
		if oldPrev != noNode {
			t.nodes[oldPrev].next = leftID
		}
		if oldNext != noNode {
			t.nodes[oldNext].prev = rightID
		}
		return []id{leftID, rightID}, t.nodes[rightID].keys[0], true
	}

	idx := len(n.children) - 1
	for i, k := range n.ikeys {
		if key < k {
			idx = i
			break
		}
	}
	childPromoted, childSplitKey, childSplit := t.insert(n.children[idx], key, value)
	n = &t.nodes[cur] // re-slice: recursion may have grown the arena and reallocated it

	if childSplit {
		newChildren := make([]id, 0, len(n.children)+1)
		newChildren = append(newChildren, n.children[:idx]...)
		newChildren = append(newChildren, childPromoted...)
		newChildren = append(newChildren, n.children[idx+1:]...)
		n.children = newChildren

		newKeys := make([]int64, 0, len(n.ikeys)+1)
		newKeys = append(newKeys, n.ikeys[:idx]...)
		newKeys = append(newKeys, childSplitKey)
		newKeys = append(newKeys, n.ikeys[idx:]...)
		n.ikeys = newKeys
	} else {
		n.children[idx] = childPromoted[0]
	}

	if len(n.children) <= t.degree {
		return []id{cur}, 0, false
	}

	mid := len(n.ikeys) / 2
	promoteKey := n.ikeys[mid]
	leftID := t.alloc(node{
		ikeys:    append([]int64{}, n.ikeys[:mid]...),
		children: append([]id{}, n.children[:mid+1]...),
		prev:     noNode, next: noNode,
	})
	rightID := t.alloc(node{
		ikeys:    append([]int64{}, n.ikeys[mid+1:]...),
		children: append([]id{}, n.children[mid+1:]...),
		prev:     noNode, next: noNode,
	})
	return []id{leftID, rightID}, promoteKey, true
}

// Forward returns all (key, slot) pairs in ascending key order.
func (t *Tree) Forward() []Pair {
	var out []Pair
	for cur := t.leftmostLeaf(); cur != noNode; cur = t.nodes[cur].next {
		n := &t.nodes[cur]
		for i, k := range n.keys {
			out = append(out, Pair{Key: k, Slot: n.values[i]})
		}
	}
	return out
}

// Reverse returns all (key, slot) pairs in descending key order.
func (t *Tree) Reverse() []Pair {
	var out []Pair
	for cur := t.rightmostLeaf(); cur != noNode; cur = t.nodes[cur].prev {
		n := &t.nodes[cur]
		for i := len(n.keys) - 1; i >= 0; i-- {
			out = append(out, Pair{Key: n.keys[i], Slot: n.values[i]})
		}
	}
	return out
}

// Range yields pairs over the half-open interval [start, stop); either
// bound may be nil for "open". step must be 0 or 1; any other value is a
// usage error. With both bounds nil, Range behaves like Forward. With
// only stop set, pairs are yielded in descending order, walking backward
// from the leaf that would hold stop.
func (t *Tree) Range(start, stop *int64, step int) ([]Pair, error) {
	if step != 0 && step != 1 {
		return nil, dberrors.ErrUsage.New("range step must be 1")
	}
	switch {
	case start != nil:
		var out []Pair
		for cur := t.leafFor(*start); cur != noNode; cur = t.nodes[cur].next {
			n := &t.nodes[cur]
			done := false
			for i, k := range n.keys {
				if k < *start {
					continue
				}
				if stop != nil && k >= *stop {
					done = true
					break
				}
				out = append(out, Pair{Key: k, Slot: n.values[i]})
			}
			if done {
				break
			}
		}
		return out, nil
	case stop != nil:
		var out []Pair
		for cur := t.leafFor(*stop); cur != noNode; cur = t.nodes[cur].prev {
			n := &t.nodes[cur]
			for i := len(n.keys) - 1; i >= 0; i-- {
				if n.keys[i] < *stop {
					out = append(out, Pair{Key: n.keys[i], Slot: n.values[i]})
				}
			}
		}
		return out, nil
	default:
		return t.Forward(), nil
	}
}

// Delete removes key from its leaf's key/value arrays. It does not
// rebalance the tree: this is the tombstoning delete the engine's DELETE
// statement relies on, not a full B+-tree delete (declared-but-not-required
// by the index's own contract).
func (t *Tree) Delete(key int64) bool {
	n := &t.nodes[t.leafFor(key)]
	for i, k := range n.keys {
		if k == key {
			n.keys = append(n.keys[:i], n.keys[i+1:]...)
			n.values = append(n.values[:i], n.values[i+1:]...)
			return true
		}
	}
	return false
}
