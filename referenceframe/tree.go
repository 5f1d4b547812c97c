package referenceframe

import (
	"sort"
	"sync"

	"github.com/pkg/errors"
	"github.com/samber/lo"
)

type treeNode struct {
	parent  string
	segment Segment
}

// Tree is a kinematic tree: every frame other than the root is reached through exactly one
// segment from its parent. It is safe for concurrent use.
type Tree struct {
	mu    sync.RWMutex
	root  string
	nodes map[string]treeNode
}

// NewTree returns an empty tree rooted at the named frame.
func NewTree(root string) *Tree {
	return &Tree{root: root, nodes: map[string]treeNode{}}
}

// Root returns the name of the root frame.
func (t *Tree) Root() string {
	return t.root
}

// AddSegment attaches seg below the parent frame.
func (t *Tree) AddSegment(parent string, seg Segment) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if seg.Name == "" {
		return errors.New("segment name cannot be empty")
	}
	if seg.Name == t.root {
		return NewFrameAlreadyExistsError(seg.Name)
	}
	if _, ok := t.nodes[seg.Name]; ok {
		return NewFrameAlreadyExistsError(seg.Name)
	}
	if !t.hasFrame(parent) {
		return NewParentFrameMissingError(seg.Name, parent)
	}
	t.nodes[seg.Name] = treeNode{parent: parent, segment: seg}
	return nil
}

func (t *Tree) hasFrame(name string) bool {
	if name == t.root {
		return true
	}
	_, ok := t.nodes[name]
	return ok
}

// Segment returns the segment ending at the named frame along with its parent frame.
func (t *Tree) Segment(name string) (Segment, string, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	node, ok := t.nodes[name]
	if !ok {
		return Segment{}, "", NewFrameMissingError(name)
	}
	return node.segment, node.parent, nil
}

// FrameNames returns the sorted names of every frame in the tree, including the root.
func (t *Tree) FrameNames() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	names := append(lo.Keys(t.nodes), t.root)
	sort.Strings(names)
	return names
}

// ChainBetween returns the ordered segments leading from root down to tip. The root must be an
// ancestor of the tip.
func (t *Tree) ChainBetween(root, tip string) ([]Segment, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if !t.hasFrame(root) {
		return nil, NewFrameMissingError(root)
	}
	if !t.hasFrame(tip) {
		return nil, NewFrameMissingError(tip)
	}
	if root == tip {
		return nil, errors.Wrapf(ErrNoPath, "root and tip are both %q", root)
	}

	var reversed []Segment
	for current := tip; current != root; {
		node, ok := t.nodes[current]
		if !ok {
			return nil, errors.Wrapf(ErrNoPath, "%q is not an ancestor of %q", root, tip)
		}
		reversed = append(reversed, node.segment)
		current = node.parent
	}
	return lo.Reverse(reversed), nil
}
