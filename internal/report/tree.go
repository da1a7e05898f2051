package report

import (
	"sort"
	"strings"

	"github.com/sadopc/timetracer/internal/model"
)

// Node is one category in the project tree. Duration includes all children.
type Node struct {
	Name     string
	Duration int64
	Children map[string]*Node
}

func NewTree() *Node {
	return &Node{Children: make(map[string]*Node)}
}

// Add charges secs to every node along path.
func (n *Node) Add(path string, secs int64) {
	n.Duration += secs
	cur := n
	for _, seg := range strings.Split(path, "_") {
		child, ok := cur.Children[seg]
		if !ok {
			child = &Node{Name: seg, Children: make(map[string]*Node)}
			cur.Children[seg] = child
		}
		child.Duration += secs
		cur = child
	}
}

// Sorted returns the children by descending duration, then name.
func (n *Node) Sorted() []*Node {
	out := make([]*Node, 0, len(n.Children))
	for _, c := range n.Children {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Duration != out[j].Duration {
			return out[i].Duration > out[j].Duration
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Walk visits every descendant depth first in Sorted order.
func (n *Node) Walk(fn func(node *Node, depth int)) {
	var walk func(*Node, int)
	walk = func(cur *Node, depth int) {
		for _, c := range cur.Sorted() {
			fn(c, depth)
			walk(c, depth+1)
		}
	}
	walk(n, 0)
}

// DayTree builds the tree of one day's activities.
func DayTree(d model.Day) *Node {
	t := NewTree()
	for _, a := range d.Activities {
		t.Add(a.Category.Path(), a.DurationSeconds)
	}
	return t
}
