package tree

import (
	"iter"
	"log/slog"
	"strconv"
	"strings"
)

// Node is a document tree node: one of [*Scalar], [*Mapping], or [*Sequence].
type Node interface {
	node()
}

// Scalar is a leaf node. Null values are represented by empty Text.
type Scalar struct {
	Text string
}

// Mapping is an ordered list of key/value pairs. Keys may repeat.
type Mapping struct {
	Pairs []Pair
}

// Pair is a single mapping entry.
type Pair struct {
	Key   string
	Value Node
}

// Sequence is an ordered list of nodes.
type Sequence struct {
	Items []Node
}

func (*Scalar) node()   {}
func (*Mapping) node()  {}
func (*Sequence) node() {}

// Entry is a mapping entry whose value is a scalar.
type Entry struct {
	Key  string
	Text string
}

// LogValue implements slog.LogValuer.
func (e Entry) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("key", e.Key),
		slog.String("text", e.Text),
	)
}

// Entries returns an iterator over the scalar-valued mapping entries of root.
//
// Traversal is depth-first pre-order. When a mapping is visited, each of its
// scalar entries is yielded in mapping order; its non-scalar values are then
// walked in the same order. Sequence items are walked in order.
func Entries(root Node) iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		walk(root, yield)
	}
}

// CollectEntries returns all entries yielded by [Entries].
func CollectEntries(root Node) []Entry {
	var entries []Entry
	for e := range Entries(root) {
		entries = append(entries, e)
	}

	return entries
}

// walk reports false once yield has asked to stop.
func walk(n Node, yield func(Entry) bool) bool {
	switch n := n.(type) {
	case *Mapping:
		if n == nil {
			return true
		}

		for _, p := range n.Pairs {
			if s, ok := p.Value.(*Scalar); ok {
				if !yield(Entry{Key: p.Key, Text: s.Text}) {
					return false
				}
			}
		}

		for _, p := range n.Pairs {
			if _, ok := p.Value.(*Scalar); ok {
				continue
			}

			if !walk(p.Value, yield) {
				return false
			}
		}

	case *Sequence:
		if n == nil {
			return true
		}

		for _, item := range n.Items {
			if !walk(item, yield) {
				return false
			}
		}
	}

	// *Scalar and nil have nothing to walk.
	return true
}

// Validate reports [ErrUnknownNode] if any node reachable from root is not
// one of the three node variants, or is a nil pointer of one.
func Validate(root Node) error {
	return validate(root, nil)
}

func validate(n Node, path []string) error {
	switch n := n.(type) {
	case *Scalar:
		if n != nil {
			return nil
		}

	case *Mapping:
		if n != nil {
			for _, p := range n.Pairs {
				if err := validate(p.Value, append(path, p.Key)); err != nil {
					return err
				}
			}

			return nil
		}

	case *Sequence:
		if n != nil {
			for i, item := range n.Items {
				if err := validate(item, append(path, "["+strconv.Itoa(i)+"]")); err != nil {
					return err
				}
			}

			return nil
		}
	}

	return ErrUnknownNode.With(slog.String("path", strings.Join(path, ".")))
}
