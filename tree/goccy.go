package tree

import (
	"fmt"
	"log/slog"

	"github.com/goccy/go-yaml/ast"
	"github.com/goccy/go-yaml/parser"
)

// GoccyParser parses YAML with github.com/goccy/go-yaml.
type GoccyParser struct{}

// Parse implements [Parser].
func (GoccyParser) Parse(data []byte) (Node, error) {
	file, err := parser.ParseBytes(data, 0)
	if err != nil {
		return nil, err
	}

	if len(file.Docs) == 0 || file.Docs[0] == nil || file.Docs[0].Body == nil {
		return &Mapping{}, nil
	}

	c := goccyConverter{anchors: make(map[string]Node)}

	return c.convert(file.Docs[0].Body)
}

type goccyConverter struct {
	anchors map[string]Node
}

func (c goccyConverter) convert(n ast.Node) (Node, error) {
	switch n := n.(type) {
	case nil, *ast.NullNode:
		return &Scalar{}, nil

	case *ast.DocumentNode:
		return c.convert(n.Body)

	case *ast.TagNode:
		return c.convert(n.Value)

	case *ast.AnchorNode:
		v, err := c.convert(n.Value)
		if err != nil {
			return nil, err
		}

		c.anchors[goccyText(n.Name)] = v

		return v, nil

	case *ast.AliasNode:
		name := goccyText(n.Value)
		if v, ok := c.anchors[name]; ok {
			return v, nil
		}

		return nil, fmt.Errorf("undefined alias %q", name)

	case *ast.MappingNode:
		m := &Mapping{Pairs: make([]Pair, 0, len(n.Values))}
		for _, mv := range n.Values {
			p, err := c.pair(mv)
			if err != nil {
				return nil, err
			}

			m.Pairs = append(m.Pairs, p)
		}

		return m, nil

	case *ast.MappingValueNode:
		p, err := c.pair(n)
		if err != nil {
			return nil, err
		}

		return &Mapping{Pairs: []Pair{p}}, nil

	case *ast.SequenceNode:
		s := &Sequence{Items: make([]Node, 0, len(n.Values))}
		for _, item := range n.Values {
			v, err := c.convert(item)
			if err != nil {
				return nil, err
			}

			s.Items = append(s.Items, v)
		}

		return s, nil

	case ast.ScalarNode:
		return &Scalar{Text: goccyText(n)}, nil

	case *ast.LiteralNode:
		return &Scalar{Text: goccyText(n)}, nil

	default:
		return nil, ErrUnknownNode.With(
			slog.String("kind", n.Type().String()),
			slog.String("node", n.String()),
		)
	}
}

func (c goccyConverter) pair(mv *ast.MappingValueNode) (Pair, error) {
	v, err := c.convert(mv.Value)
	if err != nil {
		return Pair{}, err
	}

	return Pair{Key: c.key(mv.Key), Value: v}, nil
}

// key renders a mapping key. Scalar keys yield their value, anything else
// yields its source text.
func (c goccyConverter) key(k ast.Node) string {
	for {
		switch kn := k.(type) {
		case *ast.MappingKeyNode:
			k = kn.Value
		case *ast.TagNode:
			k = kn.Value
		case *ast.AnchorNode:
			k = kn.Value
		case *ast.AliasNode:
			if v, ok := c.anchors[goccyText(kn.Value)].(*Scalar); ok {
				return v.Text
			}

			return kn.String()
		case nil, *ast.NullNode:
			return ""
		case ast.ScalarNode, *ast.LiteralNode:
			return goccyText(kn)
		default:
			return kn.String()
		}
	}
}

// goccyText returns the decoded text of a scalar node.
func goccyText(n ast.Node) string {
	switch n := n.(type) {
	case nil, *ast.NullNode:
		return ""
	case *ast.StringNode:
		return n.Value
	case *ast.LiteralNode:
		if n.Value == nil {
			return ""
		}

		return n.Value.Value
	default:
		if tk := n.GetToken(); tk != nil {
			return tk.Value
		}

		return n.String()
	}
}
