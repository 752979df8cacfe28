package tree

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"strings"

	"gopkg.in/yaml.v3"
)

// YAMLv3Parser parses YAML with gopkg.in/yaml.v3.
type YAMLv3Parser struct{}

// Parse implements [Parser].
func (YAMLv3Parser) Parse(data []byte) (Node, error) {
	var doc yaml.Node

	err := yaml.NewDecoder(bytes.NewReader(data)).Decode(&doc)
	if errors.Is(err, io.EOF) {
		return &Mapping{}, nil
	}

	if err != nil {
		return nil, err
	}

	return yamlv3Convert(&doc)
}

func yamlv3Convert(n *yaml.Node) (Node, error) {
	if n == nil {
		return &Scalar{}, nil
	}

	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return &Mapping{}, nil
		}

		return yamlv3Convert(n.Content[0])

	case yaml.AliasNode:
		// The decoder has already bound the alias to its anchored node.
		return yamlv3Convert(n.Alias)

	case yaml.ScalarNode:
		if n.ShortTag() == "!!null" {
			return &Scalar{}, nil
		}

		return &Scalar{Text: n.Value}, nil

	case yaml.MappingNode:
		m := &Mapping{Pairs: make([]Pair, 0, len(n.Content)/2)}
		for i := 0; i+1 < len(n.Content); i += 2 {
			v, err := yamlv3Convert(n.Content[i+1])
			if err != nil {
				return nil, err
			}

			m.Pairs = append(m.Pairs, Pair{Key: yamlv3Key(n.Content[i]), Value: v})
		}

		return m, nil

	case yaml.SequenceNode:
		s := &Sequence{Items: make([]Node, 0, len(n.Content))}
		for _, item := range n.Content {
			v, err := yamlv3Convert(item)
			if err != nil {
				return nil, err
			}

			s.Items = append(s.Items, v)
		}

		return s, nil

	default:
		return nil, ErrUnknownNode.With(
			slog.Int("kind", int(n.Kind)),
			slog.Int("line", n.Line),
		)
	}
}

// yamlv3Key renders a mapping key. Scalar keys yield their value, anything
// else is re-encoded in flow style.
func yamlv3Key(k *yaml.Node) string {
	for k != nil && k.Kind == yaml.AliasNode {
		k = k.Alias
	}

	switch {
	case k == nil:
		return ""
	case k.Kind == yaml.ScalarNode:
		if k.ShortTag() == "!!null" {
			return ""
		}

		return k.Value
	}

	flow := *k
	flow.Style |= yaml.FlowStyle

	b, err := yaml.Marshal(&flow)
	if err != nil {
		return k.Value
	}

	return strings.TrimSpace(string(b))
}
