package calc

import (
	"bytes"
	"encoding/json"
	"iter"
	"maps"
	"slices"

	"github.com/goccy/go-yaml"
)

// Output is an ordered mapping from formula name to value.
// The zero Output is empty and ready to use.
type Output struct {
	names  []string
	values map[string]any
}

// Project builds an Output from outcomes in order. For a name that occurs
// more than once, the value of its first occurrence is kept.
func Project(outcomes []Outcome) *Output {
	out := &Output{}
	for _, o := range outcomes {
		out.Add(o.Formula.Name, o.Value)
	}

	return out
}

// Add inserts name with value v unless name is already present, and reports
// whether it was inserted.
func (o *Output) Add(name string, v any) bool {
	if _, ok := o.values[name]; ok {
		return false
	}

	if o.values == nil {
		o.values = make(map[string]any)
	}

	o.names = append(o.names, name)
	o.values[name] = v

	return true
}

// Get returns the value of name.
func (o *Output) Get(name string) (any, bool) {
	v, ok := o.values[name]

	return v, ok
}

// Len returns the number of names.
func (o *Output) Len() int { return len(o.names) }

// Names returns the names in insertion order.
func (o *Output) Names() []string { return slices.Clone(o.names) }

// All returns an iterator over name/value pairs in insertion order.
func (o *Output) All() iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		for _, name := range o.names {
			if !yield(name, o.values[name]) {
				return
			}
		}
	}
}

// Map returns the contents as an unordered map.
func (o *Output) Map() map[string]any {
	return maps.Clone(o.values)
}

// MarshalJSON encodes o as a JSON object with keys in insertion order.
func (o *Output) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte('{')

	for i, name := range o.names {
		if i > 0 {
			buf.WriteByte(',')
		}

		k, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}

		v, err := json.Marshal(o.values[name])
		if err != nil {
			return nil, err
		}

		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}

// MarshalYAML encodes o as a YAML mapping with keys in insertion order.
func (o *Output) MarshalYAML() (any, error) {
	ms := make(yaml.MapSlice, 0, len(o.names))
	for name, v := range o.All() {
		ms = append(ms, yaml.MapItem{Key: name, Value: v})
	}

	return ms, nil
}
