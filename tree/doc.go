// Package tree defines the document model that formulas are extracted from.
//
// A document is a tree of [Node] values. Node is a closed sum type with
// exactly three variants:
//
//   - [*Scalar]: a leaf holding text
//   - [*Mapping]: an ordered list of key/value [Pair] values
//   - [*Sequence]: an ordered list of nodes
//
// Parsers convert a markup format into this model. Two YAML backends are
// provided, [GoccyParser] (the default) and [YAMLv3Parser]; both resolve
// aliases, ignore tags, and read only the first document of a stream.
//
// The walker, [Entries], visits the tree depth-first in pre-order and yields
// every mapping entry whose value is a scalar. All scalar entries of a mapping
// are yielded, in order, when that mapping is visited; nested containers are
// descended into afterwards.
package tree
