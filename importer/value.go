package importer

import (
	"bytes"
	"encoding/json"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/trellisdb/trellis/errors"
)

// ErrInvalidInput indicates input that is not representable as a scalar,
// mapping, or sequence, or that exceeds the importer's depth bound. Fatal
// for the whole import.
var ErrInvalidInput = errors.New("invalid input shape")

// Kind tags the closed set of hierarchical value shapes. Every value is
// resolved to exactly one kind at the boundary of each recursive step; there
// is no open-ended fallback.
type Kind int

const (
	KindScalar Kind = iota
	KindMapping
	KindSequence
)

func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindMapping:
		return "mapping"
	case KindSequence:
		return "sequence"
	default:
		return "unknown"
	}
}

// Value is one node of a hierarchical input: a scalar, an ordered-key
// mapping, or an ordered sequence. A nil *Value represents an absent value
// (null) and is always discarded by the importer.
type Value struct {
	kind   Kind
	scalar any
	pairs  []Pair
	items  []*Value
}

// Pair is one ordered key/value entry of a mapping.
type Pair struct {
	Key   string
	Value *Value
}

// Scalar wraps a scalar value.
func Scalar(v any) *Value {
	return &Value{kind: KindScalar, scalar: v}
}

// Mapping builds an ordered mapping from pairs.
func Mapping(pairs ...Pair) *Value {
	return &Value{kind: KindMapping, pairs: pairs}
}

// Sequence builds an ordered sequence.
func Sequence(items ...*Value) *Value {
	return &Value{kind: KindSequence, items: items}
}

// Kind returns the value's shape tag.
func (v *Value) Kind() Kind { return v.kind }

// Scalar returns the wrapped scalar; only meaningful for KindScalar.
func (v *Value) Scalar() any { return v.scalar }

// Pairs returns the ordered mapping entries; only meaningful for KindMapping.
func (v *Value) Pairs() []Pair { return v.pairs }

// Items returns the sequence elements; only meaningful for KindSequence.
func (v *Value) Items() []*Value { return v.items }

// FromYAML decodes a YAML document into a Value, preserving mapping key
// order. A null document decodes to nil.
func FromYAML(data []byte) (*Value, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "failed to parse YAML"), ErrInvalidInput)
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return nil, nil
	}
	return fromYAMLNode(doc.Content[0])
}

func fromYAMLNode(node *yaml.Node) (*Value, error) {
	switch node.Kind {
	case yaml.AliasNode:
		return fromYAMLNode(node.Alias)

	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			return nil, nil
		}
		var v any
		if err := node.Decode(&v); err != nil {
			return nil, errors.Mark(errors.Wrapf(err, "bad scalar at line %d", node.Line), ErrInvalidInput)
		}
		return Scalar(v), nil

	case yaml.MappingNode:
		pairs := make([]Pair, 0, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			keyNode, valNode := node.Content[i], node.Content[i+1]
			var key string
			if err := keyNode.Decode(&key); err != nil {
				return nil, errors.Mark(
					errors.Wrapf(err, "non-string mapping key at line %d", keyNode.Line),
					ErrInvalidInput)
			}
			val, err := fromYAMLNode(valNode)
			if err != nil {
				return nil, err
			}
			pairs = append(pairs, Pair{Key: key, Value: val})
		}
		return Mapping(pairs...), nil

	case yaml.SequenceNode:
		items := make([]*Value, 0, len(node.Content))
		for _, child := range node.Content {
			item, err := fromYAMLNode(child)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
		return Sequence(items...), nil

	default:
		return nil, errors.Mark(
			errors.Newf("unsupported YAML node kind %d at line %d", node.Kind, node.Line),
			ErrInvalidInput)
	}
}

// FromJSON decodes a JSON document into a Value, preserving object key
// order via token-level decoding. A null document decodes to nil.
func FromJSON(data []byte) (*Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	v, err := fromJSONToken(dec)
	if err != nil {
		return nil, err
	}

	// Trailing garbage after the document is malformed input
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.Mark(errors.New("trailing data after JSON document"), ErrInvalidInput)
	}
	return v, nil
}

func fromJSONToken(dec *json.Decoder) (*Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "failed to parse JSON"), ErrInvalidInput)
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			var pairs []Pair
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, errors.Mark(errors.Wrap(err, "failed to parse JSON key"), ErrInvalidInput)
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, errors.Mark(errors.Newf("non-string JSON key %v", keyTok), ErrInvalidInput)
				}
				val, err := fromJSONToken(dec)
				if err != nil {
					return nil, err
				}
				pairs = append(pairs, Pair{Key: key, Value: val})
			}
			if _, err := dec.Token(); err != nil { // consume '}'
				return nil, errors.Mark(errors.Wrap(err, "unterminated JSON object"), ErrInvalidInput)
			}
			return Mapping(pairs...), nil

		case '[':
			var items []*Value
			for dec.More() {
				item, err := fromJSONToken(dec)
				if err != nil {
					return nil, err
				}
				items = append(items, item)
			}
			if _, err := dec.Token(); err != nil { // consume ']'
				return nil, errors.Mark(errors.Wrap(err, "unterminated JSON array"), ErrInvalidInput)
			}
			return Sequence(items...), nil
		}
		return nil, errors.Mark(errors.Newf("unexpected JSON delimiter %v", t), ErrInvalidInput)

	case nil:
		return nil, nil

	case json.Number:
		if i, err := t.Int64(); err == nil {
			return Scalar(i), nil
		}
		f, err := t.Float64()
		if err != nil {
			return nil, errors.Mark(errors.Newf("unparseable JSON number %q", t.String()), ErrInvalidInput)
		}
		return Scalar(f), nil

	default:
		// string or bool
		return Scalar(t), nil
	}
}
