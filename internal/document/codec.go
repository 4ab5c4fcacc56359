package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Decode parses JSON or YAML into a document tree; mapping key order is
// preserved. Input whose first non-space byte is '{' or '[' is read as JSON,
// falling back to YAML flow style when it is not valid JSON.
func Decode(data []byte) (Value, error) {
	if trimmed := bytes.TrimLeft(data, " \t\r\n"); len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		v, err := decodeJSON(trimmed)
		if err == nil {
			return v, nil
		}
		if y, yerr := decodeYAML(data); yerr == nil {
			return y, nil
		}
		return nil, err
	}
	return decodeYAML(data)
}

func decodeYAML(data []byte) (Value, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, &DecodeError{Message: "failed to parse document", Cause: err}
	}
	if root.Kind == 0 {
		return nil, &DecodeError{Message: "document is empty"}
	}
	return fromNode(&root)
}

// decodeJSON walks the token stream so key order survives. Numbers stay as
// json.Number unless they are plain int literals, so values outside int64 or
// float64 range are written back unchanged.
func decodeJSON(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	v, err := readJSON(dec)
	if err != nil {
		return nil, &DecodeError{Message: "failed to parse JSON document", Cause: err}
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, &DecodeError{Message: "unexpected data after JSON document", Cause: err}
	}
	return v, nil
}

func readJSON(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			m := NewMapping()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("object key %v is not a string", keyTok)
				}
				val, err := readJSON(dec)
				if err != nil {
					return nil, err
				}
				m.Set(key, val)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return m, nil
		case '[':
			s := &Sequence{Items: []Value{}}
			for dec.More() {
				val, err := readJSON(dec)
				if err != nil {
					return nil, err
				}
				s.Items = append(s.Items, val)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return s, nil
		}
		return nil, fmt.Errorf("unexpected delimiter %q", rune(t))
	case json.Number:
		return numberScalar(t), nil
	default:
		// string, bool, or nil
		return Scalar{v: t}, nil
	}
}

func numberScalar(n json.Number) Scalar {
	lit := string(n)
	if i, err := strconv.ParseInt(lit, 10, 64); err == nil && strconv.FormatInt(i, 10) == lit {
		return Scalar{v: int(i)}
	}
	return Scalar{v: n}
}

// LoadFile reads and decodes a document file.
func LoadFile(path string) (Value, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read document %s: %w", path, err)
	}
	return Decode(data)
}

// WriteFile encodes v as YAML when path ends in .yaml/.yml, JSON otherwise.
func WriteFile(path string, v Value) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = EncodeYAML(v)
	default:
		data, err = EncodeJSONIndent(v)
	}
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write document %s: %w", path, err)
	}
	return nil
}

func fromNode(n *yaml.Node) (Value, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, &DecodeError{Message: "document is empty"}
		}
		return fromNode(n.Content[0])
	case yaml.AliasNode:
		return fromNode(n.Alias)
	case yaml.MappingNode:
		m := NewMapping()
		for i := 0; i+1 < len(n.Content); i += 2 {
			keyNode, valNode := n.Content[i], n.Content[i+1]
			if keyNode.Kind != yaml.ScalarNode {
				return nil, &DecodeError{Message: fmt.Sprintf("line %d: mapping keys must be scalars", keyNode.Line)}
			}
			val, err := fromNode(valNode)
			if err != nil {
				return nil, err
			}
			m.Set(keyNode.Value, val)
		}
		return m, nil
	case yaml.SequenceNode:
		s := &Sequence{Items: make([]Value, 0, len(n.Content))}
		for _, child := range n.Content {
			val, err := fromNode(child)
			if err != nil {
				return nil, err
			}
			s.Items = append(s.Items, val)
		}
		return s, nil
	case yaml.ScalarNode:
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, &DecodeError{Message: fmt.Sprintf("line %d: invalid scalar", n.Line), Cause: err}
		}
		return NewScalar(v), nil
	default:
		return nil, &DecodeError{Message: fmt.Sprintf("unsupported node kind %d", n.Kind)}
	}
}

// EncodeJSON serializes v as compact JSON with mapping keys in document order.
func EncodeJSON(v Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeJSON(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EncodeJSONIndent serializes v as two-space indented JSON.
func EncodeJSONIndent(v Value) ([]byte, error) {
	compact, err := EncodeJSON(v)
	if err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, compact, "", "  "); err != nil {
		return nil, fmt.Errorf("failed to indent JSON: %w", err)
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}

func writeJSON(buf *bytes.Buffer, v Value) error {
	switch t := v.(type) {
	case *Mapping:
		buf.WriteByte('{')
		for i, key := range t.keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			kb, err := marshalJSON(key)
			if err != nil {
				return err
			}
			buf.Write(kb)
			buf.WriteByte(':')
			if err := writeJSON(buf, t.fields[key]); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	case *Sequence:
		buf.WriteByte('[')
		for i, item := range t.Items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSON(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case Scalar:
		b, err := marshalJSON(t.v)
		if err != nil {
			return fmt.Errorf("failed to encode scalar: %w", err)
		}
		buf.Write(b)
	default:
		buf.WriteString("null")
	}
	return nil
}

// marshalJSON is json.Marshal without HTML escaping, so "R&D" stays as written.
func marshalJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// MarshalJSON implements json.Marshaler.
func (m *Mapping) MarshalJSON() ([]byte, error) { return EncodeJSON(m) }

// MarshalJSON implements json.Marshaler.
func (s *Sequence) MarshalJSON() ([]byte, error) { return EncodeJSON(s) }

// MarshalJSON implements json.Marshaler.
func (s Scalar) MarshalJSON() ([]byte, error) { return EncodeJSON(s) }

// EncodeYAML serializes v as YAML with mapping keys in document order.
func EncodeYAML(v Value) ([]byte, error) {
	node, err := toNode(v)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(node); err != nil {
		return nil, fmt.Errorf("failed to encode YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode YAML: %w", err)
	}
	return buf.Bytes(), nil
}

func toNode(v Value) (*yaml.Node, error) {
	switch t := v.(type) {
	case *Mapping:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, key := range t.keys {
			child, err := toNode(t.fields[key])
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}, child)
		}
		return n, nil
	case *Sequence:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range t.Items {
			child, err := toNode(item)
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, child)
		}
		return n, nil
	case Scalar:
		if num, ok := t.v.(json.Number); ok {
			tag := "!!int"
			if strings.ContainsAny(string(num), ".eE") {
				tag = "!!float"
			}
			return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: string(num)}, nil
		}
		n := &yaml.Node{}
		if err := n.Encode(t.v); err != nil {
			return nil, fmt.Errorf("failed to encode scalar: %w", err)
		}
		return n, nil
	default:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}, nil
	}
}
