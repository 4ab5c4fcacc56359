package document

import (
	"strconv"
	"strings"
)

// Get resolves a dot-separated path against root.
//
// When an intermediate value is a sequence, the field is read from its first
// element, which stands in for the whole sequence. A missing segment anywhere
// yields Undefined; Get never fails.
func Get(root Value, path string) Value {
	if path == "" {
		return Undefined
	}
	return walk(root, strings.Split(path, "."))
}

func walk(cur Value, segments []string) Value {
	for _, seg := range segments {
		if IsUndefined(cur) {
			return Undefined
		}
		cur = field(cur, seg)
	}
	if cur == nil {
		return Undefined
	}
	return cur
}

func field(v Value, key string) Value {
	switch t := v.(type) {
	case *Mapping:
		return t.Get(key)
	case *Sequence:
		if len(t.Items) == 0 {
			return Undefined
		}
		return field(t.Items[0], key)
	default:
		return Undefined
	}
}

// Split separates a path into its parent path and leaf key. The parent is
// empty for top-level keys.
func Split(path string) (parent, leaf string) {
	idx := strings.LastIndex(path, ".")
	if idx < 0 {
		return "", path
	}
	return path[:idx], path[idx+1:]
}

// Parent resolves the container that holds the leaf of path: root for
// top-level keys, otherwise the value at the parent path.
func Parent(root Value, path string) (Value, string) {
	parent, leaf := Split(path)
	if parent == "" {
		return root, leaf
	}
	return Get(root, parent), leaf
}

// Set writes value at path.
//
// If the parent container is a sequence, the leaf is written on every element
// (each element receives its own copy). Writing through a parent that is
// missing, a scalar, or a sequence containing non-mappings returns an
// *InvalidPathError and leaves root untouched.
func Set(root Value, path string, value Value) error {
	if path == "" {
		return &InvalidPathError{Path: path, Reason: "empty path"}
	}
	container, leaf := Parent(root, path)

	switch t := container.(type) {
	case *Mapping:
		t.Set(leaf, value)
		return nil
	case *Sequence:
		for i, item := range t.Items {
			if _, ok := item.(*Mapping); !ok {
				return &InvalidPathError{Path: path, Reason: "sequence element " + strconv.Itoa(i) + " is not a mapping"}
			}
		}
		for i, item := range t.Items {
			v := value
			if i > 0 {
				v = value.Clone()
			}
			item.(*Mapping).Set(leaf, v)
		}
		return nil
	default:
		return &InvalidPathError{Path: path, Reason: "parent resolves to " + kindOf(container).String()}
	}
}

func kindOf(v Value) Kind {
	if v == nil {
		return KindUndefined
	}
	return v.Kind()
}
