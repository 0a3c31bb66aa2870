package submit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// NonFieldKey is the key under which the backend reports object-level errors.
const NonFieldKey = "non_field_errors"

// FieldErrors is a tree of validation messages mirroring the backend's
// form_errors shape: objects keyed by field name, lists of per-item errors
// for nested collections, and string lists at the leaves.
type FieldErrors struct {
	Messages []string
	Fields   map[string]*FieldErrors
	Items    []*FieldErrors
}

// ParseFieldErrors decodes a form_errors value. A JSON null yields nil.
func ParseFieldErrors(raw json.RawMessage) (*FieldErrors, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("decode form errors: %w", err)
	}
	return fromValue(v), nil
}

func fromValue(v any) *FieldErrors {
	fe := &FieldErrors{}
	switch val := v.(type) {
	case nil:
	case string:
		fe.Messages = []string{val}
	case []any:
		if allStrings(val) {
			for _, item := range val {
				fe.Messages = append(fe.Messages, item.(string))
			}
			return fe
		}
		for _, item := range val {
			fe.Items = append(fe.Items, fromValue(item))
		}
	case map[string]any:
		fe.Fields = make(map[string]*FieldErrors, len(val))
		for key, item := range val {
			fe.Fields[key] = fromValue(item)
		}
	default:
		fe.Messages = []string{fmt.Sprint(val)}
	}
	return fe
}

func allStrings(items []any) bool {
	for _, item := range items {
		if _, ok := item.(string); !ok {
			return false
		}
	}
	return true
}

// Field returns the errors for a named child. Safe on nil receivers.
func (f *FieldErrors) Field(name string) *FieldErrors {
	if f == nil {
		return nil
	}
	return f.Fields[name]
}

// Index returns the errors for the i-th item of a nested list. Safe on nil receivers.
func (f *FieldErrors) Index(i int) *FieldErrors {
	if f == nil || i < 0 || i >= len(f.Items) {
		return nil
	}
	return f.Items[i]
}

// Lookup resolves a path such as "questions[1].options[1].text" and returns
// its messages.
func (f *FieldErrors) Lookup(path string) []string {
	node := f
	for _, part := range strings.Split(path, ".") {
		name, indexes := splitIndexes(part)
		if name != "" {
			node = node.Field(name)
		}
		for _, i := range indexes {
			node = node.Index(i)
		}
		if node == nil {
			return nil
		}
	}
	return node.Messages
}

func splitIndexes(part string) (string, []int) {
	open := strings.IndexByte(part, '[')
	if open < 0 {
		return part, nil
	}
	name := part[:open]
	var indexes []int
	for _, chunk := range strings.Split(part[open:], "[") {
		chunk = strings.TrimSuffix(chunk, "]")
		if chunk == "" {
			continue
		}
		i, err := strconv.Atoi(chunk)
		if err != nil {
			return name, []int{-1}
		}
		indexes = append(indexes, i)
	}
	return name, indexes
}

// Empty reports whether the tree carries no messages at all.
func (f *FieldErrors) Empty() bool {
	if f == nil {
		return true
	}
	if len(f.Messages) > 0 {
		return false
	}
	for _, child := range f.Fields {
		if !child.Empty() {
			return false
		}
	}
	for _, item := range f.Items {
		if !item.Empty() {
			return false
		}
	}
	return true
}

// IsList reports whether the tree is a bare list of generic messages.
func (f *FieldErrors) IsList() bool {
	return f != nil && f.Fields == nil && f.Items == nil
}

// Add appends a message at path, creating intermediate nodes and padding
// item lists with empty entries.
func (f *FieldErrors) Add(path, message string) {
	node := f
	for _, part := range strings.Split(path, ".") {
		name, indexes := splitIndexes(part)
		if name != "" {
			if node.Fields == nil {
				node.Fields = make(map[string]*FieldErrors)
			}
			child, ok := node.Fields[name]
			if !ok {
				child = &FieldErrors{}
				node.Fields[name] = child
			}
			node = child
		}
		for _, i := range indexes {
			for len(node.Items) <= i {
				node.Items = append(node.Items, &FieldErrors{})
			}
			node = node.Items[i]
		}
	}
	node.Messages = append(node.Messages, message)
}

// NonField returns object-level messages: the bare list form, or the
// non_field_errors key of the object form.
func (f *FieldErrors) NonField() []string {
	if f == nil {
		return nil
	}
	if f.IsList() {
		return f.Messages
	}
	return f.Field(NonFieldKey).messages()
}

func (f *FieldErrors) messages() []string {
	if f == nil {
		return nil
	}
	return f.Messages
}

// Flatten returns every message keyed by its dotted path.
func (f *FieldErrors) Flatten() map[string][]string {
	out := make(map[string][]string)
	f.flatten("", out)
	return out
}

func (f *FieldErrors) flatten(prefix string, out map[string][]string) {
	if f == nil {
		return
	}
	if len(f.Messages) > 0 {
		out[prefix] = append(out[prefix], f.Messages...)
	}
	keys := make([]string, 0, len(f.Fields))
	for key := range f.Fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}
		f.Fields[key].flatten(path, out)
	}
	for i, item := range f.Items {
		item.flatten(fmt.Sprintf("%s[%d]", prefix, i), out)
	}
}

// MarshalJSON encodes the tree back into the backend's form_errors shape.
func (f *FieldErrors) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.value())
}

func (f *FieldErrors) value() any {
	switch {
	case f == nil:
		return nil
	case f.Fields != nil:
		out := make(map[string]any, len(f.Fields))
		for key, child := range f.Fields {
			out[key] = child.value()
		}
		return out
	case f.Items != nil:
		out := make([]any, 0, len(f.Items))
		for _, item := range f.Items {
			out = append(out, item.value())
		}
		return out
	case f.Messages != nil:
		return f.Messages
	default:
		return map[string]any{}
	}
}
