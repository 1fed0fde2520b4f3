package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

var (
	errInvalidJSON = errors.New("manifest is not valid JSON")
	errNotObject   = errors.New("manifest is not a JSON object")
)

// Document is a JSON object edited in place: bytes outside the values that
// are set stay exactly as they were read, so key order, unknown fields and
// formatting survive a rewrite.
type Document struct {
	data []byte
}

// ParseDocument checks that data is a single JSON object and wraps a copy of it.
func ParseDocument(data []byte) (*Document, error) {
	if !gjson.ValidBytes(data) {
		return nil, errInvalidJSON
	}

	if !gjson.ParseBytes(data).IsObject() {
		return nil, errNotObject
	}

	return &Document{data: slices.Clone(data)}, nil
}

// Key escapes a single key for use as a path component, e.g. a scoped
// package name inside optionalDependencies.
func Key(name string) string {
	return gjson.Escape(name)
}

// Keys returns the top-level keys in document order.
func (d *Document) Keys() []string {
	var keys []string

	gjson.ParseBytes(d.data).ForEach(func(key, _ gjson.Result) bool {
		keys = append(keys, key.String())
		return true
	})

	return keys
}

// Has reports whether path is present.
func (d *Document) Has(path string) bool {
	return d.Get(path).Exists()
}

// Get returns the value at path.
func (d *Document) Get(path string) gjson.Result {
	return gjson.GetBytes(d.data, path)
}

// Strings returns the string elements of the array at path. A scalar is
// returned as a single element, an absent value as none.
func (d *Document) Strings(path string) []string {
	var out []string

	for _, item := range d.Get(path).Array() {
		out = append(out, item.String())
	}

	return out
}

// Set stores value at path, appending the key if it is new.
func (d *Document) Set(path string, value any) error {
	data, err := sjson.SetBytes(d.data, path, value)
	if err != nil {
		return fmt.Errorf("set %q: %w", path, err)
	}

	d.data = data

	return nil
}

// Bytes returns the document as it will be written.
func (d *Document) Bytes() []byte {
	return d.data
}

// MarshalJSON returns the document bytes unchanged.
func (d *Document) MarshalJSON() ([]byte, error) {
	return bytes.TrimSpace(d.data), nil
}

// Encode renders a generated manifest the way npm writes package.json:
// two-space indent, no HTML escaping, trailing newline.
func Encode(v any) ([]byte, error) {
	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")

	if err := enc.Encode(v); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
