package attr

import (
	"fmt"
	"sort"
)

// Document holds the bound field values of one entity instance: a top-level
// document or a nested sub-document. A document with a schema restricts
// access to declared fields; a raw document (nil schema) is a free-form
// mapping with insertion-ordered keys. Documents are not safe for
// concurrent mutation.
type Document struct {
	schema *Schema
	values map[string]any
	order  []string
}

// NewDocument creates a raw document with no schema.
func NewDocument() *Document {
	return &Document{values: make(map[string]any)}
}

// New constructs a freshly created document of this type: for-new defaults
// apply, then the supplied values. Supplying a name the schema does not
// declare is a definition error.
func (s *Schema) New(values map[string]any) (*Document, error) {
	return s.build(true, values)
}

// Load constructs a document rehydrated from storage: only plain defaults
// apply, never for-new defaults.
func (s *Schema) Load(values map[string]any) (*Document, error) {
	return s.build(false, values)
}

func (s *Schema) build(forNew bool, values map[string]any) (*Document, error) {
	d := &Document{schema: s, values: make(map[string]any, len(s.order))}

	for _, name := range s.order {
		b := s.attributes[name].(schemaAttribute).baseRef()
		if def := b.defaultValue(forNew); def != nil {
			if err := d.Set(name, def); err != nil {
				return nil, fmt.Errorf("%s: default for %q: %w", s.typeName, name, err)
			}
		}
	}

	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := d.Set(name, values[name]); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// Schema returns the document's schema, or nil for raw documents.
func (d *Document) Schema() *Schema { return d.schema }

// IsRaw reports whether the document is a free-form mapping.
func (d *Document) IsRaw() bool { return d.schema == nil }

// Set binds a value to a field. For schema-bearing documents the name must
// be declared; raw documents accept any key. Values pass through the
// attribute's normalization (nested maps become documents, TTL values
// become UTC instants).
func (d *Document) Set(name string, value any) error {
	if d.schema == nil {
		if _, exists := d.values[name]; !exists {
			d.order = append(d.order, name)
		}
		d.values[name] = value
		return nil
	}

	a, ok := d.schema.attributes[name]
	if !ok {
		return fmt.Errorf("%w: %q is not a field of %s", ErrUnknownField, name, d.schema.typeName)
	}
	if n, ok := a.(normalizer); ok && value != nil {
		norm, err := n.normalize(value)
		if err != nil {
			return fmt.Errorf("%s.%s: %w", d.schema.typeName, name, err)
		}
		value = norm
	}
	if _, exists := d.values[name]; !exists {
		d.order = append(d.order, name)
	}
	d.values[name] = value
	return nil
}

// Get returns the value bound to a field, or nil if unset.
func (d *Document) Get(name string) any {
	return d.values[name]
}

// Has reports whether a field has a bound value.
func (d *Document) Has(name string) bool {
	_, ok := d.values[name]
	return ok
}

// Keys returns the bound field names in insertion order.
func (d *Document) Keys() []string {
	return append([]string(nil), d.order...)
}

// AsMap returns a native view of the document, recursing into nested
// documents.
func (d *Document) AsMap() map[string]any {
	out := make(map[string]any, len(d.values))
	for name, v := range d.values {
		if doc, ok := v.(*Document); ok {
			out[name] = doc.AsMap()
			continue
		}
		out[name] = v
	}
	return out
}

// rawDocumentFromMap builds a raw document from a native map. Keys are
// sorted so serialization of map literals is deterministic.
func rawDocumentFromMap(m map[string]any) *Document {
	d := NewDocument()
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		d.Set(k, m[k])
	}
	return d
}
