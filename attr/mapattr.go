package attr

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// MapNode is a nested-document node in data mode: a live container created
// at a declaration site, carrying both bound values and the attribute
// configuration (wire name, defaults, key flags) supplied at construction.
//
// Passing the node to a schema declaration (via M) converts it: its live
// storage is discarded and a schema-mode MapAttribute takes its place in
// the enclosing schema. Conversion is one-shot — reusing the same node in a
// second declaration fails loudly, because each enclosing type needs an
// independent copy of the nested schema. A node is in data mode exactly as
// long as its live storage exists.
type MapNode struct {
	doc      *Document
	child    *Schema
	cfg      config
	consumed bool
}

// NewMap creates a nested-document node. A nil child schema makes the node
// raw: a free-form mapping accepting arbitrary keys.
func NewMap(child *Schema, opts ...Option) *MapNode {
	n := &MapNode{child: child, cfg: buildConfig(opts)}
	if child != nil {
		doc, err := child.New(nil)
		if err != nil {
			// child.New(nil) only applies defaults; a failing default is a
			// definition error surfaced when the node is registered.
			if n.cfg.err == nil {
				n.cfg.err = err
			}
			doc = &Document{schema: child, values: make(map[string]any)}
		}
		n.doc = doc
	} else {
		n.doc = NewDocument()
	}
	return n
}

// IsContainer reports whether the node is still in data mode, holding live
// values. Once converted to schema mode this is permanently false.
func (n *MapNode) IsContainer() bool { return n.doc != nil }

// Set binds a value in data mode.
func (n *MapNode) Set(name string, value any) error {
	if n.doc == nil {
		return fmt.Errorf("%w: cannot set %q", ErrNodeConsumed, name)
	}
	return n.doc.Set(name, value)
}

// Get returns a bound value in data mode, or nil.
func (n *MapNode) Get(name string) any {
	if n.doc == nil {
		return nil
	}
	return n.doc.Get(name)
}

// AsMap returns a native view of the node's bound values.
func (n *MapNode) AsMap() map[string]any {
	if n.doc == nil {
		return nil
	}
	return n.doc.AsMap()
}

// Document returns the node's live container while in data mode, or nil.
func (n *MapNode) Document() *Document { return n.doc }

// toSchemaAttribute converts the node to schema mode. Invoked exactly once,
// by schema registration: the live storage is discarded, the attribute
// configuration takes effect, and every declared sub-field is deep-copied
// with its path prefixed by this field's wire name so that enclosing types
// never share nested attribute state.
func (n *MapNode) toSchemaAttribute(fieldName string) (*MapAttribute, error) {
	if n.consumed || n.doc == nil {
		return nil, fmt.Errorf("%w: field %q needs a fresh NewMap value per declaration", ErrNodeConsumed, fieldName)
	}
	n.consumed = true
	n.doc = nil

	a := &MapAttribute{base: newBase(TypeMap, n.cfg), schema: n.child}
	if err := a.bindField(fieldName); err != nil {
		return nil, fmt.Errorf("field %q: %w", fieldName, err)
	}
	if n.child != nil {
		a.order = append([]string(nil), n.child.order...)
		a.fields = make(map[string]Attribute, len(n.child.order))
		for _, name := range n.child.order {
			ca := n.child.attributes[name].(schemaAttribute).clone()
			prefixPath(ca, a.AttrName())
			a.fields[name] = ca
		}
	}
	return a, nil
}

// MapAttribute is a nested-document node in schema mode: it describes a map
// field of an enclosing document type. For schema-bearing nodes its
// sub-fields carry fully prefixed document paths for expression building.
type MapAttribute struct {
	base
	schema *Schema
	fields map[string]Attribute
	order  []string
}

// IsRawMap reports whether the field holds free-form documents.
func (a *MapAttribute) IsRawMap() bool { return a.schema == nil }

// ChildSchema returns the nested document schema, or nil for raw maps.
func (a *MapAttribute) ChildSchema() *Schema { return a.schema }

// Child returns the path-qualified attribute for a declared sub-field, or
// nil for unknown names and raw maps.
func (a *MapAttribute) Child(name string) Attribute {
	return a.fields[name]
}

func (a *MapAttribute) clone() Attribute {
	c := &MapAttribute{base: a.cloneBase(), schema: a.schema}
	if a.fields != nil {
		c.order = append([]string(nil), a.order...)
		c.fields = make(map[string]Attribute, len(a.fields))
		for name, f := range a.fields {
			c.fields[name] = f.(schemaAttribute).clone()
		}
	}
	return c
}

// normalize wraps native maps into documents of the child type when a value
// is bound to a document field.
func (a *MapAttribute) normalize(value any) (any, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case *Document:
		return v, nil
	case *MapNode:
		if v.doc == nil {
			return nil, ErrNodeConsumed
		}
		return v.doc, nil
	case map[string]any:
		if a.schema != nil {
			return a.schema.New(v)
		}
		return rawDocumentFromMap(v), nil
	default:
		return nil, fmt.Errorf("%w: %T is not a document", ErrInvalidValue, value)
	}
}

// Serialize encodes a nested document as a wire map.
func (a *MapAttribute) Serialize(value any) (types.AttributeValue, error) {
	norm, err := a.normalize(value)
	if err != nil {
		return nil, err
	}
	if norm == nil {
		return nil, nil
	}
	m, err := norm.(*Document).Serialize()
	if err != nil {
		return nil, err
	}
	return &types.AttributeValueMemberM{Value: m}, nil
}

// Deserialize decodes a wire map. Schema-bearing nodes produce a freshly
// constructed document of the child type; raw nodes produce a native map.
func (a *MapAttribute) Deserialize(av types.AttributeValue) (any, error) {
	m, ok := av.(*types.AttributeValueMemberM)
	if !ok {
		return nil, fmt.Errorf("%w: expected M, got %T", ErrInvalidValue, av)
	}
	if a.schema != nil {
		return a.schema.Deserialize(m.Value)
	}
	out := make(map[string]any, len(m.Value))
	for k, v := range m.Value {
		native, err := decodeWire(v)
		if err != nil {
			return nil, fmt.Errorf("map key %q: %w", k, err)
		}
		out[k] = native
	}
	return out, nil
}
