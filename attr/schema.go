package attr

import (
	"fmt"
)

// Field pairs a field identity with the attribute (or nested map node) that
// describes it.
type Field struct {
	name string
	attr schemaAttribute
	node *MapNode
	err  error
}

// F declares a schema field backed by an attribute.
func F(name string, a Attribute) Field {
	sa, err := asSchemaAttribute(name, a)
	return Field{name: name, attr: sa, err: err}
}

// M declares a schema field backed by a nested map node. The node is
// converted to schema mode during registration and cannot be reused in a
// second declaration.
func M(name string, n *MapNode) Field {
	return Field{name: name, node: n}
}

// Schema is the immutable description of a document type: an ordered
// mapping from field identity to attribute, plus a reverse mapping from
// wire name to field identity. Built once, at type-declaration time.
type Schema struct {
	typeName    string
	order       []string
	attributes  map[string]Attribute
	wireToField map[string]string
	hashKey     string
	rangeKey    string
}

// NewSchema registers a document type. Fields are collected in declaration
// order; nested map nodes are converted to schema mode and their descendant
// paths prefixed. Duplicate wire names and invalid attribute configurations
// are surfaced here, at declaration time.
func NewSchema(typeName string, fields ...Field) (*Schema, error) {
	s := &Schema{
		typeName:    typeName,
		attributes:  make(map[string]Attribute, len(fields)),
		wireToField: make(map[string]string, len(fields)),
	}
	for _, f := range fields {
		if err := s.register(f); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// MustSchema is like NewSchema but panics on a definition error. Intended
// for package-level schema declarations.
func MustSchema(typeName string, fields ...Field) *Schema {
	s, err := NewSchema(typeName, fields...)
	if err != nil {
		panic(err)
	}
	return s
}

// Extend registers a document type that inherits every field of a base
// schema. Base attributes are deep-copied so the two schemas never share
// attribute state; fields redeclared by name override the inherited ones.
func Extend(typeName string, parent *Schema, fields ...Field) (*Schema, error) {
	s := &Schema{
		typeName:    typeName,
		attributes:  make(map[string]Attribute, len(parent.order)+len(fields)),
		wireToField: make(map[string]string, len(parent.order)+len(fields)),
	}
	for _, name := range parent.order {
		a := parent.attributes[name].(schemaAttribute).clone()
		s.order = append(s.order, name)
		s.attributes[name] = a
		s.wireToField[a.AttrName()] = name
		s.noteKeys(name, a)
	}
	for _, f := range fields {
		if err := s.register(f); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// MustExtend is like Extend but panics on a definition error.
func MustExtend(typeName string, parent *Schema, fields ...Field) *Schema {
	s, err := Extend(typeName, parent, fields...)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *Schema) register(f Field) error {
	if f.err != nil {
		return fmt.Errorf("%s: %w", s.typeName, f.err)
	}
	if f.name == "" {
		return fmt.Errorf("lattice: %s: field with empty name", s.typeName)
	}

	var a Attribute
	if f.node != nil {
		ma, err := f.node.toSchemaAttribute(f.name)
		if err != nil {
			return fmt.Errorf("%s: %w", s.typeName, err)
		}
		a = ma
	} else {
		if err := f.attr.bindField(f.name); err != nil {
			return fmt.Errorf("%s: field %q: %w", s.typeName, f.name, err)
		}
		a = f.attr
	}

	if prev, exists := s.attributes[f.name]; exists {
		// Redeclaration overrides an inherited field.
		delete(s.wireToField, prev.AttrName())
	} else {
		s.order = append(s.order, f.name)
	}
	if other, dup := s.wireToField[a.AttrName()]; dup && other != f.name {
		return fmt.Errorf("%s: %w: %q used by fields %q and %q",
			s.typeName, ErrDuplicateWireName, a.AttrName(), other, f.name)
	}
	s.attributes[f.name] = a
	s.wireToField[a.AttrName()] = f.name
	s.noteKeys(f.name, a)
	return nil
}

func (s *Schema) noteKeys(name string, a Attribute) {
	if a.IsHashKey() {
		s.hashKey = name
	}
	if a.IsRangeKey() {
		s.rangeKey = name
	}
}

// TypeName returns the registered document type name.
func (s *Schema) TypeName() string { return s.typeName }

// FieldNames returns the field identities in declaration order.
func (s *Schema) FieldNames() []string {
	return append([]string(nil), s.order...)
}

// Attr returns the attribute for a field identity, or nil if the field is
// not declared.
func (s *Schema) Attr(name string) Attribute {
	return s.attributes[name]
}

// FieldForWireName resolves a wire name to a field identity.
func (s *Schema) FieldForWireName(wire string) (string, bool) {
	name, ok := s.wireToField[wire]
	return name, ok
}

// HashKeyAttr returns the hash key attribute, or nil if none is declared.
func (s *Schema) HashKeyAttr() Attribute {
	if s.hashKey == "" {
		return nil
	}
	return s.attributes[s.hashKey]
}

// RangeKeyAttr returns the range key attribute, or nil if none is declared.
func (s *Schema) RangeKeyAttr() Attribute {
	if s.rangeKey == "" {
		return nil
	}
	return s.attributes[s.rangeKey]
}
