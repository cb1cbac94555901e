package attr

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/latticedb/lattice/expr"
)

// Wire type tags used by the store's type-tagged value encoding.
const (
	TypeString    = "S"
	TypeNumber    = "N"
	TypeBoolean   = "BOOL"
	TypeStringSet = "SS"
	TypeList      = "L"
	TypeMap       = "M"
	TypeNull      = "NULL"
)

// Attribute describes one field of a document type: its wire type tag, wire
// name, document path, key role, and the conversion between native values
// and the store's typed wire representation.
//
// Serialize returns a nil AttributeValue with a nil error to signal that the
// field should be omitted from the wire payload (empty strings, empty sets).
type Attribute interface {
	// AttrType returns the wire type tag (S, N, BOOL, SS, L, M, NULL).
	AttrType() string

	// AttrName returns the wire name of the field.
	AttrName() string

	// Path returns the root-to-leaf sequence of wire names locating this
	// field inside its document.
	Path() []string

	// IsHashKey reports whether the field is the primary (hash) key.
	IsHashKey() bool

	// IsRangeKey reports whether the field is the sort (range) key.
	IsRangeKey() bool

	// Nullable reports whether the field may be absent.
	Nullable() bool

	// Serialize converts a native value to its wire representation.
	Serialize(value any) (types.AttributeValue, error)

	// Deserialize converts a wire value back to its native representation.
	Deserialize(av types.AttributeValue) (any, error)
}

// config collects the options shared by all attribute constructors.
type config struct {
	wireName  string
	hashKey   bool
	rangeKey  bool
	null      bool
	def       any
	defForNew any

	// composite key parts (KeyAttribute only)
	keyPrefix string
	keySuffix string
	keyFixed  string
	keySep    string

	err error
}

// Option configures an attribute at construction time.
type Option func(*config)

// WireName sets a wire name that differs from the field identity.
func WireName(name string) Option {
	return func(c *config) { c.wireName = name }
}

// HashKey marks the attribute as the primary (hash) key.
func HashKey() Option {
	return func(c *config) { c.hashKey = true }
}

// RangeKey marks the attribute as the sort (range) key.
func RangeKey() Option {
	return func(c *config) { c.rangeKey = true }
}

// Nullable marks the attribute as allowed to be absent.
func Nullable() Option {
	return func(c *config) { c.null = true }
}

// Default sets a default value applied whenever a document is constructed.
// v may be a func() any, invoked at construction time.
func Default(v any) Option {
	return func(c *config) { c.def = v }
}

// DefaultForNew sets a default applied only when a document is freshly
// created, not when it is rehydrated from storage. v may be a func() any.
// An attribute cannot carry both Default and DefaultForNew.
func DefaultForNew(v any) Option {
	return func(c *config) { c.defForNew = v }
}

// Prefix sets the composite key prefix part.
func Prefix(p string) Option {
	return func(c *config) { c.keyPrefix = p }
}

// Suffix sets the composite key suffix part.
func Suffix(s string) Option {
	return func(c *config) { c.keySuffix = s }
}

// FixedValue sets the composite key fixed value, used when no dynamic value
// is supplied.
func FixedValue(v string) Option {
	return func(c *config) { c.keyFixed = v }
}

// Separator overrides the composite key separator (default "#").
func Separator(sep string) Option {
	return func(c *config) { c.keySep = sep }
}

func buildConfig(opts []Option) config {
	var c config
	for _, opt := range opts {
		opt(&c)
	}
	if c.def != nil && c.defForNew != nil && c.err == nil {
		c.err = ErrConflictingDefaults
	}
	return c
}

// base carries the state and protocol shared by every attribute type.
type base struct {
	attrType  string
	field     string
	wireName  string
	path      []string
	hashKey   bool
	rangeKey  bool
	null      bool
	def       any
	defForNew any
	defErr    error
}

func newBase(attrType string, c config) base {
	return base{
		attrType:  attrType,
		wireName:  c.wireName,
		hashKey:   c.hashKey,
		rangeKey:  c.rangeKey,
		null:      c.null,
		def:       c.def,
		defForNew: c.defForNew,
		defErr:    c.err,
	}
}

// bindField attaches the attribute to a schema field, fixing its wire name
// and root path. Rebinding with the same field name is a no-op; binding to
// a different field fails so one instance cannot silently serve two
// schemas with diverging addressing.
func (b *base) bindField(fieldName string) error {
	if b.defErr != nil {
		return b.defErr
	}
	if b.field != "" && b.field != fieldName {
		return fmt.Errorf("%w: bound to %q, redeclared as %q", ErrAttributeReused, b.field, fieldName)
	}
	b.field = fieldName
	if b.wireName == "" {
		b.wireName = fieldName
	}
	b.path = []string{b.wireName}
	return nil
}

func (b *base) baseRef() *base { return b }

// cloneBase copies the base with an independent path slice.
func (b *base) cloneBase() base {
	c := *b
	c.path = append([]string(nil), b.path...)
	return c
}

// AttrType returns the wire type tag.
func (b *base) AttrType() string { return b.attrType }

// AttrName returns the wire name of the field.
func (b *base) AttrName() string { return b.wireName }

// Path returns the root-to-leaf wire name path.
func (b *base) Path() []string {
	return append([]string(nil), b.path...)
}

// IsHashKey reports whether the field is the primary key.
func (b *base) IsHashKey() bool { return b.hashKey }

// IsRangeKey reports whether the field is the sort key.
func (b *base) IsRangeKey() bool { return b.rangeKey }

// Nullable reports whether the field may be absent.
func (b *base) Nullable() bool { return b.null }

// Get returns the value bound to this field in doc, or nil if unset.
func (b *base) Get(doc *Document) any {
	return doc.Get(b.field)
}

// Set binds a value to this field in doc.
func (b *base) Set(doc *Document, v any) error {
	return doc.Set(b.field, v)
}

// defaultValue resolves the default to apply for a construction mode,
// invoking value-producing functions. Returns nil when no default applies.
func (b *base) defaultValue(forNew bool) any {
	def := b.def
	if forNew && b.defForNew != nil {
		def = b.defForNew
	}
	if fn, ok := def.(func() any); ok {
		return fn()
	}
	return def
}

// exprPath returns the expression path for this field. Key fields are
// addressed directly by name; everything else uses the full document path.
func (b *base) exprPath() expr.Path {
	if b.hashKey || b.rangeKey {
		return expr.KeyPath(b.wireName)
	}
	return expr.NewPath(b.path...)
}

// Condition factories. The returned fragments carry the attribute's wire
// name or full path; a downstream expression builder embeds literal values.

// Equal returns a condition that this attribute equals the value.
func (b *base) Equal(v any) expr.Condition { return expr.Equal(b.exprPath(), v) }

// NotEqual returns a condition that this attribute differs from the value.
func (b *base) NotEqual(v any) expr.Condition { return expr.NotEqual(b.exprPath(), v) }

// LessThan returns a condition that this attribute is below the value.
func (b *base) LessThan(v any) expr.Condition { return expr.LessThan(b.exprPath(), v) }

// GreaterThan returns a condition that this attribute is above the value.
func (b *base) GreaterThan(v any) expr.Condition { return expr.GreaterThan(b.exprPath(), v) }

// Between returns a condition that this attribute lies between the bounds.
func (b *base) Between(lower, upper any) expr.Condition {
	return expr.Between(b.exprPath(), lower, upper)
}

// BeginsWith returns a condition that this attribute starts with the prefix.
func (b *base) BeginsWith(prefix string) expr.Condition {
	return expr.BeginsWith(b.exprPath(), prefix)
}

// Exists returns a condition that this attribute is present.
func (b *base) Exists() expr.Condition { return expr.Exists(b.exprPath()) }

// NotExists returns a condition that this attribute is absent.
func (b *base) NotExists() expr.Condition { return expr.NotExists(b.exprPath()) }

// Update-expression factories.

// SetValue returns an action that sets this attribute to the value.
func (b *base) SetValue(v any) expr.Update { return expr.Set(b.exprPath(), v) }

// Increment returns an action that adds to this numeric attribute.
func (b *base) Increment(by any) expr.Update { return expr.Increment(b.exprPath(), by) }

// Decrement returns an action that subtracts from this numeric attribute.
func (b *base) Decrement(by any) expr.Update { return expr.Decrement(b.exprPath(), by) }

// Append returns an action that appends items to this list attribute.
func (b *base) Append(items any) expr.Update { return expr.Append(b.exprPath(), items) }

// Prepend returns an action that prepends items to this list attribute.
func (b *base) Prepend(items any) expr.Update { return expr.Prepend(b.exprPath(), items) }

// Remove returns an action that removes this attribute.
func (b *base) Remove() expr.Update { return expr.Remove(b.exprPath()) }

// Add returns an action that adds values to this set or number attribute.
func (b *base) Add(values any) expr.Update { return expr.Add(b.exprPath(), values) }

// Delete returns an action that deletes values from this set attribute.
func (b *base) Delete(values any) expr.Update { return expr.Delete(b.exprPath(), values) }

// schemaAttribute is the internal contract schema registration relies on.
// All attribute types in this package implement it.
type schemaAttribute interface {
	Attribute
	bindField(fieldName string) error
	baseRef() *base
	clone() Attribute
}

// normalizer is implemented by attribute types that coerce values when they
// are bound to a document (TTL instants, nested maps).
type normalizer interface {
	normalize(v any) (any, error)
}

// prefixPath prepends a path segment to an attribute and, for nested map
// attributes, to all of its descendants.
func prefixPath(a Attribute, segment string) {
	b := a.(schemaAttribute).baseRef()
	b.path = append([]string{segment}, b.path...)
	if ma, ok := a.(*MapAttribute); ok {
		for _, name := range ma.order {
			prefixPath(ma.fields[name], segment)
		}
	}
}

func asSchemaAttribute(name string, a Attribute) (schemaAttribute, error) {
	sa, ok := a.(schemaAttribute)
	if !ok {
		return nil, fmt.Errorf("lattice: field %q: attribute type %T was not created by this package", name, a)
	}
	return sa, nil
}
