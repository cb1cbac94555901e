package attr

import "errors"

var (
	// ErrConflictingDefaults is returned when an attribute declares both a
	// default and a default-for-new value.
	ErrConflictingDefaults = errors.New("lattice: attribute cannot have both a default and a default-for-new")

	// ErrDuplicateWireName is returned when two fields of one schema share a
	// wire name.
	ErrDuplicateWireName = errors.New("lattice: duplicate wire name in schema")

	// ErrUnknownField is returned when a value is supplied for a field the
	// schema does not declare.
	ErrUnknownField = errors.New("lattice: unknown field")

	// ErrNodeConsumed is returned when a map node is bound to a second
	// schema. Each declaration site needs a fresh node.
	ErrNodeConsumed = errors.New("lattice: map node already bound to a schema")

	// ErrAttributeReused is returned when one attribute instance is bound
	// to a second field. Each declaration site needs a fresh attribute.
	ErrAttributeReused = errors.New("lattice: attribute already bound to a field")

	// ErrKeyRoleRequired is returned when a composite key attribute is
	// declared without a hash or range key role.
	ErrKeyRoleRequired = errors.New("lattice: composite key must be a hash key or a range key")

	// ErrKeyPartsRequired is returned when a composite key attribute is
	// declared with no prefix, suffix, or fixed value.
	ErrKeyPartsRequired = errors.New("lattice: composite key requires a prefix, suffix, or fixed value")

	// ErrUnknownNativeType is returned when raw-mode serialization meets a
	// native value with no registered attribute type.
	ErrUnknownNativeType = errors.New("lattice: no attribute type for native value")

	// ErrUnknownWireTag is returned when deserialization meets a wire type
	// tag with no registered decoder.
	ErrUnknownWireTag = errors.New("lattice: unknown wire type tag")

	// ErrInvalidValue is returned when a value cannot be coerced by the
	// attribute type it is bound to.
	ErrInvalidValue = errors.New("lattice: invalid value for attribute type")
)
