// Package expr builds DynamoDB condition and update expressions from
// attribute paths.
//
// Attribute factory methods (see the attr package) return [Condition] and
// [Update] fragments that carry the attribute's wire name or full document
// path together with native operand values. Fragments never embed literal
// values into expression text; a [Builder] renders them, allocating
// #name/:value placeholders and marshaling operands, so the resulting
// expression strings and attribute maps can be passed directly to the
// DynamoDB API.
package expr

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Path locates an attribute inside a document. For non-key attributes the
// path is the root-to-leaf sequence of wire names; key attributes are
// addressed directly by name and bypass placeholder substitution the way a
// key condition expression does.
type Path struct {
	segments []string
	key      bool
}

// NewPath creates a document path from root-to-leaf wire name segments.
func NewPath(segments ...string) Path {
	return Path{segments: append([]string(nil), segments...)}
}

// KeyPath creates a path for a hash or range key attribute.
func KeyPath(name string) Path {
	return Path{segments: []string{name}, key: true}
}

// Segments returns the root-to-leaf wire name segments.
func (p Path) Segments() []string {
	return append([]string(nil), p.segments...)
}

// IsKey reports whether this path addresses a hash or range key.
func (p Path) IsKey() bool {
	return p.key
}

// String returns the dotted document path.
func (p Path) String() string {
	return strings.Join(p.segments, ".")
}

type conditionOp int

const (
	opEqual conditionOp = iota
	opNotEqual
	opLessThan
	opLessThanOrEqual
	opGreaterThan
	opGreaterThanOrEqual
	opBetween
	opBeginsWith
	opContains
	opExists
	opNotExists
	opAnd
	opOr
	opNot
)

// Condition is a deferred condition-expression fragment.
type Condition struct {
	op     conditionOp
	path   Path
	values []any
	subs   []Condition
}

// Equal returns a "path = value" condition.
func Equal(p Path, v any) Condition {
	return Condition{op: opEqual, path: p, values: []any{v}}
}

// NotEqual returns a "path <> value" condition.
func NotEqual(p Path, v any) Condition {
	return Condition{op: opNotEqual, path: p, values: []any{v}}
}

// LessThan returns a "path < value" condition.
func LessThan(p Path, v any) Condition {
	return Condition{op: opLessThan, path: p, values: []any{v}}
}

// LessThanOrEqual returns a "path <= value" condition.
func LessThanOrEqual(p Path, v any) Condition {
	return Condition{op: opLessThanOrEqual, path: p, values: []any{v}}
}

// GreaterThan returns a "path > value" condition.
func GreaterThan(p Path, v any) Condition {
	return Condition{op: opGreaterThan, path: p, values: []any{v}}
}

// GreaterThanOrEqual returns a "path >= value" condition.
func GreaterThanOrEqual(p Path, v any) Condition {
	return Condition{op: opGreaterThanOrEqual, path: p, values: []any{v}}
}

// Between returns a "path BETWEEN lower AND upper" condition.
func Between(p Path, lower, upper any) Condition {
	return Condition{op: opBetween, path: p, values: []any{lower, upper}}
}

// BeginsWith returns a "begins_with(path, prefix)" condition.
func BeginsWith(p Path, prefix string) Condition {
	return Condition{op: opBeginsWith, path: p, values: []any{prefix}}
}

// Contains returns a "contains(path, value)" condition.
func Contains(p Path, v any) Condition {
	return Condition{op: opContains, path: p, values: []any{v}}
}

// Exists returns an "attribute_exists(path)" condition.
func Exists(p Path) Condition {
	return Condition{op: opExists, path: p}
}

// NotExists returns an "attribute_not_exists(path)" condition.
func NotExists(p Path) Condition {
	return Condition{op: opNotExists, path: p}
}

// And combines two conditions with AND.
func (c Condition) And(other Condition) Condition {
	return Condition{op: opAnd, subs: []Condition{c, other}}
}

// Or combines two conditions with OR.
func (c Condition) Or(other Condition) Condition {
	return Condition{op: opOr, subs: []Condition{c, other}}
}

// Not negates a condition.
func Not(c Condition) Condition {
	return Condition{op: opNot, subs: []Condition{c}}
}

type updateKind int

const (
	updSet updateKind = iota
	updSetIfNotExists
	updIncrement
	updDecrement
	updAppend
	updPrepend
	updRemove
	updAdd
	updDelete
)

// Update is a deferred update-expression action.
type Update struct {
	kind updateKind
	path Path
	values []any
}

// Set returns a "SET path = value" action.
func Set(p Path, v any) Update {
	return Update{kind: updSet, path: p, values: []any{v}}
}

// SetIfNotExists returns a "SET path = if_not_exists(path, value)" action.
func SetIfNotExists(p Path, v any) Update {
	return Update{kind: updSetIfNotExists, path: p, values: []any{v}}
}

// Increment returns a "SET path = path + value" action.
func Increment(p Path, by any) Update {
	return Update{kind: updIncrement, path: p, values: []any{by}}
}

// Decrement returns a "SET path = path - value" action.
func Decrement(p Path, by any) Update {
	return Update{kind: updDecrement, path: p, values: []any{by}}
}

// Append returns a "SET path = list_append(path, value)" action.
func Append(p Path, items any) Update {
	return Update{kind: updAppend, path: p, values: []any{items}}
}

// Prepend returns a "SET path = list_append(value, path)" action.
func Prepend(p Path, items any) Update {
	return Update{kind: updPrepend, path: p, values: []any{items}}
}

// Remove returns a "REMOVE path" action.
func Remove(p Path) Update {
	return Update{kind: updRemove, path: p}
}

// Add returns an "ADD path value" action for numbers and sets.
func Add(p Path, v any) Update {
	return Update{kind: updAdd, path: p, values: []any{v}}
}

// Delete returns a "DELETE path value" action for sets.
func Delete(p Path, v any) Update {
	return Update{kind: updDelete, path: p, values: []any{v}}
}

// Builder renders condition and update fragments into expression strings,
// allocating expression attribute name and value placeholders as it goes.
// A single Builder can render several fragments (for example a key condition
// plus a filter) so that placeholders never collide; collect the final maps
// with Names and Values.
type Builder struct {
	names    map[string]string
	values   map[string]types.AttributeValue
	nameRefs map[string]string
	nextVal  int
}

// NewBuilder creates an empty Builder.
func NewBuilder() *Builder {
	return &Builder{
		names:    make(map[string]string),
		values:   make(map[string]types.AttributeValue),
		nameRefs: make(map[string]string),
	}
}

// Names returns the accumulated expression attribute names, or nil if no
// placeholders were allocated.
func (b *Builder) Names() map[string]string {
	if len(b.names) == 0 {
		return nil
	}
	return b.names
}

// Values returns the accumulated expression attribute values, or nil if no
// operands were bound.
func (b *Builder) Values() map[string]types.AttributeValue {
	if len(b.values) == 0 {
		return nil
	}
	return b.values
}

// pathRef renders a path, reusing one placeholder per distinct segment.
// Key paths render as the bare attribute name.
func (b *Builder) pathRef(p Path) string {
	if p.key {
		return p.segments[0]
	}
	refs := make([]string, len(p.segments))
	for i, seg := range p.segments {
		ref, ok := b.nameRefs[seg]
		if !ok {
			ref = "#n" + strconv.Itoa(len(b.nameRefs))
			b.nameRefs[seg] = ref
			b.names[ref] = seg
		}
		refs[i] = ref
	}
	return strings.Join(refs, ".")
}

// bind marshals a native operand and returns its value placeholder.
// Values that are already wire-typed are used as is.
func (b *Builder) bind(v any) (string, error) {
	av, ok := v.(types.AttributeValue)
	if !ok {
		var err error
		av, err = attributevalue.Marshal(v)
		if err != nil {
			return "", fmt.Errorf("bind operand: %w", err)
		}
	}
	ref := ":v" + strconv.Itoa(b.nextVal)
	b.nextVal++
	b.values[ref] = av
	return ref, nil
}

// ConditionExpression renders a condition fragment.
func (b *Builder) ConditionExpression(c Condition) (string, error) {
	switch c.op {
	case opAnd, opOr:
		left, err := b.ConditionExpression(c.subs[0])
		if err != nil {
			return "", err
		}
		right, err := b.ConditionExpression(c.subs[1])
		if err != nil {
			return "", err
		}
		word := "AND"
		if c.op == opOr {
			word = "OR"
		}
		return fmt.Sprintf("(%s) %s (%s)", left, word, right), nil
	case opNot:
		inner, err := b.ConditionExpression(c.subs[0])
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("NOT (%s)", inner), nil
	case opExists:
		return fmt.Sprintf("attribute_exists(%s)", b.pathRef(c.path)), nil
	case opNotExists:
		return fmt.Sprintf("attribute_not_exists(%s)", b.pathRef(c.path)), nil
	case opBetween:
		ref := b.pathRef(c.path)
		lo, err := b.bind(c.values[0])
		if err != nil {
			return "", err
		}
		hi, err := b.bind(c.values[1])
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s BETWEEN %s AND %s", ref, lo, hi), nil
	case opBeginsWith:
		ref := b.pathRef(c.path)
		val, err := b.bind(c.values[0])
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("begins_with(%s, %s)", ref, val), nil
	case opContains:
		ref := b.pathRef(c.path)
		val, err := b.bind(c.values[0])
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("contains(%s, %s)", ref, val), nil
	}

	cmp := map[conditionOp]string{
		opEqual:              "=",
		opNotEqual:           "<>",
		opLessThan:           "<",
		opLessThanOrEqual:    "<=",
		opGreaterThan:        ">",
		opGreaterThanOrEqual: ">=",
	}[c.op]
	if cmp == "" {
		return "", fmt.Errorf("unknown condition operator %d", c.op)
	}
	ref := b.pathRef(c.path)
	val, err := b.bind(c.values[0])
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s %s %s", ref, cmp, val), nil
}

// UpdateExpression renders update actions grouped into SET, REMOVE, ADD and
// DELETE clauses, in that order.
func (b *Builder) UpdateExpression(actions ...Update) (string, error) {
	var set, remove, add, del []string

	for _, a := range actions {
		ref := b.pathRef(a.path)
		switch a.kind {
		case updSet:
			val, err := b.bind(a.values[0])
			if err != nil {
				return "", err
			}
			set = append(set, fmt.Sprintf("%s = %s", ref, val))
		case updSetIfNotExists:
			val, err := b.bind(a.values[0])
			if err != nil {
				return "", err
			}
			set = append(set, fmt.Sprintf("%s = if_not_exists(%s, %s)", ref, ref, val))
		case updIncrement:
			val, err := b.bind(a.values[0])
			if err != nil {
				return "", err
			}
			set = append(set, fmt.Sprintf("%s = %s + %s", ref, ref, val))
		case updDecrement:
			val, err := b.bind(a.values[0])
			if err != nil {
				return "", err
			}
			set = append(set, fmt.Sprintf("%s = %s - %s", ref, ref, val))
		case updAppend:
			val, err := b.bind(a.values[0])
			if err != nil {
				return "", err
			}
			set = append(set, fmt.Sprintf("%s = list_append(%s, %s)", ref, ref, val))
		case updPrepend:
			val, err := b.bind(a.values[0])
			if err != nil {
				return "", err
			}
			set = append(set, fmt.Sprintf("%s = list_append(%s, %s)", ref, val, ref))
		case updRemove:
			remove = append(remove, ref)
		case updAdd:
			val, err := b.bind(a.values[0])
			if err != nil {
				return "", err
			}
			add = append(add, fmt.Sprintf("%s %s", ref, val))
		case updDelete:
			val, err := b.bind(a.values[0])
			if err != nil {
				return "", err
			}
			del = append(del, fmt.Sprintf("%s %s", ref, val))
		default:
			return "", fmt.Errorf("unknown update action %d", a.kind)
		}
	}

	var clauses []string
	if len(set) > 0 {
		clauses = append(clauses, "SET "+strings.Join(set, ", "))
	}
	if len(remove) > 0 {
		clauses = append(clauses, "REMOVE "+strings.Join(remove, ", "))
	}
	if len(add) > 0 {
		clauses = append(clauses, "ADD "+strings.Join(add, ", "))
	}
	if len(del) > 0 {
		clauses = append(clauses, "DELETE "+strings.Join(del, ", "))
	}
	if len(clauses) == 0 {
		return "", fmt.Errorf("update expression requires at least one action")
	}
	return strings.Join(clauses, " "), nil
}
