package attr

import (
	"fmt"
	"reflect"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// ListAttribute stores a list field. Elements that are already wire-typed
// pass through unchanged; native elements are encoded via the same dynamic
// type inference raw documents use. An element schema (NewListOf) decodes
// map elements into typed documents.
type ListAttribute struct {
	base
	of *Schema
}

// NewList creates a list attribute with untyped elements.
func NewList(opts ...Option) *ListAttribute {
	return &ListAttribute{base: newBase(TypeList, buildConfig(opts))}
}

// NewListOf creates a list attribute whose elements are documents of the
// given schema.
func NewListOf(of *Schema, opts ...Option) *ListAttribute {
	return &ListAttribute{base: newBase(TypeList, buildConfig(opts)), of: of}
}

func (a *ListAttribute) clone() Attribute {
	return &ListAttribute{base: a.cloneBase(), of: a.of}
}

// ElementSchema returns the element document schema, or nil for untyped
// lists.
func (a *ListAttribute) ElementSchema() *Schema { return a.of }

// Serialize encodes the list.
func (a *ListAttribute) Serialize(value any) (types.AttributeValue, error) {
	if value == nil {
		return nil, nil
	}
	if avs, ok := value.([]types.AttributeValue); ok {
		return &types.AttributeValueMemberL{Value: avs}, nil
	}

	elems, err := anySlice(value)
	if err != nil {
		return nil, err
	}
	out := make([]types.AttributeValue, len(elems))
	for i, e := range elems {
		av, err := a.serializeElement(e)
		if err != nil {
			return nil, fmt.Errorf("list element %d: %w", i, err)
		}
		out[i] = av
	}
	return &types.AttributeValueMemberL{Value: out}, nil
}

func (a *ListAttribute) serializeElement(e any) (types.AttributeValue, error) {
	if a.of != nil {
		var doc *Document
		switch v := e.(type) {
		case *Document:
			doc = v
		case map[string]any:
			var err error
			doc, err = a.of.New(v)
			if err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("%w: %T is not a %s document", ErrInvalidValue, e, a.of.TypeName())
		}
		m, err := doc.Serialize()
		if err != nil {
			return nil, err
		}
		return &types.AttributeValueMemberM{Value: m}, nil
	}
	return serializeNative(e)
}

// Deserialize decodes the list. With an element schema, map elements become
// typed documents; otherwise elements decode via the wire-tag registry.
func (a *ListAttribute) Deserialize(av types.AttributeValue) (any, error) {
	l, ok := av.(*types.AttributeValueMemberL)
	if !ok {
		return nil, fmt.Errorf("%w: expected L, got %T", ErrInvalidValue, av)
	}
	out := make([]any, len(l.Value))
	for i, elem := range l.Value {
		if a.of != nil {
			m, ok := elem.(*types.AttributeValueMemberM)
			if !ok {
				return nil, fmt.Errorf("list element %d: %w: expected M, got %T", i, ErrInvalidValue, elem)
			}
			doc, err := a.of.Deserialize(m.Value)
			if err != nil {
				return nil, fmt.Errorf("list element %d: %w", i, err)
			}
			out[i] = doc
			continue
		}
		v, err := decodeWire(elem)
		if err != nil {
			return nil, fmt.Errorf("list element %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

// anySlice widens any slice or array value to []any.
func anySlice(value any) ([]any, error) {
	if elems, ok := value.([]any); ok {
		return elems, nil
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, fmt.Errorf("%w: %T is not a list", ErrInvalidValue, value)
	}
	elems := make([]any, rv.Len())
	for i := range elems {
		elems[i] = rv.Index(i).Interface()
	}
	return elems, nil
}
