package attr

import (
	"fmt"
	"math"
	"reflect"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// UnicodeAttribute stores a string field.
type UnicodeAttribute struct {
	base
}

// NewUnicode creates a string attribute.
func NewUnicode(opts ...Option) *UnicodeAttribute {
	return &UnicodeAttribute{base: newBase(TypeString, buildConfig(opts))}
}

func (a *UnicodeAttribute) clone() Attribute {
	return &UnicodeAttribute{base: a.cloneBase()}
}

// Serialize coerces the value to a string. Empty strings and nil are
// omitted from the wire payload.
func (a *UnicodeAttribute) Serialize(value any) (types.AttributeValue, error) {
	s, err := coerceString(value)
	if err != nil {
		return nil, err
	}
	if s == "" {
		return nil, nil
	}
	return &types.AttributeValueMemberS{Value: s}, nil
}

// Deserialize returns the stored string.
func (a *UnicodeAttribute) Deserialize(av types.AttributeValue) (any, error) {
	s, ok := av.(*types.AttributeValueMemberS)
	if !ok {
		return nil, fmt.Errorf("%w: expected S, got %T", ErrInvalidValue, av)
	}
	return s.Value, nil
}

func coerceString(value any) (string, error) {
	switch v := value.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case fmt.Stringer:
		return v.String(), nil
	default:
		return fmt.Sprint(v), nil
	}
}

// NumberAttribute stores a numeric field. Values round-trip exactly:
// integral payloads decode to int64 (uint64 when above the int64 range),
// everything else to float64.
type NumberAttribute struct {
	base
}

// NewNumber creates a number attribute.
func NewNumber(opts ...Option) *NumberAttribute {
	return &NumberAttribute{base: newBase(TypeNumber, buildConfig(opts))}
}

func (a *NumberAttribute) clone() Attribute {
	return &NumberAttribute{base: a.cloneBase()}
}

// Serialize encodes the number as decimal text.
func (a *NumberAttribute) Serialize(value any) (types.AttributeValue, error) {
	if value == nil {
		return nil, nil
	}
	s, err := formatNumber(value)
	if err != nil {
		return nil, err
	}
	return &types.AttributeValueMemberN{Value: s}, nil
}

// Deserialize decodes decimal text back to int64 or float64.
func (a *NumberAttribute) Deserialize(av types.AttributeValue) (any, error) {
	n, ok := av.(*types.AttributeValueMemberN)
	if !ok {
		return nil, fmt.Errorf("%w: expected N, got %T", ErrInvalidValue, av)
	}
	return parseNumber(n.Value)
}

func formatNumber(value any) (string, error) {
	switch v := value.(type) {
	case int:
		return strconv.FormatInt(int64(v), 10), nil
	case int8:
		return strconv.FormatInt(int64(v), 10), nil
	case int16:
		return strconv.FormatInt(int64(v), 10), nil
	case int32:
		return strconv.FormatInt(int64(v), 10), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case uint:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint8:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint16:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint32:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint64:
		return strconv.FormatUint(v, 10), nil
	case float32:
		return formatFloat(float64(v))
	case float64:
		return formatFloat(v)
	}

	// Named numeric types fall through to a kind check.
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10), nil
	case reflect.Float32, reflect.Float64:
		return formatFloat(rv.Float())
	}
	return "", fmt.Errorf("%w: %T is not numeric", ErrInvalidValue, value)
}

func formatFloat(f float64) (string, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "", fmt.Errorf("%w: %v is not a finite number", ErrInvalidValue, f)
	}
	return strconv.FormatFloat(f, 'g', -1, 64), nil
}

func parseNumber(s string) (any, error) {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i, nil
	}
	// Integral but beyond the int64 range, e.g. a stored uint64.
	if u, err := strconv.ParseUint(s, 10, 64); err == nil {
		return u, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %q is not a number", ErrInvalidValue, s)
	}
	return f, nil
}

// BooleanAttribute stores a boolean field.
type BooleanAttribute struct {
	base
}

// NewBoolean creates a boolean attribute.
func NewBoolean(opts ...Option) *BooleanAttribute {
	return &BooleanAttribute{base: newBase(TypeBoolean, buildConfig(opts))}
}

func (a *BooleanAttribute) clone() Attribute {
	return &BooleanAttribute{base: a.cloneBase()}
}

// Serialize encodes a bool; nil is omitted.
func (a *BooleanAttribute) Serialize(value any) (types.AttributeValue, error) {
	if value == nil {
		return nil, nil
	}
	b, ok := value.(bool)
	if !ok {
		return nil, fmt.Errorf("%w: %T is not a bool", ErrInvalidValue, value)
	}
	return &types.AttributeValueMemberBOOL{Value: b}, nil
}

// Deserialize returns the stored bool.
func (a *BooleanAttribute) Deserialize(av types.AttributeValue) (any, error) {
	b, ok := av.(*types.AttributeValueMemberBOOL)
	if !ok {
		return nil, fmt.Errorf("%w: expected BOOL, got %T", ErrInvalidValue, av)
	}
	return b.Value, nil
}

// NullAttribute stores an explicit null marker. It serializes to a constant
// "present" marker and always decodes to absent.
type NullAttribute struct {
	base
}

// NewNull creates a null attribute.
func NewNull(opts ...Option) *NullAttribute {
	return &NullAttribute{base: newBase(TypeNull, buildConfig(opts))}
}

func (a *NullAttribute) clone() Attribute {
	return &NullAttribute{base: a.cloneBase()}
}

// Serialize always produces the null marker.
func (a *NullAttribute) Serialize(value any) (types.AttributeValue, error) {
	return &types.AttributeValueMemberNULL{Value: true}, nil
}

// Deserialize always returns absent, regardless of payload content.
func (a *NullAttribute) Deserialize(av types.AttributeValue) (any, error) {
	return nil, nil
}
