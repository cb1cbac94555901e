package attr

import (
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// TTLAttribute stores the instant an item expires, as epoch seconds. It can
// be assigned an absolute time.Time or a time.Duration relative to now, and
// always reads back as a UTC instant. Any other assigned type is a
// definition error.
//
// A time.Time in Go always carries a location, so the "timezone-naive
// instant" failure of other environments cannot occur here; absolute values
// are converted through their epoch second regardless of location.
type TTLAttribute struct {
	base
}

// NewTTL creates a TTL attribute.
func NewTTL(opts ...Option) *TTLAttribute {
	return &TTLAttribute{base: newBase(TypeNumber, buildConfig(opts))}
}

func (a *TTLAttribute) clone() Attribute {
	return &TTLAttribute{base: a.cloneBase()}
}

// normalize converts an assigned value to a UTC instant at second
// precision. Invoked when the value is bound to a document.
func (a *TTLAttribute) normalize(value any) (any, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case time.Duration:
		return time.Now().Add(v).Truncate(time.Second).UTC(), nil
	case time.Time:
		return time.Unix(v.Unix(), 0).UTC(), nil
	default:
		return nil, fmt.Errorf("%w: TTL value must be a time.Time or time.Duration, got %T", ErrInvalidValue, value)
	}
}

// Serialize encodes the expiry as epoch seconds.
func (a *TTLAttribute) Serialize(value any) (types.AttributeValue, error) {
	if value == nil {
		return nil, nil
	}
	norm, err := a.normalize(value)
	if err != nil {
		return nil, err
	}
	t := norm.(time.Time)
	return &types.AttributeValueMemberN{Value: strconv.FormatInt(t.Unix(), 10)}, nil
}

// Deserialize decodes epoch seconds back to a UTC instant.
func (a *TTLAttribute) Deserialize(av types.AttributeValue) (any, error) {
	n, ok := av.(*types.AttributeValueMemberN)
	if !ok {
		return nil, fmt.Errorf("%w: expected N, got %T", ErrInvalidValue, av)
	}
	sec, err := strconv.ParseInt(n.Value, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %q is not an epoch timestamp", ErrInvalidValue, n.Value)
	}
	return time.Unix(sec, 0).UTC(), nil
}
