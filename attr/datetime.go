package attr

import (
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/latticedb/lattice/internal/timeparse"
)

// UTCDateTimeAttribute stores an instant as canonical UTC text:
// YYYY-MM-DDTHH:MM:SS.ffffff+0000. Decoding takes a fast fixed-format path
// and falls back to general ISO-style parsing for foreign input.
type UTCDateTimeAttribute struct {
	base
}

// NewUTCDateTime creates a UTC timestamp attribute.
func NewUTCDateTime(opts ...Option) *UTCDateTimeAttribute {
	return &UTCDateTimeAttribute{base: newBase(TypeString, buildConfig(opts))}
}

func (a *UTCDateTimeAttribute) clone() Attribute {
	return &UTCDateTimeAttribute{base: a.cloneBase()}
}

// Serialize formats the instant in the canonical layout. Strings pass
// through unchanged.
func (a *UTCDateTimeAttribute) Serialize(value any) (types.AttributeValue, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case string:
		if v == "" {
			return nil, nil
		}
		return &types.AttributeValueMemberS{Value: v}, nil
	case time.Time:
		return &types.AttributeValueMemberS{Value: v.UTC().Format(timeparse.CanonicalLayout)}, nil
	default:
		return nil, fmt.Errorf("%w: %T is not a time.Time", ErrInvalidValue, value)
	}
}

// Deserialize parses the stored text back to a UTC instant.
func (a *UTCDateTimeAttribute) Deserialize(av types.AttributeValue) (any, error) {
	s, ok := av.(*types.AttributeValueMemberS)
	if !ok {
		return nil, fmt.Errorf("%w: expected S, got %T", ErrInvalidValue, av)
	}
	t, err := timeparse.Parse(s.Value)
	if err != nil {
		return nil, err
	}
	return t.UTC(), nil
}
