package attr

import (
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// defaultKeySeparator joins composite key parts unless overridden.
const defaultKeySeparator = "#"

// KeyAttribute stores a string key whose value is composed from a prefix, a
// dynamic or fixed value, and a suffix, joined by a separator. It must be
// declared as a hash or range key, with at least one of prefix, suffix, or
// fixed value.
//
// Deserialization splits on the separator and keeps the last segment when a
// prefix is configured, otherwise the first. With both a prefix and a
// suffix configured this is ambiguous and the recovered value is lossy; the
// combination is kept for compatibility but should be avoided.
type KeyAttribute struct {
	base
	prefix    string
	suffix    string
	fixed     string
	separator string
}

// NewKey creates a composite key attribute.
func NewKey(opts ...Option) *KeyAttribute {
	c := buildConfig(opts)
	if c.keySep == "" {
		c.keySep = defaultKeySeparator
	}
	if c.err == nil && !c.hashKey && !c.rangeKey {
		c.err = ErrKeyRoleRequired
	}
	if c.err == nil && c.keyPrefix == "" && c.keySuffix == "" && c.keyFixed == "" {
		c.err = ErrKeyPartsRequired
	}
	return &KeyAttribute{
		base:      newBase(TypeString, c),
		prefix:    c.keyPrefix,
		suffix:    c.keySuffix,
		fixed:     c.keyFixed,
		separator: c.keySep,
	}
}

func (a *KeyAttribute) clone() Attribute {
	return &KeyAttribute{
		base:      a.cloneBase(),
		prefix:    a.prefix,
		suffix:    a.suffix,
		fixed:     a.fixed,
		separator: a.separator,
	}
}

// Serialize composes "prefix SEP value SEP suffix", using the fixed value
// when no dynamic value is supplied, and delegates to the string encoding.
func (a *KeyAttribute) Serialize(value any) (types.AttributeValue, error) {
	s, err := coerceString(value)
	if err != nil {
		return nil, err
	}
	if s == "" && a.fixed != "" {
		s = a.fixed
	}
	var b strings.Builder
	if a.prefix != "" {
		b.WriteString(a.prefix)
		b.WriteString(a.separator)
	}
	b.WriteString(s)
	if a.suffix != "" {
		b.WriteString(a.separator)
		b.WriteString(a.suffix)
	}
	composed := b.String()
	if composed == "" {
		return nil, nil
	}
	return &types.AttributeValueMemberS{Value: composed}, nil
}

// Deserialize recovers the dynamic value from the composed key string.
func (a *KeyAttribute) Deserialize(av types.AttributeValue) (any, error) {
	s, ok := av.(*types.AttributeValueMemberS)
	if !ok {
		return nil, fmt.Errorf("%w: expected S, got %T", ErrInvalidValue, av)
	}
	parts := strings.Split(s.Value, a.separator)
	if a.prefix != "" {
		return parts[len(parts)-1], nil
	}
	return parts[0], nil
}
