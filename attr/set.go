package attr

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// UnicodeSetAttribute stores a set of strings. Elements are individually
// JSON-encoded and sorted so that wire output is deterministic; the store
// gives no ordering guarantee for set members. Empty and absent sets are
// omitted from the payload because the store forbids empty container values.
type UnicodeSetAttribute struct {
	base
}

// NewUnicodeSet creates a string set attribute. Sets are nullable by
// default since an empty set serializes to omission.
func NewUnicodeSet(opts ...Option) *UnicodeSetAttribute {
	c := buildConfig(opts)
	c.null = true
	return &UnicodeSetAttribute{base: newBase(TypeStringSet, c)}
}

func (a *UnicodeSetAttribute) clone() Attribute {
	return &UnicodeSetAttribute{base: a.cloneBase()}
}

// Serialize encodes the set as a sorted list of JSON-encoded elements.
// Accepts map[string]struct{} or []string (treated as a set).
func (a *UnicodeSetAttribute) Serialize(value any) (types.AttributeValue, error) {
	elems, err := setElements(value)
	if err != nil {
		return nil, err
	}
	if len(elems) == 0 {
		return nil, nil
	}
	sort.Strings(elems)
	encoded := make([]string, len(elems))
	for i, e := range elems {
		raw, err := json.Marshal(e)
		if err != nil {
			return nil, fmt.Errorf("encode set element: %w", err)
		}
		encoded[i] = string(raw)
	}
	return &types.AttributeValueMemberSS{Value: encoded}, nil
}

// Deserialize decodes the elements back into a set. Elements that are not
// valid JSON are kept verbatim, tolerating values written by older encoders.
func (a *UnicodeSetAttribute) Deserialize(av types.AttributeValue) (any, error) {
	ss, ok := av.(*types.AttributeValueMemberSS)
	if !ok {
		return nil, fmt.Errorf("%w: expected SS, got %T", ErrInvalidValue, av)
	}
	set := make(map[string]struct{}, len(ss.Value))
	for _, raw := range ss.Value {
		var s string
		if err := json.Unmarshal([]byte(raw), &s); err != nil {
			s = raw
		}
		set[s] = struct{}{}
	}
	if len(set) == 0 {
		return nil, nil
	}
	return set, nil
}

func setElements(value any) ([]string, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case map[string]struct{}:
		elems := make([]string, 0, len(v))
		for e := range v {
			elems = append(elems, e)
		}
		return elems, nil
	case []string:
		seen := make(map[string]struct{}, len(v))
		elems := make([]string, 0, len(v))
		for _, e := range v {
			if _, dup := seen[e]; dup {
				continue
			}
			seen[e] = struct{}{}
			elems = append(elems, e)
		}
		return elems, nil
	case string:
		return []string{v}, nil
	default:
		rv := reflect.ValueOf(value)
		if rv.Kind() == reflect.Map &&
			rv.Type().Key().Kind() == reflect.String &&
			rv.Type().Elem() == reflect.TypeOf(struct{}{}) {
			elems := make([]string, 0, rv.Len())
			for iter := rv.MapRange(); iter.Next(); {
				elems = append(elems, iter.Key().String())
			}
			return elems, nil
		}
		return nil, fmt.Errorf("%w: %T is not a string set", ErrInvalidValue, value)
	}
}
