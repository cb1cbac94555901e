package attr

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Process-wide, write-once decoding registry: wire type tag to attribute
// type. Never mutated after initialization.
var wireRegistry = map[string]Attribute{
	TypeString:    NewUnicode(),
	TypeNumber:    NewNumber(),
	TypeBoolean:   NewBoolean(),
	TypeStringSet: NewUnicodeSet(),
	TypeList:      NewList(),
	TypeMap:       &MapAttribute{base: base{attrType: TypeMap}},
	TypeNull:      NewNull(),
}

// Process-wide, write-once serialization registry: native runtime type to
// attribute type. Integer and float widths not listed here resolve through
// a kind check in nativeAttributeFor.
var nativeRegistry = map[reflect.Type]Attribute{
	reflect.TypeOf(""):               wireRegistry[TypeString],
	reflect.TypeOf(false):            wireRegistry[TypeBoolean],
	reflect.TypeOf(int(0)):           wireRegistry[TypeNumber],
	reflect.TypeOf(int64(0)):         wireRegistry[TypeNumber],
	reflect.TypeOf(float64(0)):       wireRegistry[TypeNumber],
	reflect.TypeOf([]any(nil)):       wireRegistry[TypeList],
	reflect.TypeOf([]string(nil)):    wireRegistry[TypeList],
	reflect.TypeOf(map[string]any{}): wireRegistry[TypeMap],

	// The native set representation produced by set deserialization.
	reflect.TypeOf(map[string]struct{}(nil)): wireRegistry[TypeStringSet],
}

// nativeAttributeFor infers the attribute type for a native value during
// raw-mode serialization.
func nativeAttributeFor(value any) (Attribute, error) {
	switch value.(type) {
	case nil:
		return wireRegistry[TypeNull], nil
	case *Document, *MapNode:
		return wireRegistry[TypeMap], nil
	case types.AttributeValue:
		return nil, fmt.Errorf("%w: wire value %T cannot be re-serialized", ErrUnknownNativeType, value)
	}
	t := reflect.TypeOf(value)
	if a, ok := nativeRegistry[t]; ok {
		return a, nil
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return wireRegistry[TypeNumber], nil
	case reflect.String:
		return wireRegistry[TypeString], nil
	case reflect.Bool:
		return wireRegistry[TypeBoolean], nil
	case reflect.Slice, reflect.Array:
		return wireRegistry[TypeList], nil
	case reflect.Map:
		if t.Key().Kind() == reflect.String {
			if t.Elem() == reflect.TypeOf(struct{}{}) {
				return wireRegistry[TypeStringSet], nil
			}
			return wireRegistry[TypeMap], nil
		}
	}
	return nil, fmt.Errorf("%w: %T", ErrUnknownNativeType, value)
}

// serializeNative encodes a native value via dynamic type inference,
// preserving nil as an explicit null marker.
func serializeNative(value any) (types.AttributeValue, error) {
	a, err := nativeAttributeFor(value)
	if err != nil {
		return nil, err
	}
	if m, ok := a.(*MapAttribute); ok && value != nil {
		// Maps with a narrower value type than map[string]any widen first.
		if v := reflect.ValueOf(value); v.Kind() == reflect.Map {
			if _, isAnyMap := value.(map[string]any); !isAnyMap {
				widened := make(map[string]any, v.Len())
				iter := v.MapRange()
				for iter.Next() {
					widened[iter.Key().String()] = iter.Value().Interface()
				}
				return m.Serialize(widened)
			}
		}
	}
	av, err := a.Serialize(value)
	if err != nil {
		return nil, err
	}
	if av == nil {
		// Raw mode never omits: values that serialize to nothing (empty
		// strings) are preserved as explicit nulls for round-tripping.
		return &types.AttributeValueMemberNULL{Value: true}, nil
	}
	return av, nil
}

// wireTag returns the type tag of a wire value.
func wireTag(av types.AttributeValue) string {
	switch av.(type) {
	case *types.AttributeValueMemberS:
		return TypeString
	case *types.AttributeValueMemberN:
		return TypeNumber
	case *types.AttributeValueMemberBOOL:
		return TypeBoolean
	case *types.AttributeValueMemberSS:
		return TypeStringSet
	case *types.AttributeValueMemberL:
		return TypeList
	case *types.AttributeValueMemberM:
		return TypeMap
	case *types.AttributeValueMemberNULL:
		return TypeNull
	case *types.AttributeValueMemberB:
		return "B"
	case *types.AttributeValueMemberBS:
		return "BS"
	case *types.AttributeValueMemberNS:
		return "NS"
	default:
		return fmt.Sprintf("%T", av)
	}
}

// decodeWire decodes a wire value via the tag registry. The null tag
// decodes to absent regardless of payload content.
func decodeWire(av types.AttributeValue) (any, error) {
	tag := wireTag(av)
	if tag == TypeNull {
		return nil, nil
	}
	a, ok := wireRegistry[tag]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownWireTag, tag)
	}
	return a.Deserialize(av)
}

// Serialize converts the document to the store's typed wire representation.
//
// Schema-bearing documents walk declared fields in schema order: unset and
// nil values are omitted, as are values whose serialized form comes back
// empty (empty strings, empty sets). Raw documents walk keys in insertion
// order, infer each attribute type from the native value, and preserve nil
// as an explicit null marker.
func (d *Document) Serialize() (map[string]types.AttributeValue, error) {
	out := make(map[string]types.AttributeValue, len(d.values))

	if d.schema == nil {
		for _, key := range d.order {
			av, err := serializeNative(d.values[key])
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", key, err)
			}
			out[key] = av
		}
		return out, nil
	}

	for _, name := range d.schema.order {
		v, ok := d.values[name]
		if !ok || v == nil {
			continue
		}
		a := d.schema.attributes[name]
		av, err := a.Serialize(v)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", d.schema.typeName, name, err)
		}
		if av == nil {
			continue
		}
		out[a.AttrName()] = av
	}
	return out, nil
}

// Deserialize converts a wire payload into a freshly constructed document
// of this type. Wire names are resolved through the reverse wire-name map;
// unknown wire names are dropped, supporting forward-compatible schema
// evolution. Null-tagged values decode to absent.
func (s *Schema) Deserialize(item map[string]types.AttributeValue) (*Document, error) {
	decoded := make(map[string]any, len(item))
	for wireName, av := range item {
		field, ok := s.wireToField[wireName]
		if !ok {
			continue
		}
		if _, isNull := av.(*types.AttributeValueMemberNULL); isNull {
			continue
		}
		v, err := s.attributes[field].Deserialize(av)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", s.typeName, field, err)
		}
		if v == nil {
			continue
		}
		decoded[field] = v
	}
	return s.Load(decoded)
}

// DeserializeDocument decodes a wire payload with no schema, inferring each
// value's type from its wire tag. Null-tagged values are preserved as
// explicit nil entries.
func DeserializeDocument(item map[string]types.AttributeValue) (*Document, error) {
	d := NewDocument()
	keys := make([]string, 0, len(item))
	for k := range item {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v, err := decodeWire(item[k])
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", k, err)
		}
		d.Set(k, v)
	}
	return d, nil
}
