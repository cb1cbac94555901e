package attr_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/latticedb/lattice/attr"
)

// --- Typed documents ---

func TestSerialize_TypedOmission(t *testing.T) {
	s, err := attr.NewSchema("Doc",
		attr.F("id", attr.NewUnicode(attr.HashKey())),
		attr.F("name", attr.NewUnicode()),
		attr.F("tags", attr.NewUnicodeSet()),
		attr.F("age", attr.NewNumber()),
	)
	if err != nil {
		t.Fatalf("NewSchema failed: %v", err)
	}

	doc, err := s.New(map[string]any{
		"id":   "d1",
		"name": "",         // serializes to nothing
		"tags": []string{}, // empty set
		"age":  nil,        // explicit nil
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	item, err := doc.Serialize()
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}
	if len(item) != 1 {
		t.Errorf("expected only the id on the wire, got %v", item)
	}
	if _, ok := item["id"]; !ok {
		t.Error("expected id to be present")
	}
}

func TestSerialize_KeyComposition(t *testing.T) {
	s, err := attr.NewSchema("User",
		attr.F("pk", attr.NewKey(attr.HashKey(), attr.Prefix("user"))),
		attr.F("sk", attr.NewKey(attr.RangeKey(), attr.FixedValue("profile"))),
	)
	if err != nil {
		t.Fatalf("NewSchema failed: %v", err)
	}

	doc, err := s.New(map[string]any{"pk": "123", "sk": ""})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	item, err := doc.Serialize()
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}

	if v := item["pk"].(*types.AttributeValueMemberS).Value; v != "user#123" {
		t.Errorf("expected 'user#123', got %q", v)
	}
	if v := item["sk"].(*types.AttributeValueMemberS).Value; v != "profile" {
		t.Errorf("expected 'profile', got %q", v)
	}
}

func TestSerialize_WireNames(t *testing.T) {
	s, err := attr.NewSchema("Doc",
		attr.F("id", attr.NewUnicode(attr.HashKey())),
		attr.F("displayName", attr.NewUnicode(attr.WireName("display_name"))),
	)
	if err != nil {
		t.Fatalf("NewSchema failed: %v", err)
	}

	doc, err := s.New(map[string]any{"id": "d1", "displayName": "Ada"})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	item, err := doc.Serialize()
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}
	if _, ok := item["display_name"]; !ok {
		t.Errorf("expected wire name key, got %v", item)
	}
	if _, ok := item["displayName"]; ok {
		t.Error("field identity must not leak onto the wire")
	}

	back, err := s.Deserialize(item)
	if err != nil {
		t.Fatalf("Deserialize failed: %v", err)
	}
	if back.Get("displayName") != "Ada" {
		t.Errorf("expected 'Ada', got %v", back.Get("displayName"))
	}
}

func TestDeserialize_UnknownWireNamesDropped(t *testing.T) {
	s, err := attr.NewSchema("Doc",
		attr.F("id", attr.NewUnicode(attr.HashKey())),
	)
	if err != nil {
		t.Fatalf("NewSchema failed: %v", err)
	}

	doc, err := s.Deserialize(map[string]types.AttributeValue{
		"id":      &types.AttributeValueMemberS{Value: "d1"},
		"retired": &types.AttributeValueMemberS{Value: "old data"},
	})
	if err != nil {
		t.Fatalf("Deserialize failed: %v", err)
	}
	if doc.Get("id") != "d1" {
		t.Errorf("expected id 'd1', got %v", doc.Get("id"))
	}
	if doc.Has("retired") {
		t.Error("unknown wire names must be dropped")
	}
}

func TestDeserialize_NullDecodesToAbsent(t *testing.T) {
	s, err := attr.NewSchema("Doc",
		attr.F("id", attr.NewUnicode(attr.HashKey())),
		attr.F("note", attr.NewUnicode(attr.Nullable())),
	)
	if err != nil {
		t.Fatalf("NewSchema failed: %v", err)
	}

	doc, err := s.Deserialize(map[string]types.AttributeValue{
		"id":   &types.AttributeValueMemberS{Value: "d1"},
		"note": &types.AttributeValueMemberNULL{Value: true},
	})
	if err != nil {
		t.Fatalf("Deserialize failed: %v", err)
	}
	if doc.Has("note") {
		t.Error("null-tagged values must decode to absent")
	}
}

// --- Raw documents ---

func TestSerialize_RawInference(t *testing.T) {
	d := attr.NewDocument()
	d.Set("count", 1)
	d.Set("label", "s")
	d.Set("flags", []any{1, "a", true})
	d.Set("active", true)
	d.Set("ratio", 2.5)
	d.Set("meta", map[string]any{"k": "v"})
	d.Set("missing", nil)

	item, err := d.Serialize()
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}

	if n, ok := item["count"].(*types.AttributeValueMemberN); !ok || n.Value != "1" {
		t.Errorf("expected N '1' for count, got %v", item["count"])
	}
	if s, ok := item["label"].(*types.AttributeValueMemberS); !ok || s.Value != "s" {
		t.Errorf("expected S 's' for label, got %v", item["label"])
	}
	if b, ok := item["active"].(*types.AttributeValueMemberBOOL); !ok || !b.Value {
		t.Errorf("expected BOOL true for active, got %v", item["active"])
	}
	if n, ok := item["ratio"].(*types.AttributeValueMemberN); !ok || n.Value != "2.5" {
		t.Errorf("expected N '2.5' for ratio, got %v", item["ratio"])
	}

	l, ok := item["flags"].(*types.AttributeValueMemberL)
	if !ok || len(l.Value) != 3 {
		t.Fatalf("expected 3-element L for flags, got %v", item["flags"])
	}
	if _, ok := l.Value[0].(*types.AttributeValueMemberN); !ok {
		t.Errorf("expected element 0 inferred as N, got %T", l.Value[0])
	}
	if _, ok := l.Value[1].(*types.AttributeValueMemberS); !ok {
		t.Errorf("expected element 1 inferred as S, got %T", l.Value[1])
	}
	if _, ok := l.Value[2].(*types.AttributeValueMemberBOOL); !ok {
		t.Errorf("expected element 2 inferred as BOOL, got %T", l.Value[2])
	}

	m, ok := item["meta"].(*types.AttributeValueMemberM)
	if !ok {
		t.Fatalf("expected M for meta, got %T", item["meta"])
	}
	if v, ok := m.Value["k"].(*types.AttributeValueMemberS); !ok || v.Value != "v" {
		t.Errorf("expected nested S 'v', got %v", m.Value["k"])
	}

	// Raw mode never omits: nil becomes an explicit null marker.
	if null, ok := item["missing"].(*types.AttributeValueMemberNULL); !ok || !null.Value {
		t.Errorf("expected NULL marker for nil entry, got %v", item["missing"])
	}
}

func TestSerialize_RawPreservesEmptyString(t *testing.T) {
	d := attr.NewDocument()
	d.Set("empty", "")

	item, err := d.Serialize()
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}
	if _, ok := item["empty"].(*types.AttributeValueMemberNULL); !ok {
		t.Errorf("expected NULL marker for empty string in raw mode, got %v", item["empty"])
	}
}

func TestSerialize_RawNarrowMapWidened(t *testing.T) {
	d := attr.NewDocument()
	d.Set("scores", map[string]int{"a": 1})

	item, err := d.Serialize()
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}
	m, ok := item["scores"].(*types.AttributeValueMemberM)
	if !ok {
		t.Fatalf("expected M, got %T", item["scores"])
	}
	if n, ok := m.Value["a"].(*types.AttributeValueMemberN); !ok || n.Value != "1" {
		t.Errorf("expected nested N '1', got %v", m.Value["a"])
	}
}

func TestSerialize_RawStringSet(t *testing.T) {
	d := attr.NewDocument()
	d.Set("tags", map[string]struct{}{"b": {}, "a": {}})

	item, err := d.Serialize()
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}
	ss, ok := item["tags"].(*types.AttributeValueMemberSS)
	if !ok {
		t.Fatalf("expected SS for native set, got %T", item["tags"])
	}
	if !reflect.DeepEqual(ss.Value, []string{`"a"`, `"b"`}) {
		t.Errorf("expected sorted encoded elements, got %v", ss.Value)
	}
}

func TestSerialize_RawSetRoundTrip(t *testing.T) {
	item := map[string]types.AttributeValue{
		"tags": &types.AttributeValueMemberSS{Value: []string{`"a"`, `"b"`}},
	}

	doc, err := attr.DeserializeDocument(item)
	if err != nil {
		t.Fatalf("DeserializeDocument failed: %v", err)
	}
	set, ok := doc.Get("tags").(map[string]struct{})
	if !ok || len(set) != 2 {
		t.Fatalf("expected decoded 2-element set, got %v", doc.Get("tags"))
	}

	back, err := doc.Serialize()
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}
	if !reflect.DeepEqual(back, item) {
		t.Errorf("round trip changed wire value: %v", back)
	}
}

func TestSerialize_RawUnknownNativeType(t *testing.T) {
	d := attr.NewDocument()
	d.Set("ch", make(chan int))

	if _, err := d.Serialize(); !errors.Is(err, attr.ErrUnknownNativeType) {
		t.Errorf("expected ErrUnknownNativeType, got %v", err)
	}
}

func TestSerialize_RawRejectsWireValues(t *testing.T) {
	d := attr.NewDocument()
	d.Set("already", &types.AttributeValueMemberS{Value: "x"})

	if _, err := d.Serialize(); !errors.Is(err, attr.ErrUnknownNativeType) {
		t.Errorf("expected ErrUnknownNativeType for pre-encoded value, got %v", err)
	}
}

func TestDeserializeDocument(t *testing.T) {
	doc, err := attr.DeserializeDocument(map[string]types.AttributeValue{
		"count": &types.AttributeValueMemberN{Value: "2"},
		"label": &types.AttributeValueMemberS{Value: "x"},
		"gone":  &types.AttributeValueMemberNULL{Value: true},
	})
	if err != nil {
		t.Fatalf("DeserializeDocument failed: %v", err)
	}

	if doc.Get("count") != int64(2) {
		t.Errorf("expected int64(2), got %v (%T)", doc.Get("count"), doc.Get("count"))
	}
	if doc.Get("label") != "x" {
		t.Errorf("expected 'x', got %v", doc.Get("label"))
	}
	// Null entries are preserved as present-but-nil.
	if !doc.Has("gone") {
		t.Error("expected null entry to be preserved")
	}
	if doc.Get("gone") != nil {
		t.Errorf("expected nil value, got %v", doc.Get("gone"))
	}
}

func TestDeserializeDocument_UnknownWireTag(t *testing.T) {
	_, err := attr.DeserializeDocument(map[string]types.AttributeValue{
		"blob": &types.AttributeValueMemberB{Value: []byte{1}},
	})
	if !errors.Is(err, attr.ErrUnknownWireTag) {
		t.Errorf("expected ErrUnknownWireTag, got %v", err)
	}
}

// --- Lists ---

func TestList_RoundTrip(t *testing.T) {
	a := attr.NewList()

	av, err := a.Serialize([]any{int64(1), "two", true})
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}
	back, err := a.Deserialize(av)
	if err != nil {
		t.Fatalf("Deserialize failed: %v", err)
	}
	if !reflect.DeepEqual(back, []any{int64(1), "two", true}) {
		t.Errorf("round trip changed value: %v", back)
	}
}

func TestList_TypedSliceWidened(t *testing.T) {
	a := attr.NewList()

	av, err := a.Serialize([]string{"a", "b"})
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}
	l := av.(*types.AttributeValueMemberL)
	if len(l.Value) != 2 {
		t.Fatalf("expected 2 elements, got %d", len(l.Value))
	}
	if s, ok := l.Value[0].(*types.AttributeValueMemberS); !ok || s.Value != "a" {
		t.Errorf("expected S 'a', got %v", l.Value[0])
	}
}

func TestList_WireElementsPassThrough(t *testing.T) {
	a := attr.NewList()

	elems := []types.AttributeValue{&types.AttributeValueMemberS{Value: "x"}}
	av, err := a.Serialize(elems)
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}
	l := av.(*types.AttributeValueMemberL)
	if l.Value[0] != elems[0] {
		t.Error("expected pre-encoded elements to pass through unchanged")
	}
}

func TestListOf_TypedElements(t *testing.T) {
	point, err := attr.NewSchema("Point",
		attr.F("x", attr.NewNumber()),
		attr.F("y", attr.NewNumber()),
	)
	if err != nil {
		t.Fatalf("NewSchema failed: %v", err)
	}
	a := attr.NewListOf(point)

	av, err := a.Serialize([]any{
		map[string]any{"x": 1, "y": 2},
		map[string]any{"x": 3, "y": 4},
	})
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}
	back, err := a.Deserialize(av)
	if err != nil {
		t.Fatalf("Deserialize failed: %v", err)
	}
	docs, ok := back.([]any)
	if !ok || len(docs) != 2 {
		t.Fatalf("expected 2 elements, got %v", back)
	}
	first, ok := docs[0].(*attr.Document)
	if !ok {
		t.Fatalf("expected typed document element, got %T", docs[0])
	}
	if first.Get("x") != int64(1) {
		t.Errorf("expected x=1, got %v", first.Get("x"))
	}

	if _, err := a.Serialize([]any{"not a point"}); !errors.Is(err, attr.ErrInvalidValue) {
		t.Errorf("expected ErrInvalidValue for non-document element, got %v", err)
	}
}
