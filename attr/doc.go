// Package attr maps structured application data to and from DynamoDB's
// type-tagged wire representation.
//
// A document type is declared once, as a schema of attribute fields, and
// gets automatic lossless conversion between native values and the wire
// format, plus the path metadata needed to build expressions against nested
// fields.
//
// # Declaring a document type
//
// Schemas are built with [NewSchema] (or [MustSchema] for package-level
// declarations), listing fields in order:
//
//	var userSchema = attr.MustSchema("User",
//	    attr.F("pk", attr.NewKey(attr.HashKey(), attr.Prefix("user"))),
//	    attr.F("sk", attr.NewKey(attr.RangeKey(), attr.FixedValue("profile"))),
//	    attr.F("name", attr.NewUnicode()),
//	    attr.F("age", attr.NewNumber()),
//	    attr.F("tags", attr.NewUnicodeSet()),
//	    attr.M("address", attr.NewMap(addressSchema)),
//	)
//
// Nested document fields are declared with [M] and a fresh [NewMap] node
// per declaration site. Registration converts the node to schema mode and
// prefixes the paths of all its sub-fields, so
// userSchema.Attr("address").(*attr.MapAttribute).Child("city") carries the
// full document path for expression building.
//
// # Documents
//
// [Schema.New] constructs a freshly created document (for-new defaults
// apply); [Schema.Load] rehydrates one from stored values (plain defaults
// only). [NewDocument] creates a raw document: a free-form mapping with no
// schema whose attribute types are inferred from native values at
// serialization time.
//
// # Wire conversion
//
// [Document.Serialize] and [Schema.Deserialize] are the sole translation
// boundary to the store's typed representation
// (service/dynamodb/types.AttributeValue). Omission rules, set ordering,
// and null handling follow the store's constraints: empty sets are omitted,
// set elements are sorted, and null markers decode to absent.
//
// The package performs no I/O and is safe for concurrent readers of a
// schema; documents are not safe for concurrent mutation.
package attr
