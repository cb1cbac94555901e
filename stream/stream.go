// Package stream decodes DynamoDB Streams records into documents.
//
// Lambda stream events carry their own attribute-value representation
// (events.DynamoDBAttributeValue); this package converts those images to
// the SDK's wire type and rehydrates them through a document schema, so a
// stream consumer works with the same typed documents as the rest of the
// application.
package stream

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/latticedb/lattice/attr"
)

// Event is one decoded stream record. Old and New are nil when the record
// carries no corresponding image (INSERT has no old image, REMOVE no new
// one).
type Event struct {
	ID   string
	Name string // INSERT, MODIFY or REMOVE

	Keys *attr.Document
	Old  *attr.Document
	New  *attr.Document
}

// RecordFunc consumes one decoded record. A returned error stops the batch
// so the Lambda runtime retries it.
type RecordFunc func(ctx context.Context, ev Event) error

// Handler decodes stream events and dispatches each record to a callback.
// Designed to be wired directly as an AWS Lambda handler via Handle.
type Handler struct {
	schema *attr.Schema
	fn     RecordFunc
	logger *slog.Logger
}

// NewHandler creates a stream handler. A nil schema decodes images as raw
// documents with wire-tag type inference; keys are always decoded raw.
func NewHandler(schema *attr.Schema, fn RecordFunc, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{schema: schema, fn: fn, logger: logger}
}

// Handle processes a stream event batch in record order.
func (h *Handler) Handle(ctx context.Context, event events.DynamoDBEvent) error {
	for _, record := range event.Records {
		ev, err := h.decode(record)
		if err != nil {
			h.logger.Error("failed to decode record",
				"eventID", record.EventID,
				"error", err,
			)
			return err
		}
		if err := h.fn(ctx, ev); err != nil {
			h.logger.Error("failed to process record",
				"eventID", record.EventID,
				"eventName", record.EventName,
				"error", err,
			)
			return err // Will retry, eventually DLQ
		}
	}
	return nil
}

func (h *Handler) decode(record events.DynamoDBEventRecord) (Event, error) {
	ev := Event{ID: record.EventID, Name: record.EventName}

	keys, err := attr.DeserializeDocument(ConvertImage(record.Change.Keys))
	if err != nil {
		return Event{}, fmt.Errorf("keys: %w", err)
	}
	ev.Keys = keys

	if record.Change.OldImage != nil {
		ev.Old, err = h.decodeImage(record.Change.OldImage)
		if err != nil {
			return Event{}, fmt.Errorf("old image: %w", err)
		}
	}
	if record.Change.NewImage != nil {
		ev.New, err = h.decodeImage(record.Change.NewImage)
		if err != nil {
			return Event{}, fmt.Errorf("new image: %w", err)
		}
	}
	return ev, nil
}

func (h *Handler) decodeImage(image map[string]events.DynamoDBAttributeValue) (*attr.Document, error) {
	item := ConvertImage(image)
	if h.schema != nil {
		return h.schema.Deserialize(item)
	}
	return attr.DeserializeDocument(item)
}

// ConvertImage converts a stream image to the SDK's attribute-value
// representation.
func ConvertImage(image map[string]events.DynamoDBAttributeValue) map[string]types.AttributeValue {
	if image == nil {
		return nil
	}
	out := make(map[string]types.AttributeValue, len(image))
	for k, v := range image {
		out[k] = convertValue(v)
	}
	return out
}

func convertValue(v events.DynamoDBAttributeValue) types.AttributeValue {
	switch v.DataType() {
	case events.DataTypeString:
		return &types.AttributeValueMemberS{Value: v.String()}
	case events.DataTypeNumber:
		return &types.AttributeValueMemberN{Value: v.Number()}
	case events.DataTypeBoolean:
		return &types.AttributeValueMemberBOOL{Value: v.Boolean()}
	case events.DataTypeBinary:
		return &types.AttributeValueMemberB{Value: v.Binary()}
	case events.DataTypeStringSet:
		return &types.AttributeValueMemberSS{Value: v.StringSet()}
	case events.DataTypeNumberSet:
		return &types.AttributeValueMemberNS{Value: v.NumberSet()}
	case events.DataTypeBinarySet:
		return &types.AttributeValueMemberBS{Value: v.BinarySet()}
	case events.DataTypeList:
		list := make([]types.AttributeValue, len(v.List()))
		for i, item := range v.List() {
			list[i] = convertValue(item)
		}
		return &types.AttributeValueMemberL{Value: list}
	case events.DataTypeMap:
		m := make(map[string]types.AttributeValue, len(v.Map()))
		for k, item := range v.Map() {
			m[k] = convertValue(item)
		}
		return &types.AttributeValueMemberM{Value: m}
	default:
		return &types.AttributeValueMemberNULL{Value: true}
	}
}
