// Package model composes the attr layer's serialized documents and expr
// fragments into DynamoDB requests. It performs I/O only through the narrow
// [Client] interface, so it can be exercised against a fake client; the
// translation work itself stays in the attr and expr packages.
package model

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"

	"github.com/latticedb/lattice/attr"
	"github.com/latticedb/lattice/expr"
)

var (
	// ErrNotFound is returned when an item does not exist.
	ErrNotFound = errors.New("lattice: item not found")

	// ErrAlreadyExists is returned when creating an item whose key is taken.
	ErrAlreadyExists = errors.New("lattice: item already exists")

	// ErrConditionFailed is returned when a caller-supplied condition
	// rejects an update or delete.
	ErrConditionFailed = errors.New("lattice: condition failed")
)

// Client is the subset of the DynamoDB API the model layer uses.
// *dynamodb.Client satisfies it.
type Client interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// Table binds a document schema to a DynamoDB table.
type Table struct {
	name   string
	schema *attr.Schema
	client Client
}

// New creates a Table. The schema must declare a hash key.
func New(client Client, name string, schema *attr.Schema) (*Table, error) {
	if schema.HashKeyAttr() == nil {
		return nil, fmt.Errorf("lattice: schema %s declares no hash key", schema.TypeName())
	}
	return &Table{name: name, schema: schema, client: client}, nil
}

// Schema returns the bound document schema.
func (t *Table) Schema() *attr.Schema { return t.schema }

// Ref returns a type-qualified reference for a new entity, e.g.
// "user#9f1c...". Useful as a hash key value or a for-new default.
func Ref(entityType string) string {
	return entityType + "#" + uuid.NewString()
}

// key serializes the primary key. rangeValue may be nil when the schema
// declares no range key.
func (t *Table) key(hashValue, rangeValue any) (map[string]types.AttributeValue, error) {
	hk := t.schema.HashKeyAttr()
	av, err := hk.Serialize(hashValue)
	if err != nil {
		return nil, fmt.Errorf("hash key: %w", err)
	}
	if av == nil {
		return nil, fmt.Errorf("hash key: empty value")
	}
	key := map[string]types.AttributeValue{hk.AttrName(): av}

	rk := t.schema.RangeKeyAttr()
	switch {
	case rk == nil && rangeValue != nil:
		return nil, fmt.Errorf("range key value supplied but schema %s declares none", t.schema.TypeName())
	case rk != nil:
		rav, err := rk.Serialize(rangeValue)
		if err != nil {
			return nil, fmt.Errorf("range key: %w", err)
		}
		if rav == nil {
			return nil, fmt.Errorf("range key: empty value")
		}
		key[rk.AttrName()] = rav
	}
	return key, nil
}

// Put writes a document unconditionally.
func (t *Table) Put(ctx context.Context, doc *attr.Document) error {
	item, err := doc.Serialize()
	if err != nil {
		return err
	}
	_, err = t.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(t.name),
		Item:      item,
	})
	return err
}

// Create writes a document only if no item with its key exists.
func (t *Table) Create(ctx context.Context, doc *attr.Document) error {
	item, err := doc.Serialize()
	if err != nil {
		return err
	}
	b := expr.NewBuilder()
	cond, err := b.ConditionExpression(expr.NotExists(expr.KeyPath(t.schema.HashKeyAttr().AttrName())))
	if err != nil {
		return err
	}
	_, err = t.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                 aws.String(t.name),
		Item:                      item,
		ConditionExpression:       aws.String(cond),
		ExpressionAttributeNames:  b.Names(),
		ExpressionAttributeValues: b.Values(),
	})
	var condErr *types.ConditionalCheckFailedException
	if errors.As(err, &condErr) {
		return ErrAlreadyExists
	}
	return err
}

// Get retrieves a document by key, returning ErrNotFound if missing.
func (t *Table) Get(ctx context.Context, hashValue, rangeValue any) (*attr.Document, error) {
	key, err := t.key(hashValue, rangeValue)
	if err != nil {
		return nil, err
	}
	result, err := t.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(t.name),
		Key:       key,
	})
	if err != nil {
		return nil, err
	}
	if result.Item == nil {
		return nil, ErrNotFound
	}
	return t.schema.Deserialize(result.Item)
}

// Update applies update actions to an item, optionally guarded by
// conditions. A rejected condition returns ErrConditionFailed.
func (t *Table) Update(ctx context.Context, hashValue, rangeValue any, actions []expr.Update, conds ...expr.Condition) error {
	key, err := t.key(hashValue, rangeValue)
	if err != nil {
		return err
	}
	b := expr.NewBuilder()
	updateExpr, err := b.UpdateExpression(actions...)
	if err != nil {
		return err
	}
	input := &dynamodb.UpdateItemInput{
		TableName:        aws.String(t.name),
		Key:              key,
		UpdateExpression: aws.String(updateExpr),
	}
	if len(conds) > 0 {
		cond := conds[0]
		for _, c := range conds[1:] {
			cond = cond.And(c)
		}
		condExpr, err := b.ConditionExpression(cond)
		if err != nil {
			return err
		}
		input.ConditionExpression = aws.String(condExpr)
	}
	input.ExpressionAttributeNames = b.Names()
	input.ExpressionAttributeValues = b.Values()

	_, err = t.client.UpdateItem(ctx, input)
	var condErr *types.ConditionalCheckFailedException
	if errors.As(err, &condErr) {
		return ErrConditionFailed
	}
	return err
}

// Delete removes an item by key, optionally guarded by conditions.
func (t *Table) Delete(ctx context.Context, hashValue, rangeValue any, conds ...expr.Condition) error {
	key, err := t.key(hashValue, rangeValue)
	if err != nil {
		return err
	}
	input := &dynamodb.DeleteItemInput{
		TableName: aws.String(t.name),
		Key:       key,
	}
	if len(conds) > 0 {
		b := expr.NewBuilder()
		cond := conds[0]
		for _, c := range conds[1:] {
			cond = cond.And(c)
		}
		condExpr, err := b.ConditionExpression(cond)
		if err != nil {
			return err
		}
		input.ConditionExpression = aws.String(condExpr)
		input.ExpressionAttributeNames = b.Names()
		input.ExpressionAttributeValues = b.Values()
	}
	_, err = t.client.DeleteItem(ctx, input)
	var condErr *types.ConditionalCheckFailedException
	if errors.As(err, &condErr) {
		return ErrConditionFailed
	}
	return err
}

// QueryOptions configures a Query call.
type QueryOptions struct {
	// IndexName selects a GSI or LSI.
	IndexName string

	// Filter is applied server-side after the key condition.
	Filter *expr.Condition

	// Limit caps the number of items per page (0 = no limit).
	Limit int32

	// ScanIndexForward sets sort order (nil = ascending).
	ScanIndexForward *bool
}

// Query runs a key-condition query and returns all matching documents,
// following pagination to the end.
func (t *Table) Query(ctx context.Context, keyCond expr.Condition, opts QueryOptions) ([]*attr.Document, error) {
	b := expr.NewBuilder()
	keyExpr, err := b.ConditionExpression(keyCond)
	if err != nil {
		return nil, err
	}
	input := &dynamodb.QueryInput{
		TableName:              aws.String(t.name),
		KeyConditionExpression: aws.String(keyExpr),
	}
	if opts.Filter != nil {
		filterExpr, err := b.ConditionExpression(*opts.Filter)
		if err != nil {
			return nil, err
		}
		input.FilterExpression = aws.String(filterExpr)
	}
	input.ExpressionAttributeNames = b.Names()
	input.ExpressionAttributeValues = b.Values()
	if opts.IndexName != "" {
		input.IndexName = aws.String(opts.IndexName)
	}
	if opts.Limit > 0 {
		input.Limit = aws.Int32(opts.Limit)
	}
	if opts.ScanIndexForward != nil {
		input.ScanIndexForward = opts.ScanIndexForward
	}

	var docs []*attr.Document
	paginator := dynamodb.NewQueryPaginator(t.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, raw := range page.Items {
			doc, err := t.schema.Deserialize(raw)
			if err != nil {
				return nil, err
			}
			docs = append(docs, doc)
		}
	}
	return docs, nil
}
