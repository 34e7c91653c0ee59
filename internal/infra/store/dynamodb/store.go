// Package dynamodb implements core.Store on a single DynamoDB table keyed by
// the item's productid attribute.
package dynamodb

import (
	"context"
	"fmt"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"productinventory/internal/item"
	"productinventory/internal/store/core"
)

// DefaultRegion matches the region the inventory table has always lived in.
const DefaultRegion = "eu-north-1"

// Client is the subset of the DynamoDB API used by Store. Satisfied by
// *dynamodb.Client and by test doubles.
type Client interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	dynamodb.ScanAPIClient
}

// Store implements core.Store using DynamoDB.
type Store struct {
	client   Client
	table    string
	pageSize int32
}

// Config holds explicit construction parameters.
type Config struct {
	Region   string
	Table    string
	Endpoint string // optional; e.g. DynamoDB Local
	PageSize int32  // optional scan page limit; 0 lets DynamoDB decide
}

// New creates a DynamoDB item store from Config using the default AWS
// credentials chain.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Table == "" {
		return nil, fmt.Errorf("dynamodb table required")
	}
	region := cfg.Region
	if region == "" {
		region = DefaultRegion
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return NewWithClient(client, cfg.Table, cfg.PageSize), nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client Client, table string, pageSize int32) *Store {
	return &Store{client: client, table: table, pageSize: pageSize}
}

// Driver returns the store driver identifier.
func (s *Store) Driver() core.Driver { return core.DriverDynamoDB }

// Table returns the table name the store addresses.
func (s *Store) Table() string { return s.table }

func keyOf(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{item.KeyAttribute: &types.AttributeValueMemberS{Value: id}}
}

func (s *Store) Get(ctx context.Context, id string) (item.Item, bool, error) {
	if err := core.CheckKey(id); err != nil {
		return nil, false, err
	}
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{TableName: &s.table, Key: keyOf(id)})
	if err != nil {
		return nil, false, err
	}
	if out.Item == nil {
		return nil, false, nil
	}
	it, err := decode(out.Item)
	if err != nil {
		return nil, false, err
	}
	return it, true, nil
}

func (s *Store) Scan(ctx context.Context) ([]item.Item, error) {
	input := &dynamodb.ScanInput{TableName: &s.table}
	if s.pageSize > 0 {
		input.Limit = aws.Int32(s.pageSize)
	}
	items := make([]item.Item, 0)
	pages := dynamodb.NewScanPaginator(s.client, input)
	for pages.HasMorePages() {
		page, err := pages.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, raw := range page.Items {
			it, err := decode(raw)
			if err != nil {
				return nil, err
			}
			items = append(items, it)
		}
	}
	return items, nil
}

func (s *Store) Put(ctx context.Context, it item.Item) error {
	id, _ := it.ID()
	if err := core.CheckKey(id); err != nil {
		return err
	}
	av, err := attributevalue.MarshalMap(map[string]any(it))
	if err != nil {
		return fmt.Errorf("marshal item %s: %w", id, err)
	}
	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{TableName: &s.table, Item: av})
	return err
}

// Update addresses the field through an expression attribute name so any
// attribute name, reserved words included, is set literally.
func (s *Store) Update(ctx context.Context, id, field string, value item.Value) (item.Item, error) {
	if err := core.CheckKey(id); err != nil {
		return nil, err
	}
	av, err := attributevalue.Marshal(value.Interface())
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", field, err)
	}
	out, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 &s.table,
		Key:                       keyOf(id),
		UpdateExpression:          aws.String("SET #f = :value"),
		ExpressionAttributeNames:  map[string]string{"#f": field},
		ExpressionAttributeValues: map[string]types.AttributeValue{":value": av},
		ReturnValues:              types.ReturnValueUpdatedNew,
	})
	if err != nil {
		return nil, err
	}
	return decode(out.Attributes)
}

func (s *Store) Delete(ctx context.Context, id string) (item.Item, error) {
	if err := core.CheckKey(id); err != nil {
		return nil, err
	}
	out, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:    &s.table,
		Key:          keyOf(id),
		ReturnValues: types.ReturnValueAllOld,
	})
	if err != nil {
		return nil, err
	}
	if len(out.Attributes) == 0 {
		return nil, nil
	}
	return decode(out.Attributes)
}

func decode(raw map[string]types.AttributeValue) (item.Item, error) {
	if raw == nil {
		return nil, nil
	}
	out := map[string]any{}
	if err := attributevalue.UnmarshalMap(raw, &out); err != nil {
		return nil, fmt.Errorf("unmarshal item: %w", err)
	}
	return item.Item(out), nil
}
