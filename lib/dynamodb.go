package lib

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/avast/retry-go"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
)

var ErrItemNotFound = errors.New("item not found")

// Store is the data store collaborator, addressed by a single string key.
type Store interface {
	GetItem(ctx context.Context, id string) (map[string]any, error)
	PutItem(ctx context.Context, item map[string]any) error
	DeleteItem(ctx context.Context, id string) error
	ScanItems(ctx context.Context) ([]map[string]any, error)
	UpdateItem(ctx context.Context, id string, attrs map[string]any) (map[string]any, error)
}

// ImageStore mirrors raw table images, so attribute types pass through untouched.
type ImageStore interface {
	PutImage(ctx context.Context, image map[string]ddbtypes.AttributeValue) error
	DeleteItem(ctx context.Context, id string) error
}

type DynamoDBAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
}

var dynamoDBClient *dynamodb.Client
var dynamoDBClientLock sync.Mutex

func DynamoDBClient() *dynamodb.Client {
	dynamoDBClientLock.Lock()
	defer dynamoDBClientLock.Unlock()
	if dynamoDBClient == nil {
		dynamoDBClient = dynamodb.NewFromConfig(*Session())
	}
	return dynamoDBClient
}

func DynamoDBClientFor(cfg *Config) *dynamodb.Client {
	if cfg == nil || cfg.Endpoint == "" {
		return DynamoDBClient()
	}
	return dynamodb.NewFromConfig(*SessionFor(cfg), func(o *dynamodb.Options) {
		o.BaseEndpoint = aws.String(cfg.Endpoint)
	})
}

type DynamoDBStore struct {
	client DynamoDBAPI
	table  string
	key    string
}

func NewDynamoDBStore(client DynamoDBAPI, table, key string) *DynamoDBStore {
	return &DynamoDBStore{client: client, table: table, key: key}
}

func (s *DynamoDBStore) itemKey(id string) map[string]ddbtypes.AttributeValue {
	return map[string]ddbtypes.AttributeValue{
		s.key: &ddbtypes.AttributeValueMemberS{Value: id},
	}
}

// GetItem returns nil without error when the item does not exist.
func (s *DynamoDBStore) GetItem(ctx context.Context, id string) (map[string]any, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key:       s.itemKey(id),
	})
	if err != nil {
		Logger.Println("error:", err)
		return nil, err
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	item, err := unmarshalItem(out.Item)
	if err != nil {
		Logger.Println("error:", err)
		return nil, err
	}
	return item, nil
}

func (s *DynamoDBStore) PutItem(ctx context.Context, item map[string]any) error {
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		Logger.Println("error:", err)
		return err
	}
	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      av,
	})
	if err != nil {
		Logger.Println("error:", err)
		return err
	}
	return nil
}

// PutImage writes a raw attribute image as is, keeping set and number types.
func (s *DynamoDBStore) PutImage(ctx context.Context, image map[string]ddbtypes.AttributeValue) error {
	_, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      image,
	})
	if err != nil {
		Logger.Println("error:", err)
		return err
	}
	return nil
}

// DeleteItem succeeds whether or not the item existed.
func (s *DynamoDBStore) DeleteItem(ctx context.Context, id string) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.table),
		Key:       s.itemKey(id),
	})
	if err != nil {
		Logger.Println("error:", err)
		return err
	}
	return nil
}

// unmarshalItem decodes N values as json.Number so they render with every digit.
func unmarshalItem(av map[string]ddbtypes.AttributeValue) (map[string]any, error) {
	item := make(map[string]any)
	err := attributevalue.UnmarshalMapWithOptions(av, &item, func(o *attributevalue.DecoderOptions) {
		o.UseNumber = true
	})
	if err != nil {
		return nil, err
	}
	for k, v := range item {
		item[k] = jsonNumbers(v)
	}
	return item, nil
}

func jsonNumbers(v any) any {
	switch v := v.(type) {
	case attributevalue.Number:
		return json.Number(v)
	case []attributevalue.Number:
		numbers := make([]json.Number, len(v))
		for i, n := range v {
			numbers[i] = json.Number(n)
		}
		return numbers
	case []any:
		for i := range v {
			v[i] = jsonNumbers(v[i])
		}
		return v
	case map[string]any:
		for k := range v {
			v[k] = jsonNumbers(v[k])
		}
		return v
	default:
		return v
	}
}

func (s *DynamoDBStore) ScanItems(ctx context.Context) ([]map[string]any, error) {
	items := []map[string]any{}
	var start map[string]ddbtypes.AttributeValue
	for {
		out, err := s.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:         aws.String(s.table),
			ExclusiveStartKey: start,
		})
		if err != nil {
			Logger.Println("error:", err)
			return nil, err
		}
		for _, av := range out.Items {
			item, err := unmarshalItem(av)
			if err != nil {
				Logger.Println("error:", err)
				return nil, err
			}
			items = append(items, item)
		}
		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		start = out.LastEvaluatedKey
	}
	return items, nil
}

func DynamoDBUpdateInput(table, key, id string, attrs map[string]any) (*dynamodb.UpdateItemInput, error) {
	if len(attrs) == 0 {
		return nil, fmt.Errorf("no attributes to update")
	}
	var names []string
	for name := range attrs {
		names = append(names, name)
	}
	sort.Strings(names)
	input := &dynamodb.UpdateItemInput{
		TableName:                 aws.String(table),
		Key:                       map[string]ddbtypes.AttributeValue{key: &ddbtypes.AttributeValueMemberS{Value: id}},
		ConditionExpression:       aws.String("attribute_exists(#k)"),
		ExpressionAttributeNames:  map[string]string{"#k": key},
		ExpressionAttributeValues: map[string]ddbtypes.AttributeValue{},
		ReturnValues:              ddbtypes.ReturnValueAllNew,
	}
	expr := "SET "
	for i, name := range names {
		if name == key {
			return nil, fmt.Errorf("cannot update key attribute: %s", key)
		}
		av, err := attributevalue.Marshal(attrs[name])
		if err != nil {
			return nil, err
		}
		if i > 0 {
			expr += ", "
		}
		expr += fmt.Sprintf("#a%d = :v%d", i, i)
		input.ExpressionAttributeNames[fmt.Sprintf("#a%d", i)] = name
		input.ExpressionAttributeValues[fmt.Sprintf(":v%d", i)] = av
	}
	input.UpdateExpression = aws.String(expr)
	return input, nil
}

// UpdateItem only updates existing items, returning ErrItemNotFound
// otherwise.
func (s *DynamoDBStore) UpdateItem(ctx context.Context, id string, attrs map[string]any) (map[string]any, error) {
	input, err := DynamoDBUpdateInput(s.table, s.key, id, attrs)
	if err != nil {
		Logger.Println("error:", err)
		return nil, err
	}
	out, err := s.client.UpdateItem(ctx, input)
	if err != nil {
		var condErr *ddbtypes.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return nil, ErrItemNotFound
		}
		Logger.Println("error:", err)
		return nil, err
	}
	item, err := unmarshalItem(out.Attributes)
	if err != nil {
		Logger.Println("error:", err)
		return nil, err
	}
	return item, nil
}

func DynamoDBEnsureInput(name, key string, stream bool) *dynamodb.CreateTableInput {
	input := &dynamodb.CreateTableInput{
		TableName:   aws.String(name),
		BillingMode: ddbtypes.BillingModePayPerRequest,
		KeySchema: []ddbtypes.KeySchemaElement{{
			AttributeName: aws.String(key),
			KeyType:       ddbtypes.KeyTypeHash,
		}},
		AttributeDefinitions: []ddbtypes.AttributeDefinition{{
			AttributeName: aws.String(key),
			AttributeType: ddbtypes.ScalarAttributeTypeS,
		}},
	}
	if stream {
		input.StreamSpecification = &ddbtypes.StreamSpecification{
			StreamEnabled:  aws.Bool(true),
			StreamViewType: ddbtypes.StreamViewTypeNewAndOldImages,
		}
	}
	return input
}

func isErrorCode(err error, code string) bool {
	var apiErr smithy.APIError
	return errors.As(err, &apiErr) && apiErr.ErrorCode() == code
}

// DynamoDBEnsureTable creates the table if needed and waits for it to
// become active.
func DynamoDBEnsureTable(ctx context.Context, client *dynamodb.Client, input *dynamodb.CreateTableInput, preview bool) error {
	_, err := client.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: input.TableName})
	if err == nil {
		return nil
	}
	if !isErrorCode(err, "ResourceNotFoundException") {
		Logger.Println("error:", err)
		return err
	}
	if preview {
		Logger.Println("preview: create table:", *input.TableName)
		return nil
	}
	_, err = client.CreateTable(ctx, input)
	if err != nil && !isErrorCode(err, "ResourceInUseException") {
		Logger.Println("error:", err)
		return err
	}
	Logger.Println("created table:", *input.TableName)
	return retry.Do(
		func() error {
			out, err := client.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: input.TableName})
			if err != nil {
				return err
			}
			if out.Table.TableStatus != ddbtypes.TableStatusActive {
				return fmt.Errorf("table %s is %s", *input.TableName, out.Table.TableStatus)
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(60),
		retry.Delay(time.Second),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
	)
}
