package lib

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"sort"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// fakeDynamoDB keeps attribute values keyed by the string hash key and
// pages scans one item at a time.
type fakeDynamoDB struct {
	key   string
	items map[string]map[string]ddbtypes.AttributeValue
	scans int
	err   error
}

func newFakeDynamoDB(key string) *fakeDynamoDB {
	return &fakeDynamoDB{key: key, items: make(map[string]map[string]ddbtypes.AttributeValue)}
}

func (f *fakeDynamoDB) id(key map[string]ddbtypes.AttributeValue) string {
	return key[f.key].(*ddbtypes.AttributeValueMemberS).Value
}

func (f *fakeDynamoDB) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &dynamodb.GetItemOutput{Item: f.items[f.id(in.Key)]}, nil
}

func (f *fakeDynamoDB) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.items[f.id(in.Item)] = in.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamoDB) DeleteItem(_ context.Context, in *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	delete(f.items, f.id(in.Key))
	return &dynamodb.DeleteItemOutput{}, nil
}

func (f *fakeDynamoDB) Scan(_ context.Context, in *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.scans++
	var ids []string
	for id := range f.items {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	start := ""
	if in.ExclusiveStartKey != nil {
		start = f.id(in.ExclusiveStartKey)
	}
	for _, id := range ids {
		if id <= start {
			continue
		}
		return &dynamodb.ScanOutput{
			Items:            []map[string]ddbtypes.AttributeValue{f.items[id]},
			LastEvaluatedKey: map[string]ddbtypes.AttributeValue{f.key: &ddbtypes.AttributeValueMemberS{Value: id}},
		}, nil
	}
	return &dynamodb.ScanOutput{}, nil
}

func (f *fakeDynamoDB) UpdateItem(_ context.Context, in *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	item, ok := f.items[f.id(in.Key)]
	if !ok {
		return nil, &ddbtypes.ConditionalCheckFailedException{Message: aws.String("The conditional request failed")}
	}
	for alias, name := range in.ExpressionAttributeNames {
		if alias == "#k" {
			continue
		}
		item[name] = in.ExpressionAttributeValues[":v"+strings.TrimPrefix(alias, "#a")]
	}
	return &dynamodb.UpdateItemOutput{Attributes: item}, nil
}

func TestDynamoDBStoreRoundTrip(t *testing.T) {
	store := NewDynamoDBStore(newFakeDynamoDB("itemId"), "items", "itemId")
	ctx := context.Background()
	written, err := decodeObject(`{"itemId":"abc123","n":1.5,"list":["x",2],"nested":{"b":true,"f":false}}`)
	if err != nil {
		t.Error(err)
		return
	}
	err = store.PutItem(ctx, written)
	if err != nil {
		t.Error(err)
		return
	}
	got, err := store.GetItem(ctx, "abc123")
	if err != nil {
		t.Error(err)
		return
	}
	if !reflect.DeepEqual(got, written) {
		t.Errorf("got:\n%v\nwant:\n%v\n", got, written)
	}
	missing, err := store.GetItem(ctx, "nope")
	if err != nil || missing != nil {
		t.Errorf("got: %v %v", missing, err)
	}
}

func TestDynamoDBStoreScanPages(t *testing.T) {
	fake := newFakeDynamoDB("itemId")
	store := NewDynamoDBStore(fake, "items", "itemId")
	ctx := context.Background()
	items, err := store.ScanItems(ctx)
	if err != nil || items == nil || len(items) != 0 {
		t.Errorf("got: %v %v", items, err)
	}
	for _, id := range []string{"a", "b", "c"} {
		_ = store.PutItem(ctx, map[string]any{"itemId": id})
	}
	fake.scans = 0
	items, err = store.ScanItems(ctx)
	if err != nil {
		t.Error(err)
		return
	}
	if len(items) != 3 || fake.scans != 4 {
		t.Errorf("got: %d items in %d scans", len(items), fake.scans)
	}
}

func TestDynamoDBStoreUpdate(t *testing.T) {
	store := NewDynamoDBStore(newFakeDynamoDB("itemId"), "items", "itemId")
	ctx := context.Background()
	_, err := store.UpdateItem(ctx, "a", map[string]any{"name": "x"})
	if !errors.Is(err, ErrItemNotFound) {
		t.Errorf("got:\n%v\nwant:\n%v\n", err, ErrItemNotFound)
	}
	_ = store.PutItem(ctx, map[string]any{"itemId": "a", "name": "old", "size": 1})
	item, err := store.UpdateItem(ctx, "a", map[string]any{"name": "new", "count": 2})
	if err != nil {
		t.Error(err)
		return
	}
	want := map[string]any{"itemId": "a", "name": "new", "size": json.Number("1"), "count": json.Number("2")}
	if !reflect.DeepEqual(item, want) {
		t.Errorf("got:\n%v\nwant:\n%v\n", item, want)
	}
}

func TestDynamoDBStoreKeepsNumberDigits(t *testing.T) {
	fake := newFakeDynamoDB("itemId")
	store := NewDynamoDBStore(fake, "items", "itemId")
	ctx := context.Background()
	err := store.PutImage(ctx, map[string]ddbtypes.AttributeValue{
		"itemId": &ddbtypes.AttributeValueMemberS{Value: "a"},
		"big":    &ddbtypes.AttributeValueMemberN{Value: "9007199254740993"},
		"ns":     &ddbtypes.AttributeValueMemberNS{Value: []string{"1", "9007199254740993"}},
	})
	if err != nil {
		t.Error(err)
		return
	}
	item, err := store.GetItem(ctx, "a")
	if err != nil {
		t.Error(err)
		return
	}
	body := RenderHTTP(Ok(item)).Body
	want := `{"big":9007199254740993,"itemId":"a","ns":[1,9007199254740993]}`
	if body != want {
		t.Errorf("got:\n%s\nwant:\n%s\n", body, want)
	}
	items, err := store.ScanItems(ctx)
	if err != nil || len(items) != 1 || items[0]["big"] != json.Number("9007199254740993") {
		t.Errorf("got: %v %v", items, err)
	}
}

func TestDynamoDBStoreErrorsVerbatim(t *testing.T) {
	fake := newFakeDynamoDB("itemId")
	fake.err = errors.New("operation error DynamoDB: GetItem, ResourceNotFoundException: Requested resource not found")
	store := NewDynamoDBStore(fake, "items", "itemId")
	_, err := store.GetItem(context.Background(), "a")
	if err == nil || err.Error() != fake.err.Error() {
		t.Errorf("got:\n%v\nwant:\n%v\n", err, fake.err)
	}
}

func TestDynamoDBUpdateInput(t *testing.T) {
	input, err := DynamoDBUpdateInput("items", "itemId", "a", map[string]any{"name": "x", "date": "y"})
	if err != nil {
		t.Error(err)
		return
	}
	if *input.UpdateExpression != "SET #a0 = :v0, #a1 = :v1" {
		t.Errorf("got:\n%s\n", *input.UpdateExpression)
	}
	wantNames := map[string]string{"#k": "itemId", "#a0": "date", "#a1": "name"}
	if !reflect.DeepEqual(input.ExpressionAttributeNames, wantNames) {
		t.Errorf("got:\n%v\nwant:\n%v\n", input.ExpressionAttributeNames, wantNames)
	}
	if *input.ConditionExpression != "attribute_exists(#k)" || input.ReturnValues != ddbtypes.ReturnValueAllNew {
		t.Errorf("got: %#v", input)
	}
	_, err = DynamoDBUpdateInput("items", "itemId", "a", map[string]any{})
	if err == nil {
		t.Errorf("expected error for empty update")
	}
	_, err = DynamoDBUpdateInput("items", "itemId", "a", map[string]any{"itemId": "b"})
	if err == nil {
		t.Errorf("expected error for key update")
	}
}

func TestDynamoDBEnsureInput(t *testing.T) {
	input := DynamoDBEnsureInput("items", "itemId", true)
	if *input.TableName != "items" || input.BillingMode != ddbtypes.BillingModePayPerRequest {
		t.Errorf("got: %#v", input)
	}
	if *input.KeySchema[0].AttributeName != "itemId" || input.KeySchema[0].KeyType != ddbtypes.KeyTypeHash {
		t.Errorf("got: %#v", input.KeySchema)
	}
	if input.StreamSpecification == nil || input.StreamSpecification.StreamViewType != ddbtypes.StreamViewTypeNewAndOldImages {
		t.Errorf("got: %#v", input.StreamSpecification)
	}
	if DynamoDBEnsureInput("items", "itemId", false).StreamSpecification != nil {
		t.Errorf("expected no stream")
	}
}
