package lib

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gofrs/uuid"
)

const (
	msgMissingID   = "missing id parameter"
	msgMissingBody = "invalid request, you are missing the parameter body"
	msgNoArguments = "invalid request, no arguments provided"
)

// Items implements the http and queue operations over a single table keyed
// by one string attribute.
type Items struct {
	store Store
	key   string
}

func NewItems(store Store, key string) *Items {
	return &Items{store: store, key: key}
}

// decodeObject keeps numbers as json.Number so they are stored with every digit.
func decodeObject(body string) (map[string]any, error) {
	var obj map[string]any
	dec := json.NewDecoder(strings.NewReader(body))
	dec.UseNumber()
	err := dec.Decode(&obj)
	if err != nil {
		return nil, err
	}
	_, err = dec.Token()
	if err != io.EOF {
		return nil, fmt.Errorf("unexpected data after json object")
	}
	if obj == nil {
		return nil, fmt.Errorf("expected a json object")
	}
	return obj, nil
}

func (i *Items) GetOne(ctx context.Context, req *HttpRequest) Result {
	id := req.PathParameter("id")
	if id == "" {
		return Fail(InvalidInput, msgMissingID)
	}
	item, err := i.store.GetItem(ctx, id)
	if err != nil {
		return FailExternal(err)
	}
	if item == nil {
		return Fail(NotFound, "item not found: "+id)
	}
	return Ok(item)
}

func (i *Items) GetAll(ctx context.Context, _ *HttpRequest) Result {
	items, err := i.store.ScanItems(ctx)
	if err != nil {
		return FailExternal(err)
	}
	if items == nil {
		items = []map[string]any{}
	}
	return Ok(items)
}

// Create stores the request body as a new item, assigning a random id when
// the body has none.
func (i *Items) Create(ctx context.Context, req *HttpRequest) Result {
	if req.Body == nil {
		return Fail(InvalidInput, msgMissingBody)
	}
	item, err := decodeObject(*req.Body)
	if err != nil {
		return Fail(InvalidInput, "invalid request, body must be a json object: "+err.Error())
	}
	switch id := item[i.key].(type) {
	case nil:
		item[i.key] = uuid.Must(uuid.NewV4()).String()
	case string:
		if id == "" {
			item[i.key] = uuid.Must(uuid.NewV4()).String()
		}
	default:
		return Fail(InvalidInput, fmt.Sprintf("invalid request, %s must be a string", i.key))
	}
	err = i.store.PutItem(ctx, item)
	if err != nil {
		return FailExternal(err)
	}
	return Created(item)
}

func (i *Items) UpdateOne(ctx context.Context, req *HttpRequest) Result {
	id := req.PathParameter("id")
	if id == "" {
		return Fail(InvalidInput, msgMissingID)
	}
	if req.Body == nil {
		return Fail(InvalidInput, msgMissingBody)
	}
	attrs, err := decodeObject(*req.Body)
	if err != nil {
		return Fail(InvalidInput, "invalid request, body must be a json object: "+err.Error())
	}
	if len(attrs) == 0 {
		return Fail(InvalidInput, msgNoArguments)
	}
	if _, ok := attrs[i.key]; ok {
		return Fail(InvalidInput, "invalid request, cannot update key attribute "+i.key)
	}
	item, err := i.store.UpdateItem(ctx, id, attrs)
	if errors.Is(err, ErrItemNotFound) {
		return Fail(NotFound, "item not found: "+id)
	}
	if err != nil {
		return FailExternal(err)
	}
	return Ok(item)
}

// DeleteOne succeeds whether or not the item existed.
func (i *Items) DeleteOne(ctx context.Context, req *HttpRequest) Result {
	id := req.PathParameter("id")
	if id == "" {
		return Fail(InvalidInput, msgMissingID)
	}
	err := i.store.DeleteItem(ctx, id)
	if err != nil {
		return FailExternal(err)
	}
	return Ok(map[string]string{i.key: id})
}

// Route serves every items operation from one function, choosing by method
// and whether the path carries an id.
func (i *Items) Route(ctx context.Context, req *HttpRequest) Result {
	_, hasID := req.PathParameters["id"]
	switch {
	case req.Method == http.MethodGet && !hasID:
		return i.GetAll(ctx, req)
	case req.Method == http.MethodGet:
		return i.GetOne(ctx, req)
	case req.Method == http.MethodPost:
		return i.Create(ctx, req)
	case req.Method == http.MethodPatch || req.Method == http.MethodPut:
		return i.UpdateOne(ctx, req)
	case req.Method == http.MethodDelete:
		return i.DeleteOne(ctx, req)
	default:
		return Fail(InvalidInput, "unsupported method: "+req.Method)
	}
}

// PutRecord writes one queue record whose payload is a json item.
func (i *Items) PutRecord(ctx context.Context, record QueueRecord) Result {
	item, err := decodeObject(record.Payload)
	if err != nil {
		return Fail(InvalidInput, "record payload must be a json object: "+err.Error())
	}
	id, ok := item[i.key].(string)
	if !ok || id == "" {
		return Fail(InvalidInput, fmt.Sprintf("record payload missing %s", i.key))
	}
	err = i.store.PutItem(ctx, item)
	if err != nil {
		return FailExternal(err)
	}
	return Ok(map[string]string{i.key: id})
}
