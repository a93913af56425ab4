package lib

import (
	"encoding/json"
	"fmt"
	"sort"
)

type Collaborators struct {
	Store     Store
	Replica   ImageStore
	Publisher Publisher
}

var handlerRequires = map[string][]string{
	"items":     {"TableName", "PrimaryKey"},
	"status":    {"EventSource"},
	"log":       {},
	"replicate": {"ReplicaTable", "PrimaryKey"},
}

func HandlerNames() []string {
	var names []string
	for name := range handlerRequires {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewCollaborators builds the aws backed collaborators a named handler
// needs.
func NewCollaborators(name string, cfg *Config) Collaborators {
	var c Collaborators
	switch name {
	case "items":
		c.Store = NewDynamoDBStore(DynamoDBClientFor(cfg), cfg.TableName, cfg.PrimaryKey)
	case "replicate":
		c.Replica = NewDynamoDBStore(DynamoDBClientFor(cfg), cfg.ReplicaTable, cfg.PrimaryKey)
	case "status":
		c.Publisher = NewEventBridgePublisher(EventsClientFor(cfg), cfg.EventBusName)
	}
	return c
}

// HandlersFor wires the operations of a named handler to its collaborators.
func HandlersFor(name string, cfg *Config, c Collaborators) (Handlers, error) {
	required, ok := handlerRequires[name]
	if !ok {
		return Handlers{}, fmt.Errorf("unknown handler: %s", name)
	}
	err := cfg.Require(required...)
	if err != nil {
		return Handlers{}, err
	}
	switch name {
	case "items":
		items := NewItems(c.Store, cfg.PrimaryKey)
		return Handlers{HTTP: items.Route, Record: items.PutRecord, Concurrency: cfg.BatchConcurrency}, nil
	case "status":
		producer, err := NewProducer(c.Publisher, cfg.EventSource, cfg.DetailType, json.RawMessage(cfg.Detail))
		if err != nil {
			return Handlers{}, err
		}
		return Handlers{HTTP: producer.PublishBody, Bus: producer.Emit}, nil
	case "replicate":
		replicator := NewReplicator(c.Replica, cfg.PrimaryKey)
		return Handlers{Stream: replicator.Apply}, nil
	default:
		return Handlers{Bus: LogEvent}, nil
	}
}

// LambdaResponse is the json the lambda runtime would return for resp.
func LambdaResponse(resp InvocationResponse) any {
	switch r := resp.(type) {
	case *HttpResponse:
		return r.Lambda()
	case *BatchResponse:
		return r.Lambda()
	default:
		return struct{}{}
	}
}
