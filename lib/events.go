package lib

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	ebtypes "github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
)

// Publisher is the event bus collaborator. It returns the id assigned to
// the published event.
type Publisher interface {
	Publish(ctx context.Context, event BusEvent) (string, error)
}

type EventBridgeAPI interface {
	PutEvents(ctx context.Context, params *eventbridge.PutEventsInput, optFns ...func(*eventbridge.Options)) (*eventbridge.PutEventsOutput, error)
}

var eventsClient *eventbridge.Client
var eventsClientLock sync.Mutex

func EventsClient() *eventbridge.Client {
	eventsClientLock.Lock()
	defer eventsClientLock.Unlock()
	if eventsClient == nil {
		eventsClient = eventbridge.NewFromConfig(*Session())
	}
	return eventsClient
}

func EventsClientFor(cfg *Config) *eventbridge.Client {
	if cfg == nil || cfg.Endpoint == "" {
		return EventsClient()
	}
	return eventbridge.NewFromConfig(*SessionFor(cfg), func(o *eventbridge.Options) {
		o.BaseEndpoint = aws.String(cfg.Endpoint)
	})
}

type EventBridgePublisher struct {
	client  EventBridgeAPI
	busName string
}

// NewEventBridgePublisher publishes to busName, or the default bus when
// busName is empty.
func NewEventBridgePublisher(client EventBridgeAPI, busName string) *EventBridgePublisher {
	return &EventBridgePublisher{client: client, busName: busName}
}

func EventsPutInput(busName string, event BusEvent) *eventbridge.PutEventsInput {
	entry := ebtypes.PutEventsRequestEntry{
		Source:     aws.String(event.Source),
		DetailType: aws.String(event.DetailType),
		Detail:     aws.String(string(event.Detail)),
	}
	if !event.Timestamp.IsZero() {
		entry.Time = aws.Time(event.Timestamp)
	}
	if busName != "" {
		entry.EventBusName = aws.String(busName)
	}
	return &eventbridge.PutEventsInput{Entries: []ebtypes.PutEventsRequestEntry{entry}}
}

func (p *EventBridgePublisher) Publish(ctx context.Context, event BusEvent) (string, error) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	out, err := p.client.PutEvents(ctx, EventsPutInput(p.busName, event))
	if err != nil {
		Logger.Println("error:", err)
		return "", err
	}
	if len(out.Entries) != 1 {
		err := fmt.Errorf("put events failed: expected 1 entry, got %d with %d failed", len(out.Entries), out.FailedEntryCount)
		Logger.Println("error:", err)
		return "", err
	}
	if out.FailedEntryCount > 0 {
		entry := out.Entries[0]
		err := fmt.Errorf("put events failed: %s: %s", aws.ToString(entry.ErrorCode), aws.ToString(entry.ErrorMessage))
		Logger.Println("error:", err)
		return "", err
	}
	return aws.ToString(out.Entries[0].EventId), nil
}
