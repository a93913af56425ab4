package lib

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type TriggerKind int

const (
	TriggerHTTP TriggerKind = iota + 1
	TriggerQueue
	TriggerBus
	TriggerStream
)

func (k TriggerKind) String() string {
	switch k {
	case TriggerHTTP:
		return "http"
	case TriggerQueue:
		return "queue"
	case TriggerBus:
		return "bus"
	case TriggerStream:
		return "stream"
	default:
		return fmt.Sprintf("TriggerKind(%d)", int(k))
	}
}

// InvocationEvent is one of *HttpRequest, *QueueBatch, *BusEvent or
// *StreamBatch.
type InvocationEvent interface {
	Kind() TriggerKind
}

type HttpRequest struct {
	Method          string
	Path            string
	PathParameters  map[string]string
	QueryParameters map[string]string
	Headers         map[string]string
	Body            *string
}

func (*HttpRequest) Kind() TriggerKind { return TriggerHTTP }

func (r *HttpRequest) PathParameter(name string) string {
	if r == nil {
		return ""
	}
	return r.PathParameters[name]
}

type QueueRecord struct {
	ID      string
	Payload string
}

type QueueBatch struct {
	Records []QueueRecord
}

func (*QueueBatch) Kind() TriggerKind { return TriggerQueue }

type BusEvent struct {
	ID         string
	Source     string
	DetailType string
	Detail     json.RawMessage
	Timestamp  time.Time
}

func (*BusEvent) Kind() TriggerKind { return TriggerBus }

type StreamRecord struct {
	ID        string
	EventName string
	Keys      map[string]ddbtypes.AttributeValue
	NewImage  map[string]ddbtypes.AttributeValue
	OldImage  map[string]ddbtypes.AttributeValue
}

type StreamBatch struct {
	Records []StreamRecord
}

func (*StreamBatch) Kind() TriggerKind { return TriggerStream }

func lowerKeys(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[strings.ToLower(k)] = v
	}
	return out
}

func copyMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// httpBody drops a body that claims base64 but does not decode, so the
// operation reports it as missing.
func httpBody(body string, isBase64 bool) *string {
	if body == "" {
		return nil
	}
	if isBase64 {
		decoded, err := base64.StdEncoding.DecodeString(body)
		if err != nil {
			Logger.Println("error: base64 body:", err)
			return nil
		}
		body = string(decoded)
	}
	return &body
}

// ParseHttpRequest never fails. A missing path parameter is left for the
// operation to report.
func ParseHttpRequest(event events.APIGatewayProxyRequest) *HttpRequest {
	return &HttpRequest{
		Method:          event.HTTPMethod,
		Path:            event.Path,
		PathParameters:  copyMap(event.PathParameters),
		QueryParameters: copyMap(event.QueryStringParameters),
		Headers:         lowerKeys(event.Headers),
		Body:            httpBody(event.Body, event.IsBase64Encoded),
	}
}

func ParseHttpRequestV2(event events.APIGatewayV2HTTPRequest) *HttpRequest {
	return &HttpRequest{
		Method:          event.RequestContext.HTTP.Method,
		Path:            event.RawPath,
		PathParameters:  copyMap(event.PathParameters),
		QueryParameters: copyMap(event.QueryStringParameters),
		Headers:         lowerKeys(event.Headers),
		Body:            httpBody(event.Body, event.IsBase64Encoded),
	}
}

// ParseQueueBatch keeps records in delivery order with their message ids
// untouched, since partial batch failures are reported by those ids.
func ParseQueueBatch(event events.SQSEvent) *QueueBatch {
	batch := &QueueBatch{Records: make([]QueueRecord, 0, len(event.Records))}
	for _, record := range event.Records {
		batch.Records = append(batch.Records, QueueRecord{
			ID:      record.MessageId,
			Payload: record.Body,
		})
	}
	return batch
}

func ParseBusEvent(event events.CloudWatchEvent) *BusEvent {
	return &BusEvent{
		ID:         event.ID,
		Source:     event.Source,
		DetailType: event.DetailType,
		Detail:     event.Detail,
		Timestamp:  event.Time,
	}
}

func ParseStreamBatch(event events.DynamoDBEvent) (*StreamBatch, error) {
	batch := &StreamBatch{Records: make([]StreamRecord, 0, len(event.Records))}
	for _, record := range event.Records {
		keys, err := FromDynamoDBEventAVMap(record.Change.Keys)
		if err != nil {
			Logger.Println("error:", err)
			return nil, err
		}
		newImage, err := FromDynamoDBEventAVMap(record.Change.NewImage)
		if err != nil {
			Logger.Println("error:", err)
			return nil, err
		}
		oldImage, err := FromDynamoDBEventAVMap(record.Change.OldImage)
		if err != nil {
			Logger.Println("error:", err)
			return nil, err
		}
		batch.Records = append(batch.Records, StreamRecord{
			ID:        record.EventID,
			EventName: record.EventName,
			Keys:      keys,
			NewImage:  newImage,
			OldImage:  oldImage,
		})
	}
	return batch, nil
}

// DecodeEvent decodes raw json as the named trigger kind: http, http2,
// queue, bus or stream.
func DecodeEvent(kind string, raw []byte) (InvocationEvent, error) {
	switch kind {
	case "http":
		var event events.APIGatewayProxyRequest
		err := json.Unmarshal(raw, &event)
		if err != nil {
			return nil, err
		}
		return ParseHttpRequest(event), nil
	case "http2":
		var event events.APIGatewayV2HTTPRequest
		err := json.Unmarshal(raw, &event)
		if err != nil {
			return nil, err
		}
		return ParseHttpRequestV2(event), nil
	case "queue":
		var event events.SQSEvent
		err := json.Unmarshal(raw, &event)
		if err != nil {
			return nil, err
		}
		return ParseQueueBatch(event), nil
	case "bus":
		var event events.CloudWatchEvent
		err := json.Unmarshal(raw, &event)
		if err != nil {
			return nil, err
		}
		return ParseBusEvent(event), nil
	case "stream":
		var event events.DynamoDBEvent
		err := json.Unmarshal(raw, &event)
		if err != nil {
			return nil, err
		}
		return ParseStreamBatch(event)
	default:
		return nil, fmt.Errorf("unknown trigger kind: %s", kind)
	}
}
