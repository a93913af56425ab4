package lib

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Producer publishes events to the bus, either a fixed detail on a
// schedule or an http request body.
type Producer struct {
	pub        Publisher
	source     string
	detailType string
	detail     json.RawMessage
}

func NewProducer(pub Publisher, source, detailType string, detail json.RawMessage) (*Producer, error) {
	if !json.Valid(detail) {
		err := fmt.Errorf("detail must be valid json: %q", string(detail))
		Logger.Println("error:", err)
		return nil, err
	}
	return &Producer{pub: pub, source: source, detailType: detailType, detail: detail}, nil
}

func (p *Producer) publish(ctx context.Context, detail json.RawMessage) Result {
	id, err := p.pub.Publish(ctx, BusEvent{
		Source:     p.source,
		DetailType: p.detailType,
		Detail:     detail,
		Timestamp:  time.Now().UTC(),
	})
	if err != nil {
		return FailExternal(err)
	}
	return Ok(map[string]string{"eventId": id})
}

// Emit ignores the triggering event and publishes the configured detail.
func (p *Producer) Emit(ctx context.Context, _ *BusEvent) Result {
	return p.publish(ctx, p.detail)
}

func (p *Producer) PublishBody(ctx context.Context, req *HttpRequest) Result {
	if req.Body == nil {
		return Fail(InvalidInput, msgMissingBody)
	}
	if !json.Valid([]byte(*req.Body)) {
		return Fail(InvalidInput, "invalid request, body must be json")
	}
	return p.publish(ctx, json.RawMessage(*req.Body))
}

func LogEvent(_ context.Context, event *BusEvent) Result {
	Logger.Println("event:", event.Source, event.DetailType, event.Timestamp.Format(time.RFC3339), string(event.Detail))
	return Ok(nil)
}
