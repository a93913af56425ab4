package lib

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"
)

func queueEvent(n int) events.SQSEvent {
	var event events.SQSEvent
	for i := 0; i < n; i++ {
		event.Records = append(event.Records, events.SQSMessage{
			MessageId: fmt.Sprintf("msg-%02d", i),
			Body:      fmt.Sprintf(`{"n":%d}`, i),
		})
	}
	return event
}

func TestQueueFailureSet(t *testing.T) {
	type test struct {
		n           int
		faults      []string
		concurrency int
	}
	tests := []test{
		{0, nil, 1},
		{5, nil, 1},
		{5, []string{"msg-00", "msg-04"}, 1},
		{20, []string{"msg-03", "msg-07", "msg-19"}, 4},
		{20, []string{"msg-00", "msg-01", "msg-02"}, 20},
	}
	for _, test := range tests {
		faulty := map[string]bool{}
		for _, id := range test.faults {
			faulty[id] = true
		}
		op := func(_ context.Context, record QueueRecord) Result {
			if faulty[record.ID] {
				if record.ID == "msg-00" {
					panic("boom")
				}
				return FailExternal(errors.New("throttled"))
			}
			time.Sleep(time.Millisecond)
			return Ok(nil)
		}
		resp, err := QueueHandler(op, test.concurrency)(context.Background(), queueEvent(test.n))
		if err != nil {
			t.Error(err)
			continue
		}
		got := []string{}
		for _, f := range resp.BatchItemFailures {
			got = append(got, f.ItemIdentifier)
		}
		want := append([]string{}, test.faults...)
		sort.Strings(got)
		sort.Strings(want)
		if !reflect.DeepEqual(got, want) {
			t.Errorf("got:\n%v\nwant:\n%v\n", got, want)
		}
	}
}

func TestQueueRecordIsolation(t *testing.T) {
	store := newMemStore("itemId")
	items := NewItems(store, "itemId")
	event := events.SQSEvent{Records: []events.SQSMessage{
		{MessageId: "a", Body: `{"itemId":"1"}`},
		{MessageId: "b", Body: `bad`},
		{MessageId: "c", Body: `{"itemId":"3"}`},
	}}
	resp, _ := QueueHandler(items.PutRecord, 1)(context.Background(), event)
	if len(resp.BatchItemFailures) != 1 || resp.BatchItemFailures[0].ItemIdentifier != "b" {
		t.Errorf("got: %v", resp.BatchItemFailures)
	}
	for _, id := range []string{"1", "3"} {
		item, _ := store.GetItem(context.Background(), id)
		if item == nil {
			t.Errorf("item %s not written", id)
		}
	}
}

func TestHttpHandlerRecoversPanic(t *testing.T) {
	op := func(context.Context, *HttpRequest) Result {
		panic("nil map")
	}
	resp, err := HttpHandler(op)(context.Background(), events.APIGatewayProxyRequest{})
	if err != nil {
		t.Error(err)
		return
	}
	if resp.StatusCode != 500 || resp.Body != `"nil map"` {
		t.Errorf("got:\n%d %s\n", resp.StatusCode, resp.Body)
	}
}

func TestHttpHandlerV2(t *testing.T) {
	items := NewItems(newMemStore("itemId"), "itemId")
	var event events.APIGatewayV2HTTPRequest
	event.RequestContext.HTTP.Method = "POST"
	event.Body = `{"itemId":"v2"}`
	resp, err := HttpHandlerV2(items.Route)(context.Background(), event)
	if err != nil {
		t.Error(err)
		return
	}
	if resp.StatusCode != 201 || resp.Headers["Content-Type"] != "application/json" {
		t.Errorf("got: %#v", resp)
	}
}

func TestStatusEmitPublishesOnce(t *testing.T) {
	for _, pubErr := range []error{nil, errors.New("AccessDeniedException: events:PutEvents")} {
		pub := &fakePublisher{err: pubErr}
		producer, err := NewProducer(pub, "app.status", DefaultDetailType, json.RawMessage(`{"status":"ok"}`))
		if err != nil {
			t.Error(err)
			return
		}
		handlerErr := BusHandler(producer.Emit)(context.Background(), events.CloudWatchEvent{DetailType: "Scheduled Event", Detail: json.RawMessage(`{}`)})
		if handlerErr != nil {
			t.Errorf("bus handler must acknowledge, got: %s", handlerErr)
		}
		ack := InvokeBus(context.Background(), producer.Emit, &BusEvent{})
		if ack.Kind() != TriggerBus {
			t.Errorf("got: %s", ack.Kind())
		}
		if len(pub.events) != 2 {
			t.Errorf("got:\n%d publishes\nwant:\n2\n", len(pub.events))
			continue
		}
		event := pub.events[0]
		if event.DetailType != "service_status" || string(event.Detail) != `{"status":"ok"}` || event.Source != "app.status" {
			t.Errorf("got: %#v", event)
		}
		if event.Timestamp.IsZero() {
			t.Errorf("expected timestamp")
		}
	}
}

func TestHandlersInvoke(t *testing.T) {
	h := Handlers{HTTP: func(context.Context, *HttpRequest) Result { return Ok("hi") }}
	resp, err := h.Invoke(context.Background(), &HttpRequest{})
	if err != nil {
		t.Error(err)
		return
	}
	httpResp, ok := resp.(*HttpResponse)
	if !ok || httpResp.Body != `"hi"` {
		t.Errorf("got: %#v", resp)
	}
	_, err = h.Invoke(context.Background(), &QueueBatch{})
	if err == nil {
		t.Errorf("expected error for kind without operation")
	}
	_, err = h.Invoke(context.Background(), nil)
	if err == nil {
		t.Errorf("expected error for nil event")
	}
}
