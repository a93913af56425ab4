package lib

import (
	"context"
	"fmt"

	"github.com/aws/aws-lambda-go/events"
	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"
)

type HttpOperation func(ctx context.Context, req *HttpRequest) Result

type RecordOperation func(ctx context.Context, record QueueRecord) Result

type BusOperation func(ctx context.Context, event *BusEvent) Result

type StreamOperation func(ctx context.Context, record StreamRecord) Result

// execute runs one operation body, turning a panic into a Failure so that
// nothing escapes the invocation.
func execute(fn func() Result) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			Logger.Println("error: panic:", r)
			result = Fail(Internal, fmt.Sprint(r))
		}
	}()
	return fn()
}

// runRecords calls fn for every index, on up to concurrency goroutines.
// results[i] always belongs to record i.
func runRecords(n, concurrency int, fn func(i int) Result) []Result {
	results := make([]Result, n)
	if concurrency <= 1 {
		for i := 0; i < n; i++ {
			i := i
			results[i] = execute(func() Result { return fn(i) })
		}
		return results
	}
	var g errgroup.Group
	g.SetLimit(concurrency)
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			results[i] = execute(func() Result { return fn(i) })
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func InvokeHTTP(ctx context.Context, op HttpOperation, req *HttpRequest) *HttpResponse {
	result := execute(func() Result { return op(ctx, req) })
	return Render(TriggerHTTP, RecordResult{Result: result}).(*HttpResponse)
}

func HttpHandler(op HttpOperation) func(context.Context, events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	return func(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		return InvokeHTTP(ctx, op, ParseHttpRequest(event)).Lambda(), nil
	}
}

func HttpHandlerV2(op HttpOperation) func(context.Context, events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	return func(ctx context.Context, event events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
		return InvokeHTTP(ctx, op, ParseHttpRequestV2(event)).LambdaV2(), nil
	}
}

func InvokeQueue(ctx context.Context, op RecordOperation, batch *QueueBatch, concurrency int) *BatchResponse {
	outcomes := runRecords(len(batch.Records), concurrency, func(i int) Result {
		return op(ctx, batch.Records[i])
	})
	results := make([]RecordResult, len(outcomes))
	failed := 0
	for i, outcome := range outcomes {
		results[i] = RecordResult{ID: batch.Records[i].ID, Result: outcome}
		if outcome.Failed() {
			failed++
			Logger.Println("error:", batch.Records[i].ID, outcome.Failure)
		}
	}
	Logger.Println("processed", humanize.Comma(int64(len(results))), "records,", humanize.Comma(int64(failed)), "failed")
	return Render(TriggerQueue, results...).(*BatchResponse)
}

func QueueHandler(op RecordOperation, concurrency int) func(context.Context, events.SQSEvent) (events.SQSEventResponse, error) {
	return func(ctx context.Context, event events.SQSEvent) (events.SQSEventResponse, error) {
		return InvokeQueue(ctx, op, ParseQueueBatch(event), concurrency).Lambda(), nil
	}
}

func InvokeBus(ctx context.Context, op BusOperation, event *BusEvent) *Acknowledgment {
	result := execute(func() Result { return op(ctx, event) })
	return Render(TriggerBus, RecordResult{ID: event.ID, Result: result}).(*Acknowledgment)
}

func BusHandler(op BusOperation) func(context.Context, events.CloudWatchEvent) error {
	return func(ctx context.Context, event events.CloudWatchEvent) error {
		_ = InvokeBus(ctx, op, ParseBusEvent(event))
		return nil
	}
}

func InvokeStream(ctx context.Context, op StreamOperation, batch *StreamBatch) *Acknowledgment {
	outcomes := runRecords(len(batch.Records), 1, func(i int) Result {
		return op(ctx, batch.Records[i])
	})
	results := make([]RecordResult, len(outcomes))
	for i, outcome := range outcomes {
		results[i] = RecordResult{ID: batch.Records[i].ID, Result: outcome}
	}
	return Render(TriggerStream, results...).(*Acknowledgment)
}

func StreamHandler(op StreamOperation) func(context.Context, events.DynamoDBEvent) error {
	return func(ctx context.Context, event events.DynamoDBEvent) error {
		batch, err := ParseStreamBatch(event)
		if err != nil {
			Logger.Println("error:", err)
			return nil
		}
		_ = InvokeStream(ctx, op, batch)
		return nil
	}
}

// Handlers holds the operations for each trigger kind a function serves.
type Handlers struct {
	HTTP        HttpOperation
	Record      RecordOperation
	Bus         BusOperation
	Stream      StreamOperation
	Concurrency int
}

func (h Handlers) Invoke(ctx context.Context, event InvocationEvent) (InvocationResponse, error) {
	if event == nil {
		return nil, fmt.Errorf("nil event")
	}
	switch ev := event.(type) {
	case *HttpRequest:
		if h.HTTP != nil {
			return InvokeHTTP(ctx, h.HTTP, ev), nil
		}
	case *QueueBatch:
		if h.Record != nil {
			return InvokeQueue(ctx, h.Record, ev, h.Concurrency), nil
		}
	case *BusEvent:
		if h.Bus != nil {
			return InvokeBus(ctx, h.Bus, ev), nil
		}
	case *StreamBatch:
		if h.Stream != nil {
			return InvokeStream(ctx, h.Stream, ev), nil
		}
	}
	return nil, fmt.Errorf("no operation for trigger kind: %s", event.Kind())
}
