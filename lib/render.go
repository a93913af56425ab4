package lib

import (
	"encoding/json"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
)

// InvocationResponse is one of *HttpResponse, *BatchResponse or
// *Acknowledgment.
type InvocationResponse interface {
	Kind() TriggerKind
}

type HttpResponse struct {
	StatusCode int
	Headers    map[string]string
	Body       string
}

func (*HttpResponse) Kind() TriggerKind { return TriggerHTTP }

func (r *HttpResponse) Lambda() events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{
		StatusCode: r.StatusCode,
		Headers:    r.Headers,
		Body:       r.Body,
	}
}

func (r *HttpResponse) LambdaV2() events.APIGatewayV2HTTPResponse {
	return events.APIGatewayV2HTTPResponse{
		StatusCode: r.StatusCode,
		Headers:    r.Headers,
		Body:       r.Body,
	}
}

type BatchResponse struct {
	FailedIDs []string
}

func (*BatchResponse) Kind() TriggerKind { return TriggerQueue }

func (r *BatchResponse) Lambda() events.SQSEventResponse {
	resp := events.SQSEventResponse{BatchItemFailures: []events.SQSBatchItemFailure{}}
	for _, id := range r.FailedIDs {
		resp.BatchItemFailures = append(resp.BatchItemFailures, events.SQSBatchItemFailure{ItemIdentifier: id})
	}
	return resp
}

type Acknowledgment struct {
	kind TriggerKind
}

func (a *Acknowledgment) Kind() TriggerKind { return a.kind }

// RecordResult pairs a batch record's id with the outcome of its operation.
type RecordResult struct {
	ID     string
	Result Result
}

func httpStatus(result Result) int {
	if result.Failure != nil {
		switch result.Failure.Kind {
		case InvalidInput:
			return http.StatusBadRequest
		case NotFound:
			return http.StatusNotFound
		default:
			return http.StatusInternalServerError
		}
	}
	if result.Created {
		return http.StatusCreated
	}
	return http.StatusOK
}

func responseHeaders() map[string]string {
	return map[string]string{
		"Content-Type":                "application/json",
		"Access-Control-Allow-Origin": "*",
	}
}

func RenderHTTP(result Result) *HttpResponse {
	var payload any = result.Value
	if result.Failure != nil {
		payload = result.Failure.Message
	}
	body, err := json.Marshal(payload)
	if err != nil {
		Logger.Println("error:", err)
		body, _ = json.Marshal(err.Error())
		return &HttpResponse{StatusCode: http.StatusInternalServerError, Headers: responseHeaders(), Body: string(body)}
	}
	return &HttpResponse{StatusCode: httpStatus(result), Headers: responseHeaders(), Body: string(body)}
}

// RenderBatch reports exactly the records that failed. Records absent from
// FailedIDs are acknowledged.
func RenderBatch(results []RecordResult) *BatchResponse {
	resp := &BatchResponse{FailedIDs: []string{}}
	for _, r := range results {
		if r.Result.Failed() {
			resp.FailedIDs = append(resp.FailedIDs, r.ID)
		}
	}
	return resp
}

// RenderAck logs failures, there is nobody to return them to.
func RenderAck(kind TriggerKind, results []RecordResult) *Acknowledgment {
	for _, r := range results {
		if r.Result.Failed() {
			Logger.Println("error:", kind, r.ID, r.Result.Failure)
		}
	}
	return &Acknowledgment{kind: kind}
}

// Render maps results to the response shape of the trigger kind. HTTP takes
// exactly one result.
func Render(kind TriggerKind, results ...RecordResult) InvocationResponse {
	switch kind {
	case TriggerHTTP:
		if len(results) != 1 {
			return RenderHTTP(Fail(Internal, "http invocation must produce exactly one result"))
		}
		return RenderHTTP(results[0].Result)
	case TriggerQueue:
		return RenderBatch(results)
	default:
		return RenderAck(kind, results)
	}
}
