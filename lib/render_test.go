package lib

import (
	"reflect"
	"testing"
)

func TestRenderHTTP(t *testing.T) {
	type test struct {
		result Result
		status int
		body   string
	}
	tests := []test{
		{Ok(map[string]int{"a": 1}), 200, `{"a":1}`},
		{Ok(nil), 200, `null`},
		{Ok([]string{}), 200, `[]`},
		{Created(map[string]string{"id": "x"}), 201, `{"id":"x"}`},
		{Fail(InvalidInput, "missing id parameter"), 400, `"missing id parameter"`},
		{Fail(NotFound, "item not found: x"), 404, `"item not found: x"`},
		{Fail(ExternalServiceError, "ThrottlingException: slow down"), 500, `"ThrottlingException: slow down"`},
		{Fail(Internal, "boom"), 500, `"boom"`},
		{Ok(make(chan int)), 500, ""},
	}
	for _, test := range tests {
		resp := RenderHTTP(test.result)
		if resp.StatusCode != test.status {
			t.Errorf("got:\n%d\nwant:\n%d\n", resp.StatusCode, test.status)
		}
		if test.body != "" && resp.Body != test.body {
			t.Errorf("got:\n%s\nwant:\n%s\n", resp.Body, test.body)
		}
		if resp.Headers["Access-Control-Allow-Origin"] != "*" {
			t.Errorf("missing cors header: %v", resp.Headers)
		}
	}
}

func TestRenderBatch(t *testing.T) {
	results := []RecordResult{
		{"a", Ok(nil)},
		{"b", Fail(InvalidInput, "bad")},
		{"c", Ok(nil)},
		{"d", Fail(ExternalServiceError, "down")},
	}
	resp := RenderBatch(results)
	if !reflect.DeepEqual(resp.FailedIDs, []string{"b", "d"}) {
		t.Errorf("got:\n%v\nwant:\n%v\n", resp.FailedIDs, []string{"b", "d"})
	}
	lambdaResp := resp.Lambda()
	if len(lambdaResp.BatchItemFailures) != 2 || lambdaResp.BatchItemFailures[1].ItemIdentifier != "d" {
		t.Errorf("got: %v", lambdaResp)
	}
	empty := RenderBatch(nil).Lambda()
	if empty.BatchItemFailures == nil || len(empty.BatchItemFailures) != 0 {
		t.Errorf("got: %#v", empty)
	}
}

func TestRenderKinds(t *testing.T) {
	failed := RecordResult{"x", Fail(ExternalServiceError, "down")}
	type test struct {
		kind    TriggerKind
		results []RecordResult
		want    string
	}
	tests := []test{
		{TriggerHTTP, []RecordResult{failed}, "*lib.HttpResponse"},
		{TriggerHTTP, nil, "*lib.HttpResponse"},
		{TriggerQueue, []RecordResult{failed}, "*lib.BatchResponse"},
		{TriggerBus, []RecordResult{failed}, "*lib.Acknowledgment"},
		{TriggerStream, []RecordResult{failed}, "*lib.Acknowledgment"},
	}
	for _, test := range tests {
		resp := Render(test.kind, test.results...)
		if reflect.TypeOf(resp).String() != test.want {
			t.Errorf("got:\n%T\nwant:\n%s\n", resp, test.want)
		}
		if resp.Kind() != test.kind {
			t.Errorf("got:\n%s\nwant:\n%s\n", resp.Kind(), test.kind)
		}
	}
	resp := Render(TriggerHTTP).(*HttpResponse)
	if resp.StatusCode != 500 {
		t.Errorf("got:\n%d\nwant:\n500\n", resp.StatusCode)
	}
}
