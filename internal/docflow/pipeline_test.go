package docflow

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/nimbusworks/nimbus"
)

// visionFake replays a canned extraction payload, failing the first
// `failures` calls so retry behavior is observable.
type visionFake struct {
	payload  string
	failures int
	calls    int
}

func (v *visionFake) Name() string { return "vision-fake" }

func (v *visionFake) Generate(_ context.Context, req *nimbus.ModelRequest, _ ...nimbus.ModelOption) (*nimbus.ModelResponse, error) {
	v.calls++
	if v.calls <= v.failures {
		return nil, errors.New("vision model overloaded")
	}
	return &nimbus.ModelResponse{Message: nimbus.AssistantMessage(v.payload)}, nil
}

const passingReceipt = `{"total_due": 420.00, "bank_account_number": "9876543210987654", "tax_registered_number": "TRN-1", "invoice_number": "INV-9", "invoice_date": "%s"}`

func recentDate() string {
	return NewRuleset().Now().AddDate(0, 0, -10).Format(invoiceDateLayout)
}

func TestPipelineRoutesToAPI(t *testing.T) {
	payload := strings.Replace(passingReceipt, "%s", recentDate(), 1)
	vision := &visionFake{payload: payload}
	pipeline, err := NewPipeline(vision)
	if err != nil {
		t.Fatalf("new pipeline: %v", err)
	}
	result, err := pipeline.Run(context.Background(), []byte{0x89, 0x50, 0x4e, 0x47})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Route != RouteAPI {
		t.Fatalf("expected api route, got %q", result.Route)
	}
	if result.Verdict == nil || !result.Verdict.Success {
		t.Fatalf("expected passing verdict, got %+v", result.Verdict)
	}
	want := []string{"Forwarded to API for processing", "Data stored successfully!"}
	if len(result.Records) != 2 || result.Records[0] != want[0] || result.Records[1] != want[1] {
		t.Fatalf("unexpected records: %v", result.Records)
	}
}

func TestPipelineRoutesToHuman(t *testing.T) {
	payload := `{"total_due": 5000, "bank_account_number": "123", "invoice_number": "INV-2", "invoice_date": "` + recentDate() + `"}`
	pipeline, err := NewPipeline(&visionFake{payload: payload})
	if err != nil {
		t.Fatalf("new pipeline: %v", err)
	}
	result, err := pipeline.Run(context.Background(), []byte{1})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Route != RouteHuman {
		t.Fatalf("expected human route, got %q", result.Route)
	}
	if result.Records[0] != "Forwarded to Human for review" {
		t.Fatalf("unexpected records: %v", result.Records)
	}
}

func TestPipelineRetriesExtraction(t *testing.T) {
	payload := strings.Replace(passingReceipt, "%s", recentDate(), 1)
	vision := &visionFake{payload: payload, failures: 2}
	pipeline, err := NewPipeline(vision, WithExtractRetries(3))
	if err != nil {
		t.Fatalf("new pipeline: %v", err)
	}
	result, err := pipeline.Run(context.Background(), []byte{1})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if vision.calls != 3 {
		t.Fatalf("expected 3 extraction attempts, got %d", vision.calls)
	}
	if result.Route != RouteAPI {
		t.Fatalf("expected api route after retries, got %q", result.Route)
	}
}

func TestPipelineMissingImage(t *testing.T) {
	pipeline, err := NewPipeline(&visionFake{payload: "{}"})
	if err != nil {
		t.Fatalf("new pipeline: %v", err)
	}
	if _, err := pipeline.Run(context.Background(), nil); err == nil {
		t.Fatal("expected error for missing image")
	}
}

func TestApplyRulesLLM(t *testing.T) {
	verdictJSON := `{"rules": [{"name": "total_due_limit", "description": "Total due is not more than 1000", "passed": false}], "SUCCESS": false}`
	provider := &visionFake{payload: verdictJSON}
	verdict, err := ApplyRulesLLM(context.Background(), provider, `{"total_due": 5000}`, ReceiptRulePrompt)
	if err != nil {
		t.Fatalf("apply rules: %v", err)
	}
	if verdict.Success || len(verdict.Rules) != 1 {
		t.Fatalf("unexpected verdict: %+v", verdict)
	}
}
