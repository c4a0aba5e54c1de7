package docflow

import (
	"encoding/json"
	"testing"
	"time"
)

var ruleNow = time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

func newTestRuleset() *Ruleset {
	rs := NewRuleset()
	rs.Now = func() time.Time { return ruleNow }
	return rs
}

func validFields() *ReceiptFields {
	return &ReceiptFields{
		TotalDue:          json.Number("842.50"),
		BankAccountNumber: "1234567890123456",
		TaxRegisteredNo:   "TRN-99881",
		InvoiceNumber:     "INV-1001",
		InvoiceDate:       "2025-05-20",
	}
}

func TestRulesetAllPass(t *testing.T) {
	verdict := newTestRuleset().Evaluate(validFields())
	if !verdict.Success {
		t.Fatalf("expected success, got %+v", verdict)
	}
	if len(verdict.Rules) != 4 {
		t.Fatalf("expected 4 rules, got %d", len(verdict.Rules))
	}
}

func TestRulesetFailures(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*ReceiptFields)
		rule   string
	}{
		{"short account", func(f *ReceiptFields) { f.BankAccountNumber = "12345" }, "bank_account_length"},
		{"future invoice", func(f *ReceiptFields) { f.InvoiceDate = "2025-07-01" }, "invoice_date_not_future"},
		{"stale invoice", func(f *ReceiptFields) { f.InvoiceDate = "2025-02-01" }, "invoice_date_recent"},
		{"over limit", func(f *ReceiptFields) { f.TotalDue = json.Number("1500") }, "total_due_limit"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fields := validFields()
			tc.mutate(fields)
			verdict := newTestRuleset().Evaluate(fields)
			if verdict.Success {
				t.Fatalf("expected failure, got %+v", verdict)
			}
			for _, rule := range verdict.Rules {
				if rule.Name == tc.rule && rule.Passed {
					t.Fatalf("expected rule %s to fail: %+v", tc.rule, rule)
				}
			}
		})
	}
}

func TestRulesetBoundaryDates(t *testing.T) {
	fields := validFields()

	// Today is allowed.
	fields.InvoiceDate = "2025-06-15"
	if verdict := newTestRuleset().Evaluate(fields); !verdict.Success {
		t.Fatalf("expected same-day invoice to pass: %+v", verdict)
	}

	// Exactly 3 months back is allowed.
	fields.InvoiceDate = "2025-03-15"
	if verdict := newTestRuleset().Evaluate(fields); !verdict.Success {
		t.Fatalf("expected 3-month-old invoice to pass: %+v", verdict)
	}
}

func TestRulesetUnparseableFields(t *testing.T) {
	fields := validFields()
	fields.InvoiceDate = "June 1st"
	fields.TotalDue = json.Number("n/a")
	verdict := newTestRuleset().Evaluate(fields)
	if verdict.Success {
		t.Fatalf("expected malformed fields to fail: %+v", verdict)
	}
	failed := 0
	for _, rule := range verdict.Rules {
		if !rule.Passed {
			failed++
		}
	}
	if failed != 3 {
		t.Fatalf("expected 3 failed rules, got %d: %+v", failed, verdict.Rules)
	}
}

func TestEvaluateJSONWithFences(t *testing.T) {
	document := "```json\n{\"total_due\": 900, \"bank_account_number\": \"1234567890123456\", \"invoice_number\": \"INV-7\", \"invoice_date\": \"2025-06-01\"}\n```"
	verdict, err := newTestRuleset().EvaluateJSON(document)
	if err != nil {
		t.Fatalf("evaluate json: %v", err)
	}
	if !verdict.Success {
		t.Fatalf("expected success, got %+v", verdict)
	}
}
