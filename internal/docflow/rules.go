package docflow

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nimbusworks/nimbus"
)

// ReceiptFields are the values the extraction step pulls from a sales
// receipt. Numeric fields arrive as strings or numbers depending on the
// model, so TotalDue tolerates both.
type ReceiptFields struct {
	TotalDue          json.Number `json:"total_due"`
	BankAccountNumber string      `json:"bank_account_number"`
	TaxRegisteredNo   string      `json:"tax_registered_number"`
	InvoiceNumber     string      `json:"invoice_number"`
	InvoiceDate       string      `json:"invoice_date"`
}

// RuleResult is the outcome of one validation rule.
type RuleResult struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Passed      bool   `json:"passed"`
	Detail      string `json:"detail,omitempty"`
}

// Verdict aggregates the rule results. Success is true only when every
// rule passed.
type Verdict struct {
	Rules   []RuleResult `json:"rules"`
	Success bool         `json:"SUCCESS"`
}

// Ruleset validates receipt fields. TotalLimit caps the total due and Now
// anchors the invoice date checks.
type Ruleset struct {
	TotalLimit float64
	Now        func() time.Time
}

// NewRuleset creates a Ruleset with the default $1000 total limit.
func NewRuleset() *Ruleset {
	return &Ruleset{TotalLimit: 1000, Now: time.Now}
}

const invoiceDateLayout = "2006-01-02"

// Evaluate applies every rule to the fields and aggregates the verdict.
// A malformed field fails its rule rather than aborting the run.
func (r *Ruleset) Evaluate(fields *ReceiptFields) *Verdict {
	verdict := &Verdict{Success: true}
	add := func(name, description string, passed bool, detail string) {
		verdict.Rules = append(verdict.Rules, RuleResult{
			Name:        name,
			Description: description,
			Passed:      passed,
			Detail:      detail,
		})
		if !passed {
			verdict.Success = false
		}
	}

	account := strings.ReplaceAll(fields.BankAccountNumber, " ", "")
	add("bank_account_length",
		"Bank account number has at least 16 characters",
		len(account) >= 16,
		fmt.Sprintf("%d characters", len(account)))

	now := r.Now()
	date, err := time.Parse(invoiceDateLayout, fields.InvoiceDate)
	if err != nil {
		add("invoice_date_not_future", "Invoice date is not in the future", false,
			fmt.Sprintf("unparseable date %q", fields.InvoiceDate))
		add("invoice_date_recent", "Invoice date is not more than 3 months in the past", false,
			fmt.Sprintf("unparseable date %q", fields.InvoiceDate))
	} else {
		add("invoice_date_not_future",
			"Invoice date is not in the future",
			!date.After(now),
			fields.InvoiceDate)
		add("invoice_date_recent",
			"Invoice date is not more than 3 months in the past",
			!date.Before(now.AddDate(0, -3, 0)),
			fields.InvoiceDate)
	}

	total, err := fields.TotalDue.Float64()
	if err != nil {
		add("total_due_limit",
			fmt.Sprintf("Total due is not more than %.0f", r.TotalLimit),
			false,
			fmt.Sprintf("unparseable amount %q", fields.TotalDue.String()))
	} else {
		add("total_due_limit",
			fmt.Sprintf("Total due is not more than %.0f", r.TotalLimit),
			total <= r.TotalLimit,
			fields.TotalDue.String())
	}
	return verdict
}

// EvaluateJSON decodes an extraction payload and applies the ruleset.
func (r *Ruleset) EvaluateJSON(document string) (*Verdict, error) {
	var fields ReceiptFields
	if err := nimbus.DecodeJSON(document, &fields); err != nil {
		return nil, fmt.Errorf("docflow: decode extracted fields: %w", err)
	}
	return r.Evaluate(&fields), nil
}
