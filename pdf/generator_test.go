package pdf

import (
	"bytes"
	"testing"

	"github.com/shopspring/decimal"
)

func samplePdfData(trial bool) QuoteData {
	return QuoteData{
		CompanyName:  "Facades du Sud",
		CustomerName: "Jean Martin",
		ProjectName:  "Villa Les Oliviers",
		Version:      2,
		Status:       "sent",
		Lines: []QuoteLine{
			{Label: "Ravalement facade A", Quantity: decimal.NewFromFloat(42.5), UnitPrice: decimal.NewFromInt(38), Total: decimal.NewFromInt(1615)},
			{Label: "Traitement anti-mousse", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(250), Total: decimal.NewFromInt(250)},
		},
		Total: decimal.NewFromInt(1865),
		Trial: trial,
	}
}

func TestQuotePDF_ProducesDocument(t *testing.T) {
	content, err := QuotePDF(samplePdfData(false))
	if err != nil {
		t.Fatalf("QuotePDF: %v", err)
	}
	if len(content) == 0 {
		t.Fatalf("expected non-empty document")
	}
	if !bytes.HasPrefix(content, []byte("%PDF")) {
		t.Fatalf("expected PDF header, got %q", content[:min(8, len(content))])
	}
}

func TestQuotePDF_EmptyLines(t *testing.T) {
	data := samplePdfData(false)
	data.Lines = nil
	data.Total = decimal.Zero

	content, err := QuotePDF(data)
	if err != nil {
		t.Fatalf("QuotePDF with no lines: %v", err)
	}
	if len(content) == 0 {
		t.Fatalf("expected non-empty document")
	}
}

func TestQuotePDF_TrialRendersLarger(t *testing.T) {
	plain, err := QuotePDF(samplePdfData(false))
	if err != nil {
		t.Fatalf("QuotePDF: %v", err)
	}
	trial, err := QuotePDF(samplePdfData(true))
	if err != nil {
		t.Fatalf("QuotePDF trial: %v", err)
	}
	// The watermark row adds content, so the trial rendering cannot be
	// byte-identical to the plain one.
	if bytes.Equal(plain, trial) {
		t.Fatalf("trial document should differ from plain document")
	}
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
