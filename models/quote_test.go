package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestBuildVersionLines_PreservesSubmissionOrder(t *testing.T) {
	versionId := uuid.New()
	input := []*NewQuoteLine{
		{Label: "Ravalement facade A", Quantity: decimal.NewFromFloat(42.5), UnitPrice: decimal.NewFromInt(38)},
		{Label: "Traitement anti-mousse", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(250)},
		{Label: "Nettoyage haute pression", Quantity: decimal.NewFromInt(3), UnitPrice: decimal.NewFromFloat(19.9)},
	}

	lines, total := buildVersionLines(versionId, input)
	if len(lines) != len(input) {
		t.Fatalf("expected %d lines, got %d", len(input), len(lines))
	}
	for i, line := range lines {
		if line.Position != i {
			t.Fatalf("line %d position expected %d, got %d", i, i, line.Position)
		}
		if line.Label != input[i].Label {
			t.Fatalf("line %d expected label %q, got %q", i, input[i].Label, line.Label)
		}
		if line.QuoteVersionId != versionId {
			t.Fatalf("line %d expected version id %s, got %s", i, versionId, line.QuoteVersionId)
		}
		if !line.Total.Equal(input[i].Quantity.Mul(input[i].UnitPrice)) {
			t.Fatalf("line %d total expected %s, got %s", i, input[i].Quantity.Mul(input[i].UnitPrice), line.Total)
		}
	}

	// 42.5*38 + 1*250 + 3*19.9 = 1615 + 250 + 59.7
	if !total.Equal(decimal.NewFromFloat(1924.7)) {
		t.Fatalf("version total expected 1924.7, got %s", total)
	}
}

func TestBuildVersionLines_ExactDecimalArithmetic(t *testing.T) {
	lines, total := buildVersionLines(uuid.New(), []*NewQuoteLine{
		{Label: "Enduit", Quantity: decimal.NewFromFloat(0.1), UnitPrice: decimal.NewFromInt(3)},
	})
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	// 0.1 * 3 is exactly 0.3, not a float approximation.
	if lines[0].Total.String() != "0.3" {
		t.Fatalf("line total expected 0.3, got %s", lines[0].Total)
	}
	if total.String() != "0.3" {
		t.Fatalf("version total expected 0.3, got %s", total)
	}
}

func TestBuildVersionLines_EmptyVersion(t *testing.T) {
	lines, total := buildVersionLines(uuid.New(), nil)
	if len(lines) != 0 {
		t.Fatalf("expected no lines, got %d", len(lines))
	}
	if !total.Equal(decimal.Zero) {
		t.Fatalf("empty version total expected 0, got %s", total)
	}
}
