package models_test

import (
	"errors"
	"testing"

	"bitbucket.org/pleinsud/facade_backend/models"
	"bitbucket.org/pleinsud/facade_backend/utils"
)

func TestCalculateMetrage_AggloReference(t *testing.T) {
	// 500px over 50cm and 200px over 20cm both give 10 px/cm, so the
	// averaged scale is exact and a 2000x1000px facade is 2.0m x 1.0m.
	result, err := models.CalculateMetrage(&models.MetrageInput{
		RefWidthCm:     50,
		RefHeightCm:    20,
		RefWidthPx:     500,
		RefHeightPx:    200,
		FacadeWidthPx:  2000,
		FacadeHeightPx: 1000,
	})
	if err != nil {
		t.Fatalf("CalculateMetrage: %v", err)
	}
	if result.WidthM != 2.0 {
		t.Fatalf("width expected 2.0, got %v", result.WidthM)
	}
	if result.HeightM != 1.0 {
		t.Fatalf("height expected 1.0, got %v", result.HeightM)
	}
	if result.SurfaceM2 != 2.0 {
		t.Fatalf("surface expected 2.0, got %v", result.SurfaceM2)
	}
	if result.OpeningsM2 != 0 {
		t.Fatalf("openings expected 0, got %v", result.OpeningsM2)
	}
	if result.NetSurfaceM2 != 2.0 {
		t.Fatalf("net surface expected 2.0, got %v", result.NetSurfaceM2)
	}
}

func TestCalculateMetrage_SubtractsOpenings(t *testing.T) {
	result, err := models.CalculateMetrage(&models.MetrageInput{
		RefWidthCm:     50,
		RefHeightCm:    20,
		RefWidthPx:     500,
		RefHeightPx:    200,
		FacadeWidthPx:  2000,
		FacadeHeightPx: 1000,
		Openings: []models.Opening{
			{WidthPx: 200, HeightPx: 100},
		},
	})
	if err != nil {
		t.Fatalf("CalculateMetrage: %v", err)
	}
	// 200px / 10px-per-cm / 100 = 0.2m, 100px -> 0.1m, opening 0.02m2.
	if result.OpeningsM2 != 0.02 {
		t.Fatalf("openings expected 0.02, got %v", result.OpeningsM2)
	}
	if result.NetSurfaceM2 != 1.98 {
		t.Fatalf("net surface expected 1.98, got %v", result.NetSurfaceM2)
	}
}

func TestCalculateMetrage_AveragesAxisScales(t *testing.T) {
	// Width axis: 600/50 = 12 px/cm; height axis: 160/20 = 8 px/cm.
	// Average 10 px/cm, same facade as above.
	result, err := models.CalculateMetrage(&models.MetrageInput{
		RefWidthCm:     50,
		RefHeightCm:    20,
		RefWidthPx:     600,
		RefHeightPx:    160,
		FacadeWidthPx:  2000,
		FacadeHeightPx: 1000,
	})
	if err != nil {
		t.Fatalf("CalculateMetrage: %v", err)
	}
	if result.WidthM != 2.0 || result.HeightM != 1.0 {
		t.Fatalf("expected 2.0 x 1.0, got %v x %v", result.WidthM, result.HeightM)
	}
}

func TestCalculateMetrage_NegativeNetNotClamped(t *testing.T) {
	result, err := models.CalculateMetrage(&models.MetrageInput{
		RefWidthCm:     50,
		RefHeightCm:    20,
		RefWidthPx:     500,
		RefHeightPx:    200,
		FacadeWidthPx:  100,
		FacadeHeightPx: 100,
		Openings: []models.Opening{
			{WidthPx: 2000, HeightPx: 1000},
		},
	})
	if err != nil {
		t.Fatalf("CalculateMetrage: %v", err)
	}
	if result.NetSurfaceM2 >= 0 {
		t.Fatalf("expected negative net surface for oversized opening, got %v", result.NetSurfaceM2)
	}
}

func TestCalculateMetrage_RejectsZeroCalibration(t *testing.T) {
	cases := []struct {
		name     string
		widthCm  float64
		heightCm float64
	}{
		{"zero width", 0, 20},
		{"zero height", 50, 0},
		{"both zero", 0, 0},
		{"negative", -50, 20},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := models.CalculateMetrage(&models.MetrageInput{
				RefWidthCm:     tc.widthCm,
				RefHeightCm:    tc.heightCm,
				RefWidthPx:     500,
				RefHeightPx:    200,
				FacadeWidthPx:  2000,
				FacadeHeightPx: 1000,
			})
			if !errors.Is(err, utils.ErrorInvalidCalibration) {
				t.Fatalf("expected ErrorInvalidCalibration, got %v", err)
			}
		})
	}
}

func TestCalculateMetrage_RoundsToTwoDecimals(t *testing.T) {
	// 333px at 10px/cm is 0.333m; surface 0.333 * 0.333 = 0.110889.
	result, err := models.CalculateMetrage(&models.MetrageInput{
		RefWidthCm:     50,
		RefHeightCm:    20,
		RefWidthPx:     500,
		RefHeightPx:    200,
		FacadeWidthPx:  333,
		FacadeHeightPx: 333,
	})
	if err != nil {
		t.Fatalf("CalculateMetrage: %v", err)
	}
	if result.SurfaceM2 != 0.11 {
		t.Fatalf("surface expected 0.11, got %v", result.SurfaceM2)
	}
	if result.WidthM != 0.33 {
		t.Fatalf("width expected 0.33, got %v", result.WidthM)
	}
}
