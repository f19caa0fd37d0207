package models

import (
	"errors"
	"testing"

	"bitbucket.org/pleinsud/facade_backend/utils"
	"github.com/google/uuid"
)

func TestNormalizeMetrageRef_AggloOverridesDimensions(t *testing.T) {
	// Caller-supplied dimensions are replaced by the physical block's, not
	// used as defaults.
	input := &NewMetrageRef{
		ProjectId: uuid.New(),
		Type:      string(MetrageRefTypeAgglo),
		WidthCm:   10,
		HeightCm:  7,
	}
	if err := normalizeMetrageRef(input); err != nil {
		t.Fatalf("normalize agglo: %v", err)
	}
	if input.WidthCm != AggloWidthCm {
		t.Fatalf("agglo width expected %v, got %v", AggloWidthCm, input.WidthCm)
	}
	if input.HeightCm != AggloHeightCm {
		t.Fatalf("agglo height expected %v, got %v", AggloHeightCm, input.HeightCm)
	}
}

func TestNormalizeMetrageRef_CustomDimensions(t *testing.T) {
	cases := []struct {
		name     string
		widthCm  float64
		heightCm float64
		wantErr  bool
	}{
		{"valid", 120, 60, false},
		{"zero width", 0, 60, true},
		{"zero height", 120, 0, true},
		{"both zero", 0, 0, true},
		{"negative width", -5, 60, true},
	}
	for _, tc := range cases {
		input := &NewMetrageRef{
			ProjectId: uuid.New(),
			Type:      string(MetrageRefTypeCustom),
			WidthCm:   tc.widthCm,
			HeightCm:  tc.heightCm,
		}
		err := normalizeMetrageRef(input)
		if tc.wantErr {
			if !errors.Is(err, utils.ErrorInvalidCalibration) {
				t.Fatalf("%s: expected ErrorInvalidCalibration, got %v", tc.name, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%s: unexpected error %v", tc.name, err)
		}
		if input.WidthCm != tc.widthCm || input.HeightCm != tc.heightCm {
			t.Fatalf("%s: custom dimensions must be stored as given, got %vx%v", tc.name, input.WidthCm, input.HeightCm)
		}
	}
}

func TestNormalizeMetrageRef_UnknownType(t *testing.T) {
	input := &NewMetrageRef{ProjectId: uuid.New(), Type: "brique", WidthCm: 10, HeightCm: 10}
	if err := normalizeMetrageRef(input); err == nil {
		t.Fatalf("unknown reference type expected an error")
	}
}
