package models

import (
	"fmt"
	"math"

	"bitbucket.org/pleinsud/facade_backend/utils"
)

// Opening is a sub-region (window, door) subtracted from the gross facade
// surface. Missing pixel extents count as zero.
type Opening struct {
	WidthPx  float64 `json:"width_px"`
	HeightPx float64 `json:"height_px"`
}

type MetrageInput struct {
	RefWidthCm     float64   `json:"ref_width_cm"`
	RefHeightCm    float64   `json:"ref_height_cm"`
	RefWidthPx     float64   `json:"ref_width_px" binding:"required"`
	RefHeightPx    float64   `json:"ref_height_px" binding:"required"`
	FacadeWidthPx  float64   `json:"facade_width_px" binding:"required"`
	FacadeHeightPx float64   `json:"facade_height_px" binding:"required"`
	Openings       []Opening `json:"openings"`
}

type MetrageResult struct {
	WidthM       float64 `json:"width_m"`
	HeightM      float64 `json:"height_m"`
	SurfaceM2    float64 `json:"surface_m2"`
	OpeningsM2   float64 `json:"openings_m2"`
	NetSurfaceM2 float64 `json:"net_surface_m2"`
}

// CalculateMetrage converts pixel geometry to real-world surface using the
// calibration reference. The two per-axis pixel densities are averaged as a
// first-order compensation for camera tilt; no homography is attempted.
//
// The net surface is not clamped: an opening measured larger than the facade
// yields a negative net, which lets the caller detect bad input.
func CalculateMetrage(input *MetrageInput) (*MetrageResult, error) {
	if input.RefWidthCm <= 0 || input.RefHeightCm <= 0 {
		return nil, fmt.Errorf("%w: got %.2fcm x %.2fcm", utils.ErrorInvalidCalibration, input.RefWidthCm, input.RefHeightCm)
	}

	pxPerCmWidth := input.RefWidthPx / input.RefWidthCm
	pxPerCmHeight := input.RefHeightPx / input.RefHeightCm
	pxPerCm := (pxPerCmWidth + pxPerCmHeight) / 2
	if pxPerCm <= 0 {
		return nil, fmt.Errorf("%w: reference pixel extents must be positive", utils.ErrorInvalidCalibration)
	}

	widthM := input.FacadeWidthPx / pxPerCm / 100
	heightM := input.FacadeHeightPx / pxPerCm / 100
	surfaceM2 := widthM * heightM

	openingsM2 := 0.0
	for _, opening := range input.Openings {
		openingWidthM := opening.WidthPx / pxPerCm / 100
		openingHeightM := opening.HeightPx / pxPerCm / 100
		openingsM2 += openingWidthM * openingHeightM
	}

	return &MetrageResult{
		WidthM:       round2(widthM),
		HeightM:      round2(heightM),
		SurfaceM2:    round2(surfaceM2),
		OpeningsM2:   round2(openingsM2),
		NetSurfaceM2: round2(surfaceM2 - openingsM2),
	}, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
