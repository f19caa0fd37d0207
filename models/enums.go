package models

import (
	"fmt"
	"strings"

	"bitbucket.org/pleinsud/facade_backend/utils"
)

// Profile roles
const (
	RoleOwner = "OWNER"
	RoleUser  = "USER"
)

type QuoteStatus string

const (
	QuoteStatusDraft       QuoteStatus = "draft"
	QuoteStatusSent        QuoteStatus = "sent"
	QuoteStatusNegotiation QuoteStatus = "negotiation"
	QuoteStatusAccepted    QuoteStatus = "accepted"
	QuoteStatusRefused     QuoteStatus = "refused"
)

// QuoteStatuses lists every legal status. Transitions are unordered: any
// status may move to any other via an explicit update (accepted/refused are
// not terminal).
var QuoteStatuses = []QuoteStatus{
	QuoteStatusDraft,
	QuoteStatusSent,
	QuoteStatusNegotiation,
	QuoteStatusAccepted,
	QuoteStatusRefused,
}

// ParseQuoteStatus validates membership in the allowed set. The error message
// enumerates the allowed values.
func ParseQuoteStatus(s string) (QuoteStatus, error) {
	for _, status := range QuoteStatuses {
		if s == string(status) {
			return status, nil
		}
	}
	names := make([]string, len(QuoteStatuses))
	for i, status := range QuoteStatuses {
		names[i] = string(status)
	}
	return "", fmt.Errorf("%w: %q, use one of: %s", utils.ErrorInvalidStatus, s, strings.Join(names, ", "))
}

type PhotoQuality string

const (
	PhotoQualityGreen  PhotoQuality = "green"
	PhotoQualityOrange PhotoQuality = "orange"
	PhotoQualityRed    PhotoQuality = "red"
)

func ValidPhotoQuality(q string) bool {
	switch PhotoQuality(q) {
	case PhotoQualityGreen, PhotoQualityOrange, PhotoQualityRed:
		return true
	}
	return false
}

type MetrageRefType string

const (
	MetrageRefTypeAgglo  MetrageRefType = "agglo"
	MetrageRefTypeCustom MetrageRefType = "custom"
)

// Physical dimensions of the agglo block reference object, in centimeters.
// Fixed regardless of caller input.
const (
	AggloWidthCm  = 50.0
	AggloHeightCm = 20.0
)
