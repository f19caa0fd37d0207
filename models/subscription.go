package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/pleinsud/facade_backend/config"
	"gorm.io/gorm"
)

const PlanTrial = "TRIAL"

// Plan is a subscription tier. The core only looks plans up; enforcement of
// limits is out of scope.
type Plan struct {
	ID          string `gorm:"size:50;primary_key" json:"id"`
	MaxProjects int    `json:"max_projects"`
	MaxUsers    int    `json:"max_users"`
}

type Subscription struct {
	CompanyId string     `gorm:"type:char(36);primary_key" json:"company_id"`
	PlanId    string     `gorm:"size:50" json:"plan_id"`
	Status    string     `gorm:"size:50" json:"status"`
	StartedAt *time.Time `json:"started_at"`
}

func subscriptionCacheKey(companyId string) string {
	return "subscription:" + companyId
}

// GetSubscription returns the company's subscription, defaulting to TRIAL
// when none exists (companies created before billing was introduced).
// Subscriptions change rarely; lookups run on every PDF render, so results
// are cached in redis for a few minutes.
func GetSubscription(ctx context.Context, companyId string) (*Subscription, error) {
	var cached Subscription
	if found, err := config.GetRedisObject(subscriptionCacheKey(companyId), &cached); err == nil && found {
		return &cached, nil
	}

	db := config.GetDB()
	var sub Subscription
	err := db.WithContext(ctx).First(&sub, "company_id = ?", companyId).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		sub = Subscription{CompanyId: companyId, PlanId: PlanTrial, Status: "trial"}
	} else if err != nil {
		return nil, err
	}

	_ = config.SetRedisObject(subscriptionCacheKey(companyId), sub, 5*time.Minute)
	return &sub, nil
}

// IsTrial reports whether rendered documents must carry the trial watermark.
func (s *Subscription) IsTrial() bool {
	return s == nil || s.PlanId == PlanTrial
}
