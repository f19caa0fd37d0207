package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bitbucket.org/pleinsud/facade_backend/config"
	"bitbucket.org/pleinsud/facade_backend/utils"
	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Profile maps an identity-provider user id to a company and role.
// The id is the external user id, not generated here.
type Profile struct {
	ID        string    `gorm:"type:char(36);primary_key" json:"id"`
	CompanyId string    `gorm:"type:char(36);index;not null" json:"company_id"`
	Role      string    `gorm:"type:enum('OWNER','USER');not null" json:"role"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// GetProfile resolves an external user id to its company and role. It runs
// before the tenant is known, so the request context carries no company id
// yet and the tenant guard does not apply.
func GetProfile(ctx context.Context, userId string) (*Profile, error) {
	db := config.GetDB()
	var profile Profile
	err := db.WithContext(ctx).First(&profile, "id = ?", userId).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrorRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

type OnboardingInput struct {
	CompanyName   string `json:"company_name" binding:"required"`
	AcceptedTerms bool   `json:"accepted_terms"`
}

type OnboardingResult struct {
	CompanyId uuid.UUID `json:"company_id"`
	ProfileId string    `json:"profile_id"`
}

// Onboard creates the company, its OWNER profile for the authenticated user
// and a TRIAL subscription, exactly once per user. A second call fails with
// ErrorConflict.
func Onboard(ctx context.Context, userId string, input *OnboardingInput) (*OnboardingResult, error) {
	if !input.AcceptedTerms {
		return nil, errors.New("terms of use must be accepted")
	}

	db := config.GetDB()

	var existing Profile
	err := db.WithContext(ctx).First(&existing, "id = ?", userId).Error
	if err == nil {
		return nil, utils.ErrorConflict
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	company := Company{
		ID:   uuid.New(),
		Name: input.CompanyName,
	}
	profile := Profile{
		ID:        userId,
		CompanyId: company.ID.String(),
		Role:      RoleOwner,
	}
	now := time.Now()
	subscription := Subscription{
		CompanyId: company.ID.String(),
		PlanId:    PlanTrial,
		Status:    "trial",
		StartedAt: &now,
	}

	tx := db.Begin()
	if err := tx.WithContext(ctx).Create(&company).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.WithContext(ctx).Create(&profile).Error; err != nil {
		tx.Rollback()
		// The exists check above races with a concurrent onboarding for the
		// same user; the profile primary key settles it.
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry {
			return nil, fmt.Errorf("%w: user %s is already onboarded", utils.ErrorConflict, userId)
		}
		return nil, err
	}
	if err := tx.WithContext(ctx).Create(&subscription).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := RecordAudit(tx, company.ID.String(), userId, "Created company: "+input.CompanyName); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	return &OnboardingResult{CompanyId: company.ID, ProfileId: userId}, nil
}
