package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/pleinsud/facade_backend/config"
	"bitbucket.org/pleinsud/facade_backend/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Company is the tenant root. Every other entity is owned by exactly one
// company, directly or through its parent chain. Companies are never deleted.
type Company struct {
	ID        uuid.UUID `gorm:"type:char(36);primary_key" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name" binding:"required"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

type NewCompany struct {
	Name string `json:"name" binding:"required"`
}

func GetCompany(ctx context.Context, companyId string) (*Company, error) {
	db := config.GetDB()
	var company Company
	err := db.WithContext(ctx).First(&company, "id = ?", companyId).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrorRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &company, nil
}

// UpdateCompany renames the caller's own company. OWNER-only; the role check
// lives here so every surface (REST, seeders) enforces it.
func UpdateCompany(ctx context.Context, input *NewCompany) (*Company, error) {
	companyId, ok := utils.GetCompanyIdFromContext(ctx)
	if !ok || companyId == "" {
		return nil, errors.New("company id is required")
	}
	userId, _ := utils.GetUserIdFromContext(ctx)
	role, _ := utils.GetRoleFromContext(ctx)
	if !IsOwner(role) {
		return nil, utils.ErrorForbidden
	}

	company, err := GetCompany(ctx, companyId)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	tx := db.Begin()

	if err := tx.WithContext(ctx).Model(company).Update("name", input.Name).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := RecordAudit(tx, companyId, userId, "Updated company name to "+input.Name); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	company.Name = input.Name
	return company, nil
}
