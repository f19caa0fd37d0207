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

// Project is a job site. Its customer must belong to the same company; that
// cross-reference is validated on create, before any row is written. Each
// project owns exactly one Quote, created in the same transaction.
type Project struct {
	ID         uuid.UUID `gorm:"type:char(36);primary_key" json:"id"`
	CompanyId  string    `gorm:"type:char(36);index;not null" json:"company_id"`
	CustomerId uuid.UUID `gorm:"type:char(36);index;not null" json:"customer_id"`
	Name       string    `gorm:"size:255" json:"name"`
	Status     string    `gorm:"size:50;default:draft" json:"status"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

type NewProject struct {
	CustomerId uuid.UUID `json:"customer_id" binding:"required"`
	Name       string    `json:"name" binding:"required"`
}

type UpdateProjectInput struct {
	Name   *string `json:"name"`
	Status *string `json:"status"`
}

// CreateProject creates the job site and its quote as one unit. The quote
// starts at draft with current_version 0 so the first snapshot takes number 1
// and version numbers stay dense.
func CreateProject(ctx context.Context, input *NewProject) (*Project, error) {
	companyId, ok := utils.GetCompanyIdFromContext(ctx)
	if !ok || companyId == "" {
		return nil, errors.New("company id is required")
	}
	userId, _ := utils.GetUserIdFromContext(ctx)

	// The referenced customer must exist AND belong to the caller's company.
	if err := utils.ValidateResourceId[Customer](ctx, companyId, input.CustomerId); err != nil {
		return nil, err
	}

	project := Project{
		ID:         uuid.New(),
		CompanyId:  companyId,
		CustomerId: input.CustomerId,
		Name:       input.Name,
		Status:     "draft",
	}
	quote := Quote{
		ID:             uuid.New(),
		ProjectId:      project.ID,
		Status:         QuoteStatusDraft,
		CurrentVersion: 0,
	}

	db := config.GetDB()
	tx := db.Begin()
	if err := tx.WithContext(ctx).Create(&project).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.WithContext(ctx).Create(&quote).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := RecordAudit(tx, companyId, userId, "Created project: "+input.Name); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	return &project, nil
}

func GetProjects(ctx context.Context, companyId string) ([]*Project, error) {
	return utils.FetchAllModels[Project](ctx, companyId)
}

// GetProject loads by id and authorizes against the caller's company.
func GetProject(ctx context.Context, id uuid.UUID) (*Project, error) {
	companyId, _ := utils.GetCompanyIdFromContext(ctx)

	db := config.GetDB()
	var project Project
	err := db.WithContext(ctx).First(&project, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrorRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := CheckCompanyAccess(project.CompanyId, companyId); err != nil {
		return nil, err
	}
	return &project, nil
}

func UpdateProject(ctx context.Context, id uuid.UUID, input *UpdateProjectInput) (*Project, error) {
	project, err := GetProject(ctx, id)
	if err != nil {
		return nil, err
	}
	userId, _ := utils.GetUserIdFromContext(ctx)

	project.Name = utils.DereferencePtr(input.Name, project.Name)
	project.Status = utils.DereferencePtr(input.Status, project.Status)

	db := config.GetDB()
	tx := db.Begin()
	if err := tx.WithContext(ctx).Save(project).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := RecordAudit(tx, project.CompanyId, userId, "Updated project: "+project.Name); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	return project, nil
}

func DeleteProject(ctx context.Context, id uuid.UUID) error {
	project, err := GetProject(ctx, id)
	if err != nil {
		return err
	}
	userId, _ := utils.GetUserIdFromContext(ctx)

	db := config.GetDB()
	tx := db.Begin()
	if err := tx.WithContext(ctx).Delete(project).Error; err != nil {
		tx.Rollback()
		return err
	}
	if err := RecordAudit(tx, project.CompanyId, userId, "Deleted project: "+project.Name); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit().Error
}
