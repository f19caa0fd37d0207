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

// Facade is one face of a job site, identified by a short code (A, B, C, D).
// DuplicatedFrom records the source when a facade was created by duplication.
// Duplication always inserts a new row pointing at an existing one, so the
// lineage is a forest; cycles cannot be built.
type Facade struct {
	ID             uuid.UUID  `gorm:"type:char(36);primary_key" json:"id"`
	ProjectId      uuid.UUID  `gorm:"type:char(36);index;not null" json:"project_id"`
	Code           string     `gorm:"size:10" json:"code"`
	DuplicatedFrom *uuid.UUID `gorm:"type:char(36)" json:"duplicated_from"`
	CreatedAt      time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

type NewFacade struct {
	ProjectId uuid.UUID `json:"project_id" binding:"required"`
	Code      string    `json:"code" binding:"required"`
}

type DuplicateFacadeInput struct {
	SourceFacadeId uuid.UUID `json:"source_facade_id" binding:"required"`
	TargetCode     string    `json:"target_code" binding:"required"`
}

func CreateFacade(ctx context.Context, input *NewFacade) (*Facade, error) {
	// Authorizes via the owning project.
	project, err := GetProject(ctx, input.ProjectId)
	if err != nil {
		return nil, err
	}
	userId, _ := utils.GetUserIdFromContext(ctx)

	facade := Facade{
		ID:        uuid.New(),
		ProjectId: project.ID,
		Code:      input.Code,
	}

	db := config.GetDB()
	tx := db.Begin()
	if err := tx.WithContext(ctx).Create(&facade).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := RecordAudit(tx, project.CompanyId, userId, "Created facade "+input.Code+" on project "+project.Name); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	return &facade, nil
}

// DuplicateFacade creates a new facade on the same project, keeping a
// back-reference to its source. The new row gets a fresh id, so
// duplicated_from can never point at the facade itself.
func DuplicateFacade(ctx context.Context, input *DuplicateFacadeInput) (*Facade, error) {
	source, project, err := GetFacadeWithProject(ctx, input.SourceFacadeId)
	if err != nil {
		return nil, err
	}
	userId, _ := utils.GetUserIdFromContext(ctx)

	sourceId := source.ID
	duplicated := Facade{
		ID:             uuid.New(),
		ProjectId:      source.ProjectId,
		Code:           input.TargetCode,
		DuplicatedFrom: &sourceId,
	}

	db := config.GetDB()
	tx := db.Begin()
	if err := tx.WithContext(ctx).Create(&duplicated).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := RecordAudit(tx, project.CompanyId, userId, "Duplicated facade "+source.Code+" as "+input.TargetCode); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	return &duplicated, nil
}

func GetFacadesByProject(ctx context.Context, projectId uuid.UUID) ([]*Facade, error) {
	if _, err := GetProject(ctx, projectId); err != nil {
		return nil, err
	}

	db := config.GetDB()
	var facades []*Facade
	if err := db.WithContext(ctx).Where("project_id = ?", projectId).Order("created_at ASC").Find(&facades).Error; err != nil {
		return nil, err
	}
	return facades, nil
}

// GetFacadeLineage walks duplicated_from ancestors, nearest first. The walk
// is bounded only by the chain itself; rows always point at strictly older
// rows, so it terminates.
func GetFacadeLineage(ctx context.Context, facadeId uuid.UUID) ([]*Facade, error) {
	facade, _, err := GetFacadeWithProject(ctx, facadeId)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	var lineage []*Facade
	current := facade
	for current.DuplicatedFrom != nil {
		var parent Facade
		err := db.WithContext(ctx).First(&parent, "id = ?", *current.DuplicatedFrom).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			break
		}
		if err != nil {
			return nil, err
		}
		lineage = append(lineage, &parent)
		current = &parent
	}
	return lineage, nil
}

// GetFacadeWithProject loads a facade and its project, authorizing against
// the caller's company via the project's owning company.
func GetFacadeWithProject(ctx context.Context, facadeId uuid.UUID) (*Facade, *Project, error) {
	db := config.GetDB()
	var facade Facade
	err := db.WithContext(ctx).First(&facade, "id = ?", facadeId).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, utils.ErrorRecordNotFound
	}
	if err != nil {
		return nil, nil, err
	}

	project, err := GetProject(ctx, facade.ProjectId)
	if err != nil {
		return nil, nil, err
	}
	return &facade, project, nil
}
