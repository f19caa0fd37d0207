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

// MetrageRef is the calibration reference for a project's measurements: the
// real-world dimensions of a known object visible in the photos.
type MetrageRef struct {
	ID        uuid.UUID `gorm:"type:char(36);primary_key" json:"id"`
	ProjectId uuid.UUID `gorm:"type:char(36);index;not null" json:"project_id"`
	Type      string    `gorm:"size:20" json:"type"`
	WidthCm   float64   `json:"width_cm"`
	HeightCm  float64   `json:"height_cm"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

type NewMetrageRef struct {
	ProjectId uuid.UUID `json:"project_id" binding:"required"`
	Type      string    `json:"type" binding:"required"`
	WidthCm   float64   `json:"width_cm"`
	HeightCm  float64   `json:"height_cm"`
}

// normalizeMetrageRef resolves the dimensions to store for a reference type.
// For the agglo block type the dimensions are those of the physical object;
// caller-supplied values are overwritten, not defaulted. Custom references
// require explicit positive dimensions.
func normalizeMetrageRef(input *NewMetrageRef) error {
	switch MetrageRefType(input.Type) {
	case MetrageRefTypeAgglo:
		input.WidthCm = AggloWidthCm
		input.HeightCm = AggloHeightCm
	case MetrageRefTypeCustom:
		if input.WidthCm <= 0 || input.HeightCm <= 0 {
			return utils.ErrorInvalidCalibration
		}
	default:
		return errors.New("invalid reference type: " + input.Type + ", use one of: agglo, custom")
	}
	return nil
}

// CreateMetrageRef stores a calibration reference for a project.
func CreateMetrageRef(ctx context.Context, input *NewMetrageRef) (*MetrageRef, error) {
	if err := normalizeMetrageRef(input); err != nil {
		return nil, err
	}

	project, err := GetProject(ctx, input.ProjectId)
	if err != nil {
		return nil, err
	}
	userId, _ := utils.GetUserIdFromContext(ctx)

	ref := MetrageRef{
		ID:        uuid.New(),
		ProjectId: project.ID,
		Type:      input.Type,
		WidthCm:   input.WidthCm,
		HeightCm:  input.HeightCm,
	}

	db := config.GetDB()
	tx := db.Begin()
	if err := tx.WithContext(ctx).Create(&ref).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := RecordAudit(tx, project.CompanyId, userId, "Created measurement reference for project "+project.Name); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	return &ref, nil
}

// GetMetrageRefByProject returns the most recent calibration for the project.
func GetMetrageRefByProject(ctx context.Context, projectId uuid.UUID) (*MetrageRef, error) {
	if _, err := GetProject(ctx, projectId); err != nil {
		return nil, err
	}

	db := config.GetDB()
	var ref MetrageRef
	err := db.WithContext(ctx).Where("project_id = ?", projectId).Order("created_at DESC").First(&ref).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrorRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ref, nil
}

// GetMetrageRefByPhoto resolves the calibration for a measurement taken on a
// photo: photo, then its facade, then the owning project's reference.
func GetMetrageRefByPhoto(ctx context.Context, photoId uuid.UUID) (*MetrageRef, error) {
	photo, err := GetPhoto(ctx, photoId)
	if err != nil {
		return nil, err
	}
	_, project, err := GetFacadeWithProject(ctx, photo.FacadeId)
	if err != nil {
		return nil, err
	}
	return GetMetrageRefByProject(ctx, project.ID)
}
