package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/pleinsud/facade_backend/config"
	"bitbucket.org/pleinsud/facade_backend/utils"
	"github.com/google/uuid"
)

// Photo is a picture of a facade stored in object storage. StoragePath is the
// object key, not a URL; access URLs are signed per request.
type Photo struct {
	ID            uuid.UUID `gorm:"type:char(36);primary_key" json:"id"`
	FacadeId      uuid.UUID `gorm:"type:char(36);index;not null" json:"facade_id"`
	StoragePath   string    `gorm:"size:512" json:"storage_path"`
	ThumbnailPath string    `gorm:"size:512" json:"thumbnail_path"`
	Quality       string    `gorm:"size:10" json:"quality"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
}

type NewPhoto struct {
	FacadeId      uuid.UUID
	StoragePath   string
	ThumbnailPath string
	Quality       string
}

// CreatePhoto records an uploaded object against a facade. The object itself
// is already in storage by the time this runs; on failure the handler removes
// the orphaned object.
func CreatePhoto(ctx context.Context, input *NewPhoto) (*Photo, error) {
	if input.Quality != "" && !ValidPhotoQuality(input.Quality) {
		return nil, errors.New("invalid photo quality: " + input.Quality)
	}

	_, project, err := GetFacadeWithProject(ctx, input.FacadeId)
	if err != nil {
		return nil, err
	}
	userId, _ := utils.GetUserIdFromContext(ctx)

	photo := Photo{
		ID:            uuid.New(),
		FacadeId:      input.FacadeId,
		StoragePath:   input.StoragePath,
		ThumbnailPath: input.ThumbnailPath,
		Quality:       input.Quality,
	}

	db := config.GetDB()
	tx := db.Begin()
	if err := tx.WithContext(ctx).Create(&photo).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := RecordAudit(tx, project.CompanyId, userId, "Uploaded photo for project "+project.Name); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	return &photo, nil
}

func GetPhotosByFacade(ctx context.Context, facadeId uuid.UUID) ([]*Photo, error) {
	if _, _, err := GetFacadeWithProject(ctx, facadeId); err != nil {
		return nil, err
	}

	db := config.GetDB()
	var photos []*Photo
	if err := db.WithContext(ctx).Where("facade_id = ?", facadeId).Order("created_at ASC").Find(&photos).Error; err != nil {
		return nil, err
	}
	return photos, nil
}

// GetPhoto resolves the photo's owning company through facade and project
// before returning it.
func GetPhoto(ctx context.Context, id uuid.UUID) (*Photo, error) {
	// Photo rows carry no company_id of their own.
	photo, err := utils.FetchSingleModel[Photo](ctx, id)
	if err != nil {
		return nil, err
	}
	if _, _, err := GetFacadeWithProject(ctx, photo.FacadeId); err != nil {
		return nil, err
	}
	return photo, nil
}

// DeletePhoto removes the row; the handler deletes the storage objects after
// the commit so a failed delete never loses the row.
func DeletePhoto(ctx context.Context, id uuid.UUID) (*Photo, error) {
	photo, err := GetPhoto(ctx, id)
	if err != nil {
		return nil, err
	}
	_, project, err := GetFacadeWithProject(ctx, photo.FacadeId)
	if err != nil {
		return nil, err
	}
	userId, _ := utils.GetUserIdFromContext(ctx)

	db := config.GetDB()
	tx := db.Begin()
	if err := tx.WithContext(ctx).Delete(photo).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := RecordAudit(tx, project.CompanyId, userId, "Deleted photo from project "+project.Name); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return photo, nil
}
