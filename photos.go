package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"path"
	"path/filepath"
	"strings"
	"time"

	"bitbucket.org/pleinsud/facade_backend/config"
	"bitbucket.org/pleinsud/facade_backend/models"
	"bitbucket.org/pleinsud/facade_backend/utils"
	"github.com/disintegration/imaging"
	"github.com/gin-gonic/gin"
)

const maxPhotoSizeBytes int64 = 10 * 1024 * 1024

var photoMimeTypes = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
}

func uploadPhotoHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := config.GetLogger()
		ctx := c.Request.Context()

		facadeId, ok := parseIdParam(c, "id")
		if !ok {
			return
		}
		facade, project, err := models.GetFacadeWithProject(ctx, facadeId)
		if err != nil {
			respondError(c, err)
			return
		}

		fileHeader, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
			return
		}
		if fileHeader.Size > maxPhotoSizeBytes {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file size exceeds 10MB limit"})
			return
		}
		contentType := fileHeader.Header.Get("Content-Type")
		ext, supported := photoMimeTypes[contentType]
		if !supported {
			ext = strings.TrimPrefix(strings.ToLower(filepath.Ext(fileHeader.Filename)), ".")
			if ext != "jpg" && ext != "jpeg" && ext != "png" {
				c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported image type"})
				return
			}
		}

		file, err := fileHeader.Open()
		if err != nil {
			respondError(c, err)
			return
		}
		defer file.Close()
		data, err := io.ReadAll(io.LimitReader(file, maxPhotoSizeBytes+1))
		if err != nil {
			respondError(c, err)
			return
		}
		if int64(len(data)) > maxPhotoSizeBytes {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file size exceeds 10MB limit"})
			return
		}

		img, err := imaging.Decode(bytes.NewReader(data))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file is not a valid image"})
			return
		}
		thumbnail := imaging.Resize(img, 200, 0, imaging.Lanczos)
		var thumbBuf bytes.Buffer
		if err := imaging.Encode(&thumbBuf, thumbnail, imaging.JPEG); err != nil {
			respondError(c, err)
			return
		}

		objectKey := utils.BuildPhotoObjectKey(project.CompanyId, project.ID.String(), facade.ID.String(), ext, time.Now())
		thumbnailKey := thumbnailObjectKey(objectKey)

		if err := utils.UploadObjectToGCS(ctx, objectKey, contentType, bytes.NewReader(data)); err != nil {
			config.LogError(logger, "photos.go", "uploadPhotoHandler", "Upload original", objectKey, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store photo"})
			return
		}
		if err := utils.UploadObjectToGCS(ctx, thumbnailKey, "image/jpeg", bytes.NewReader(thumbBuf.Bytes())); err != nil {
			config.LogError(logger, "photos.go", "uploadPhotoHandler", "Upload thumbnail", thumbnailKey, err)
			_ = utils.DeleteObjectFromGCS(ctx, objectKey)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store thumbnail"})
			return
		}

		photo, err := models.CreatePhoto(ctx, &models.NewPhoto{
			FacadeId:      facade.ID,
			StoragePath:   objectKey,
			ThumbnailPath: thumbnailKey,
			Quality:       c.PostForm("quality"),
		})
		if err != nil {
			// Row creation failed; remove the orphaned objects.
			_ = utils.DeleteObjectFromGCS(ctx, objectKey)
			_ = utils.DeleteObjectFromGCS(ctx, thumbnailKey)
			respondError(c, err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{"data": photoWithURLs(ctx, photo)})
	}
}

func listPhotosHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		facadeId, ok := parseIdParam(c, "id")
		if !ok {
			return
		}
		photos, err := models.GetPhotosByFacade(ctx, facadeId)
		if err != nil {
			respondError(c, err)
			return
		}

		out := make([]gin.H, 0, len(photos))
		for _, photo := range photos {
			out = append(out, photoWithURLs(ctx, photo))
		}
		c.JSON(http.StatusOK, gin.H{"data": out})
	}
}

func deletePhotoHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		id, ok := parseIdParam(c, "id")
		if !ok {
			return
		}
		photo, err := models.DeletePhoto(ctx, id)
		if err != nil {
			respondError(c, err)
			return
		}

		// Storage cleanup after the commit; a failed object delete is logged,
		// not surfaced, since the row is already gone.
		logger := config.GetLogger()
		if err := utils.DeleteObjectFromGCS(ctx, photo.StoragePath); err != nil {
			config.LogError(logger, "photos.go", "deletePhotoHandler", "Delete object", photo.StoragePath, err)
		}
		if photo.ThumbnailPath != "" {
			if err := utils.DeleteObjectFromGCS(ctx, photo.ThumbnailPath); err != nil {
				config.LogError(logger, "photos.go", "deletePhotoHandler", "Delete thumbnail", photo.ThumbnailPath, err)
			}
		}
		c.Status(http.StatusNoContent)
	}
}

// photoWithURLs attaches short-lived signed URLs. When signing is not
// configured (local dev), it falls back to the plain access URL.
func photoWithURLs(ctx context.Context, photo *models.Photo) gin.H {
	url, err := utils.SignDownload(ctx, photo.StoragePath, 15*time.Minute)
	if err != nil {
		url = utils.BuildObjectAccessURL(photo.StoragePath)
	}
	thumbnailURL := ""
	if photo.ThumbnailPath != "" {
		thumbnailURL, err = utils.SignDownload(ctx, photo.ThumbnailPath, 15*time.Minute)
		if err != nil {
			thumbnailURL = utils.BuildObjectAccessURL(photo.ThumbnailPath)
		}
	}
	return gin.H{
		"photo":         photo,
		"url":           url,
		"thumbnail_url": thumbnailURL,
	}
}

func thumbnailObjectKey(objectKey string) string {
	dir := path.Dir(objectKey)
	filename := path.Base(objectKey)
	return path.Join(dir, "thumbnails", filename)
}
