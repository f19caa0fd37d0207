package main

import (
	"net/http"

	"bitbucket.org/pleinsud/facade_backend/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func createMetrageRefHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		projectId, ok := parseIdParam(c, "id")
		if !ok {
			return
		}
		var body struct {
			Type     string  `json:"type" binding:"required"`
			WidthCm  float64 `json:"width_cm"`
			HeightCm float64 `json:"height_cm"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			respondError(c, err)
			return
		}

		ref, err := models.CreateMetrageRef(c.Request.Context(), &models.NewMetrageRef{
			ProjectId: projectId,
			Type:      body.Type,
			WidthCm:   body.WidthCm,
			HeightCm:  body.HeightCm,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"data": ref})
	}
}

func getMetrageRefHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		projectId, ok := parseIdParam(c, "id")
		if !ok {
			return
		}
		ref, err := models.GetMetrageRefByProject(c.Request.Context(), projectId)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": ref})
	}
}

type calculateMetrageRequest struct {
	PhotoId   *uuid.UUID `json:"photo_id"`
	ProjectId *uuid.UUID `json:"project_id"`
	models.MetrageInput
}

func calculateMetrageHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req calculateMetrageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, err)
			return
		}

		// Without explicit reference dimensions, resolve the stored
		// calibration: through the measured photo's facade and project when a
		// photo is given, or directly from the project.
		if req.RefWidthCm == 0 && req.RefHeightCm == 0 {
			var ref *models.MetrageRef
			var err error
			switch {
			case req.PhotoId != nil:
				ref, err = models.GetMetrageRefByPhoto(c.Request.Context(), *req.PhotoId)
			case req.ProjectId != nil:
				ref, err = models.GetMetrageRefByProject(c.Request.Context(), *req.ProjectId)
			}
			if err != nil {
				respondError(c, err)
				return
			}
			if ref != nil {
				req.RefWidthCm = ref.WidthCm
				req.RefHeightCm = ref.HeightCm
			}
		}

		result, err := models.CalculateMetrage(&req.MetrageInput)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": result})
	}
}
