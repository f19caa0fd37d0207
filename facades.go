package main

import (
	"net/http"

	"bitbucket.org/pleinsud/facade_backend/models"
	"github.com/gin-gonic/gin"
)

func createFacadeHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewFacade
		if err := c.ShouldBindJSON(&input); err != nil {
			respondError(c, err)
			return
		}

		facade, err := models.CreateFacade(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"data": facade})
	}
}

func listFacadesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		projectId, ok := parseIdParam(c, "id")
		if !ok {
			return
		}
		facades, err := models.GetFacadesByProject(c.Request.Context(), projectId)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": facades})
	}
}

func duplicateFacadeHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		sourceId, ok := parseIdParam(c, "id")
		if !ok {
			return
		}
		var body struct {
			TargetCode string `json:"target_code" binding:"required"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			respondError(c, err)
			return
		}

		facade, err := models.DuplicateFacade(c.Request.Context(), &models.DuplicateFacadeInput{
			SourceFacadeId: sourceId,
			TargetCode:     body.TargetCode,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"data": facade})
	}
}

func facadeLineageHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		facadeId, ok := parseIdParam(c, "id")
		if !ok {
			return
		}
		lineage, err := models.GetFacadeLineage(c.Request.Context(), facadeId)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": lineage})
	}
}
