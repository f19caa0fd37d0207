package main

import (
	"net/http"

	"bitbucket.org/pleinsud/facade_backend/models"
	"bitbucket.org/pleinsud/facade_backend/utils"
	"github.com/gin-gonic/gin"
)

func createProjectHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewProject
		if err := c.ShouldBindJSON(&input); err != nil {
			respondError(c, err)
			return
		}

		project, err := models.CreateProject(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"data": project})
	}
}

func listProjectsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		companyId, _ := utils.GetCompanyIdFromContext(ctx)

		projects, err := models.GetProjects(ctx, companyId)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": projects})
	}
}

func getProjectHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseIdParam(c, "id")
		if !ok {
			return
		}
		project, err := models.GetProject(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": project})
	}
}

func updateProjectHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseIdParam(c, "id")
		if !ok {
			return
		}
		var input models.UpdateProjectInput
		if err := c.ShouldBindJSON(&input); err != nil {
			respondError(c, err)
			return
		}

		project, err := models.UpdateProject(c.Request.Context(), id, &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": project})
	}
}

func deleteProjectHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseIdParam(c, "id")
		if !ok {
			return
		}
		if err := models.DeleteProject(c.Request.Context(), id); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
