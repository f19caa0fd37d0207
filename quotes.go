package main

import (
	"net/http"

	"bitbucket.org/pleinsud/facade_backend/models"
	"github.com/gin-gonic/gin"
)

type createQuoteVersionRequest struct {
	Lines []*models.NewQuoteLine `json:"lines"`
}

func createQuoteVersionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		projectId, ok := parseIdParam(c, "id")
		if !ok {
			return
		}
		var req createQuoteVersionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, err)
			return
		}

		version, err := models.CreateQuoteVersion(c.Request.Context(), projectId, req.Lines)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"data": version})
	}
}

func getQuoteByProjectHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		projectId, ok := parseIdParam(c, "id")
		if !ok {
			return
		}
		quote, err := models.GetQuoteByProject(c.Request.Context(), projectId)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": quote})
	}
}

func getQuoteHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		quoteId, ok := parseIdParam(c, "id")
		if !ok {
			return
		}
		quote, err := models.GetQuote(c.Request.Context(), quoteId)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": quote})
	}
}

func updateQuoteStatusHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		quoteId, ok := parseIdParam(c, "id")
		if !ok {
			return
		}
		var body struct {
			Status string `json:"status" binding:"required"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			respondError(c, err)
			return
		}

		quote, err := models.UpdateQuoteStatus(c.Request.Context(), quoteId, body.Status)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": quote})
	}
}
