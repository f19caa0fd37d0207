package main

import (
	"net/http"
	"strconv"

	"bitbucket.org/pleinsud/facade_backend/models"
	"bitbucket.org/pleinsud/facade_backend/utils"
	"github.com/gin-gonic/gin"
)

func getCompanyHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		companyId, _ := utils.GetCompanyIdFromContext(ctx)

		company, err := models.GetCompany(ctx, companyId)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": company})
	}
}

func updateCompanyHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewCompany
		if err := c.ShouldBindJSON(&input); err != nil {
			respondError(c, err)
			return
		}

		company, err := models.UpdateCompany(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": company})
	}
}

func getSubscriptionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		companyId, _ := utils.GetCompanyIdFromContext(ctx)

		sub, err := models.GetSubscription(ctx, companyId)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": sub})
	}
}

func auditLogsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		companyId, _ := utils.GetCompanyIdFromContext(ctx)

		limit := 100
		if v := c.Query("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 1000 {
				limit = n
			}
		}

		logs, err := models.GetAuditLogs(ctx, companyId, limit)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": logs})
	}
}
