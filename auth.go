package main

import (
	"net/http"

	"bitbucket.org/pleinsud/facade_backend/models"
	"bitbucket.org/pleinsud/facade_backend/utils"
	"github.com/gin-gonic/gin"
)

func onboardingHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		userId, ok := utils.GetUserIdFromContext(ctx)
		if !ok || userId == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		var input models.OnboardingInput
		if err := c.ShouldBindJSON(&input); err != nil {
			respondError(c, err)
			return
		}

		result, err := models.Onboard(ctx, userId, &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"data": result})
	}
}

func meHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		userId, _ := utils.GetUserIdFromContext(ctx)
		email, _ := utils.GetUserEmailFromContext(ctx)
		companyId, _ := utils.GetCompanyIdFromContext(ctx)
		role, _ := utils.GetRoleFromContext(ctx)

		company, err := models.GetCompany(ctx, companyId)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": gin.H{
			"user_id": userId,
			"email":   email,
			"role":    role,
			"company": company,
		}})
	}
}
