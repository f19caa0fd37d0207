package main

import (
	"net/http"

	"bitbucket.org/pleinsud/facade_backend/models"
	"bitbucket.org/pleinsud/facade_backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func parseIdParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}

func createCustomerHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewCustomer
		if err := c.ShouldBindJSON(&input); err != nil {
			respondError(c, err)
			return
		}

		customer, err := models.CreateCustomer(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"data": customer})
	}
}

func listCustomersHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		companyId, _ := utils.GetCompanyIdFromContext(ctx)

		customers, err := models.GetCustomers(ctx, companyId)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": customers})
	}
}

func getCustomerHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseIdParam(c, "id")
		if !ok {
			return
		}
		customer, err := models.GetCustomer(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": customer})
	}
}

func updateCustomerHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseIdParam(c, "id")
		if !ok {
			return
		}
		var input models.UpdateCustomerInput
		if err := c.ShouldBindJSON(&input); err != nil {
			respondError(c, err)
			return
		}

		customer, err := models.UpdateCustomer(c.Request.Context(), id, &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": customer})
	}
}

func deleteCustomerHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseIdParam(c, "id")
		if !ok {
			return
		}
		if err := models.DeleteCustomer(c.Request.Context(), id); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
