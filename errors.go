package main

import (
	"errors"
	"net/http"

	"bitbucket.org/pleinsud/facade_backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// respondError maps domain errors onto HTTP statuses. Anything unmapped is
// treated as a client-visible bad request; persistence outages surface through
// the readiness gate before handlers run.
func respondError(c *gin.Context, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "fields": utils.ProcessValidationErrors(err)})
		return
	}

	status := http.StatusBadRequest
	switch {
	case errors.Is(err, utils.ErrorForbidden):
		status = http.StatusForbidden
	case errors.Is(err, utils.ErrorRecordNotFound):
		status = http.StatusNotFound
	case errors.Is(err, utils.ErrorConflict):
		status = http.StatusConflict
	case errors.Is(err, utils.ErrorInvalidStatus), errors.Is(err, utils.ErrorInvalidCalibration):
		status = http.StatusBadRequest
	}
	// Recorded on the gin context so the error logger emits it with the
	// request's correlation id.
	_ = c.Error(err)
	c.JSON(status, gin.H{"error": err.Error()})
}
