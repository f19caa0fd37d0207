package main

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strconv"
	"time"

	"bitbucket.org/pleinsud/facade_backend/config"
	"bitbucket.org/pleinsud/facade_backend/models"
	"bitbucket.org/pleinsud/facade_backend/pdf"
	"bitbucket.org/pleinsud/facade_backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func parseVersionParam(c *gin.Context) (int, bool) {
	version, err := strconv.Atoi(c.Param("version"))
	if err != nil || version < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid version"})
		return 0, false
	}
	return version, true
}

// generateQuotePdfHandler renders one version, stores the document and stamps
// the version with its locator and content hash.
func generateQuotePdfHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := config.GetLogger()
		ctx := c.Request.Context()

		quoteId, ok := parseIdParam(c, "id")
		if !ok {
			return
		}
		versionNumber, ok := parseVersionParam(c)
		if !ok {
			return
		}

		version, err := models.GetQuoteVersion(ctx, quoteId, versionNumber)
		if err != nil {
			respondError(c, err)
			return
		}
		data, project, err := buildQuotePdfData(c, quoteId, version)
		if err != nil {
			respondError(c, err)
			return
		}

		content, err := pdf.QuotePDF(*data)
		if err != nil {
			config.LogError(logger, "pdfs.go", "generateQuotePdfHandler", "Render", version.ID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to render document"})
			return
		}
		sum := sha256.Sum256(content)
		hash := hex.EncodeToString(sum[:])

		objectKey := utils.BuildQuotePdfObjectKey(project.CompanyId, quoteId.String(), version.Version)
		if err := utils.UploadObjectToGCS(ctx, objectKey, "application/pdf", bytes.NewReader(content)); err != nil {
			config.LogError(logger, "pdfs.go", "generateQuotePdfHandler", "Upload", objectKey, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store document"})
			return
		}

		stamped, err := models.StampVersionPdf(ctx, quoteId, version.Version, objectKey, hash)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"data": gin.H{
			"version":  stamped,
			"pdf_path": stamped.PdfPath,
			"pdf_hash": stamped.PdfHash,
		}})
	}
}

func getQuotePdfHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		quoteId, ok := parseIdParam(c, "id")
		if !ok {
			return
		}
		versionNumber, ok := parseVersionParam(c)
		if !ok {
			return
		}

		version, err := models.GetQuoteVersion(ctx, quoteId, versionNumber)
		if err != nil {
			respondError(c, err)
			return
		}
		if version.PdfPath == "" {
			c.JSON(http.StatusNotFound, gin.H{"error": "no document rendered for this version"})
			return
		}

		url, err := utils.SignDownload(ctx, version.PdfPath, 15*time.Minute)
		if err != nil {
			url = utils.BuildObjectAccessURL(version.PdfPath)
		}
		c.JSON(http.StatusOK, gin.H{"data": gin.H{
			"url":      url,
			"pdf_hash": version.PdfHash,
		}})
	}
}

// verifyQuotePdfHandler re-downloads the stored document and compares its
// hash against the one stamped at render time.
func verifyQuotePdfHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		quoteId, ok := parseIdParam(c, "id")
		if !ok {
			return
		}
		versionNumber, ok := parseVersionParam(c)
		if !ok {
			return
		}

		version, err := models.GetQuoteVersion(ctx, quoteId, versionNumber)
		if err != nil {
			respondError(c, err)
			return
		}
		if version.PdfPath == "" || version.PdfHash == "" {
			c.JSON(http.StatusNotFound, gin.H{"error": "no document rendered for this version"})
			return
		}

		content, err := utils.DownloadObjectFromGCS(ctx, version.PdfPath)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "stored document is missing"})
			return
		}
		sum := sha256.Sum256(content)
		actual := hex.EncodeToString(sum[:])

		c.JSON(http.StatusOK, gin.H{"data": gin.H{
			"valid":         actual == version.PdfHash,
			"expected_hash": version.PdfHash,
			"actual_hash":   actual,
		}})
	}
}

func buildQuotePdfData(c *gin.Context, quoteId uuid.UUID, version *models.QuoteVersion) (*pdf.QuoteData, *models.Project, error) {
	ctx := c.Request.Context()

	quote, err := models.GetQuote(ctx, quoteId)
	if err != nil {
		return nil, nil, err
	}
	project, err := models.GetProject(ctx, quote.ProjectId)
	if err != nil {
		return nil, nil, err
	}
	customer, err := models.GetCustomer(ctx, project.CustomerId)
	if err != nil {
		return nil, nil, err
	}
	company, err := models.GetCompany(ctx, project.CompanyId)
	if err != nil {
		return nil, nil, err
	}
	subscription, err := models.GetSubscription(ctx, project.CompanyId)
	if err != nil {
		return nil, nil, err
	}

	lines := make([]pdf.QuoteLine, 0, len(version.Lines))
	for _, l := range version.Lines {
		lines = append(lines, pdf.QuoteLine{
			Label:     l.Label,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			Total:     l.Total,
		})
	}

	return &pdf.QuoteData{
		CompanyName:  company.Name,
		CustomerName: customer.Name,
		ProjectName:  project.Name,
		Version:      version.Version,
		Status:       string(quote.Status),
		Lines:        lines,
		Total:        version.Total,
		Trial:        subscription.IsTrial(),
	}, project, nil
}
