package main

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"bitbucket.org/pleinsud/facade_backend/models"
	"bitbucket.org/pleinsud/facade_backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

// auditLogsExportHandler streams the company's audit trail as a spreadsheet.
func auditLogsExportHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		companyId, _ := utils.GetCompanyIdFromContext(ctx)

		limit := 1000
		if v := c.Query("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 10000 {
				limit = n
			}
		}

		logs, err := models.GetAuditLogs(ctx, companyId, limit)
		if err != nil {
			respondError(c, err)
			return
		}

		f := excelize.NewFile()
		if _, err := f.NewSheet("Sheet1"); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build export"})
			return
		}

		f.SetCellValue("Sheet1", "A1", "Date")
		f.SetCellValue("Sheet1", "B1", "User")
		f.SetCellValue("Sheet1", "C1", "Action")

		for i, entry := range logs {
			f.SetCellValue("Sheet1", "A"+fmt.Sprint(i+2), entry.CreatedAt.Format(time.RFC3339))
			f.SetCellValue("Sheet1", "B"+fmt.Sprint(i+2), entry.UserId)
			f.SetCellValue("Sheet1", "C"+fmt.Sprint(i+2), entry.Action)
		}

		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Disposition", "attachment; filename=audit-logs.xlsx")
		if err := f.Write(c.Writer); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to write export"})
		}
	}
}
