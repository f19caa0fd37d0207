package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bitbucket.org/pleinsud/facade_backend/config"
	"bitbucket.org/pleinsud/facade_backend/utils"
	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Quote is the single price proposal of a project. It carries the lifecycle
// status and the version counter; the priced content lives in immutable
// QuoteVersion snapshots.
type Quote struct {
	ID             uuid.UUID      `gorm:"type:char(36);primary_key" json:"id"`
	ProjectId      uuid.UUID      `gorm:"type:char(36);uniqueIndex;not null" json:"project_id"`
	Status         QuoteStatus    `gorm:"size:50;default:draft" json:"status"`
	CurrentVersion int            `gorm:"not null;default:0" json:"current_version"`
	CreatedAt      time.Time      `gorm:"autoCreateTime" json:"created_at"`
	Versions       []QuoteVersion `gorm:"foreignKey:QuoteId" json:"versions"`
}

// QuoteVersion is an immutable snapshot. Version numbers are dense from 1;
// the unique index on (quote_id, version) is the last line of defense against
// two writers computing the same number.
type QuoteVersion struct {
	ID        uuid.UUID       `gorm:"type:char(36);primary_key" json:"id"`
	QuoteId   uuid.UUID       `gorm:"type:char(36);not null;uniqueIndex:idx_quote_version" json:"quote_id"`
	Version   int             `gorm:"not null;uniqueIndex:idx_quote_version" json:"version"`
	Total     decimal.Decimal `gorm:"type:decimal(20,4)" json:"total"`
	PdfPath   string          `gorm:"size:512" json:"pdf_path"`
	PdfHash   string          `gorm:"size:64" json:"pdf_hash"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
	Lines     []QuoteLine     `gorm:"foreignKey:QuoteVersionId" json:"lines"`
}

// QuoteLine keeps its place in the version through Position. All lines of a
// version are inserted in one batch and share a created_at, so the timestamp
// cannot order them.
type QuoteLine struct {
	ID             uuid.UUID       `gorm:"type:char(36);primary_key" json:"id"`
	QuoteVersionId uuid.UUID       `gorm:"type:char(36);index;not null" json:"quote_version_id"`
	Position       int             `gorm:"not null;default:0" json:"position"`
	Label          string          `gorm:"size:255" json:"label"`
	Quantity       decimal.Decimal `gorm:"type:decimal(20,4)" json:"quantity"`
	UnitPrice      decimal.Decimal `gorm:"type:decimal(20,4)" json:"unit_price"`
	Total          decimal.Decimal `gorm:"type:decimal(20,4)" json:"total"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

type NewQuoteLine struct {
	Label     string          `json:"label" binding:"required"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

const mysqlDuplicateEntry = 1062

// CreateQuoteVersion snapshots the submitted lines as the next version of the
// project's quote. Line and version totals use exact decimal arithmetic; an
// empty line list is legal and yields a version with total 0.
//
// Concurrent calls for the same quote are serialized by a redis lock around
// the read-increment-write plus a row lock on the quote inside the
// transaction. A writer that still collides on (quote_id, version) gets
// ErrorConflict and must retry.
func CreateQuoteVersion(ctx context.Context, projectId uuid.UUID, lines []*NewQuoteLine) (*QuoteVersion, error) {
	logger := config.GetLogger()
	project, err := GetProject(ctx, projectId)
	if err != nil {
		return nil, err
	}
	userId, _ := utils.GetUserIdFromContext(ctx)

	db := config.GetDB()
	quote, err := fetchOrCreateQuote(ctx, db, project.ID)
	if err != nil {
		return nil, err
	}

	lock, err := utils.ObtainQuoteLock(ctx, quote.ID.String(), "models", "CreateQuoteVersion")
	if err != nil {
		return nil, err
	}
	defer lock.Release(context.Background())

	tx := db.Begin()

	var locked Quote
	if err := tx.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&locked, "id = ?", quote.ID).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	newVersion := locked.CurrentVersion + 1
	version := QuoteVersion{
		ID:      uuid.New(),
		QuoteId: locked.ID,
		Version: newVersion,
	}
	version.Lines, version.Total = buildVersionLines(version.ID, lines)

	if err := tx.WithContext(ctx).Create(&version).Error; err != nil {
		tx.Rollback()
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry {
			return nil, fmt.Errorf("%w: version %d already exists for quote %s", utils.ErrorConflict, newVersion, locked.ID)
		}
		config.LogError(logger, "models", "CreateQuoteVersion", "Create version", locked.ID, err)
		return nil, err
	}
	if err := tx.WithContext(ctx).Model(&Quote{}).Where("id = ?", locked.ID).
		Update("current_version", newVersion).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := RecordAudit(tx, project.CompanyId, userId, fmt.Sprintf("Created quote version V%d for project %s", newVersion, project.Name)); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	return &version, nil
}

// UpdateQuoteStatus validates set membership, persists, and returns the full
// quote with versions newest first.
func UpdateQuoteStatus(ctx context.Context, quoteId uuid.UUID, newStatus string) (*Quote, error) {
	status, err := ParseQuoteStatus(newStatus)
	if err != nil {
		return nil, err
	}

	quote, project, err := getQuoteWithProject(ctx, quoteId)
	if err != nil {
		return nil, err
	}
	userId, _ := utils.GetUserIdFromContext(ctx)

	db := config.GetDB()
	tx := db.Begin()
	if err := tx.WithContext(ctx).Model(quote).Update("status", status).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := RecordAudit(tx, project.CompanyId, userId, fmt.Sprintf("Quote status changed to %s for project %s", status, project.Name)); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	quote.Status = status
	if err := loadQuoteVersions(ctx, db, quote); err != nil {
		return nil, err
	}
	return quote, nil
}

// GetQuoteByProject loads the project's quote with all versions (lines
// included), versions descending, lines in creation order.
func GetQuoteByProject(ctx context.Context, projectId uuid.UUID) (*Quote, error) {
	if _, err := GetProject(ctx, projectId); err != nil {
		return nil, err
	}

	db := config.GetDB()
	var quote Quote
	err := db.WithContext(ctx).First(&quote, "project_id = ?", projectId).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrorRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := loadQuoteVersions(ctx, db, &quote); err != nil {
		return nil, err
	}
	return &quote, nil
}

// GetQuote authorizes through the owning project.
func GetQuote(ctx context.Context, quoteId uuid.UUID) (*Quote, error) {
	quote, _, err := getQuoteWithProject(ctx, quoteId)
	if err != nil {
		return nil, err
	}
	db := config.GetDB()
	if err := loadQuoteVersions(ctx, db, quote); err != nil {
		return nil, err
	}
	return quote, nil
}

// StampVersionPdf records the rendered document locator and content hash on a
// version. The priced content stays untouched.
func StampVersionPdf(ctx context.Context, quoteId uuid.UUID, versionNumber int, pdfPath string, pdfHash string) (*QuoteVersion, error) {
	quote, project, err := getQuoteWithProject(ctx, quoteId)
	if err != nil {
		return nil, err
	}
	userId, _ := utils.GetUserIdFromContext(ctx)

	db := config.GetDB()
	var version QuoteVersion
	err = db.WithContext(ctx).First(&version, "quote_id = ? AND version = ?", quote.ID, versionNumber).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrorRecordNotFound
	}
	if err != nil {
		return nil, err
	}

	tx := db.Begin()
	if err := tx.WithContext(ctx).Model(&version).
		Updates(map[string]any{"pdf_path": pdfPath, "pdf_hash": pdfHash}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := RecordAudit(tx, project.CompanyId, userId, fmt.Sprintf("Rendered PDF for quote version V%d of project %s", versionNumber, project.Name)); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	version.PdfPath = pdfPath
	version.PdfHash = pdfHash
	return &version, nil
}

// GetQuoteVersion loads one version with its lines, authorized through the
// owning project.
func GetQuoteVersion(ctx context.Context, quoteId uuid.UUID, versionNumber int) (*QuoteVersion, error) {
	quote, _, err := getQuoteWithProject(ctx, quoteId)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	var version QuoteVersion
	err = db.WithContext(ctx).Preload("Lines", func(db *gorm.DB) *gorm.DB {
		return db.Order("quote_lines.position ASC")
	}).First(&version, "quote_id = ? AND version = ?", quote.ID, versionNumber).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrorRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &version, nil
}

// fetchOrCreateQuote returns the project's quote, creating an empty one with
// current_version 0 when none exists. Creation here is a fallback; the
// primary path creates the quote together with the project.
func fetchOrCreateQuote(ctx context.Context, db *gorm.DB, projectId uuid.UUID) (*Quote, error) {
	var quote Quote
	err := db.WithContext(ctx).First(&quote, "project_id = ?", projectId).Error
	if err == nil {
		return &quote, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	quote = Quote{
		ID:             uuid.New(),
		ProjectId:      projectId,
		Status:         QuoteStatusDraft,
		CurrentVersion: 0,
	}
	if err := db.WithContext(ctx).Create(&quote).Error; err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry {
			// Lost a race with another creator; use theirs.
			if err := db.WithContext(ctx).First(&quote, "project_id = ?", projectId).Error; err != nil {
				return nil, err
			}
			return &quote, nil
		}
		return nil, err
	}
	return &quote, nil
}

func getQuoteWithProject(ctx context.Context, quoteId uuid.UUID) (*Quote, *Project, error) {
	// Quote rows carry no company_id; authorization happens through the
	// owning project below.
	quote, err := utils.FetchSingleModel[Quote](ctx, quoteId)
	if err != nil {
		return nil, nil, err
	}

	project, err := GetProject(ctx, quote.ProjectId)
	if err != nil {
		return nil, nil, err
	}
	return quote, project, nil
}

func loadQuoteVersions(ctx context.Context, db *gorm.DB, quote *Quote) error {
	return db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("quote_lines.position ASC")
		}).
		Where("quote_id = ?", quote.ID).
		Order("version DESC").
		Find(&quote.Versions).Error
}

// buildVersionLines prices the submitted lines and assigns each its position
// within the version, preserving submission order. All arithmetic is exact
// decimal; the returned total is the sum of the line totals.
func buildVersionLines(versionId uuid.UUID, lines []*NewQuoteLine) ([]QuoteLine, decimal.Decimal) {
	total := decimal.Zero
	out := make([]QuoteLine, 0, len(lines))
	for i, line := range lines {
		lineTotal := line.Quantity.Mul(line.UnitPrice)
		out = append(out, QuoteLine{
			ID:             uuid.New(),
			QuoteVersionId: versionId,
			Position:       i,
			Label:          line.Label,
			Quantity:       line.Quantity,
			UnitPrice:      line.UnitPrice,
			Total:          lineTotal,
		})
		total = total.Add(lineTotal)
	}
	return out, total
}
