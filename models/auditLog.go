package models

import (
	"context"
	"time"

	"bitbucket.org/pleinsud/facade_backend/config"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuditLog is append-only. Rows are written inside the same transaction as
// the mutation they document: a recorder failure aborts the whole mutation
// (fail-closed, auditability over availability). Never updated or deleted.
type AuditLog struct {
	ID        uuid.UUID `gorm:"type:char(36);primary_key" json:"id"`
	CompanyId string    `gorm:"type:char(36);index;not null" json:"company_id"`
	UserId    string    `gorm:"type:char(36);index;not null" json:"user_id"`
	Action    string    `gorm:"type:text;not null" json:"action"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// RecordAudit appends one audit row using the caller's transaction handle.
func RecordAudit(tx *gorm.DB, companyId string, userId string, action string) error {
	entry := AuditLog{
		ID:        uuid.New(),
		CompanyId: companyId,
		UserId:    userId,
		Action:    action,
	}
	return tx.Create(&entry).Error
}

// GetAuditLogs returns the company's audit trail, newest first.
func GetAuditLogs(ctx context.Context, companyId string, limit int) ([]*AuditLog, error) {
	db := config.GetDB()
	var logs []*AuditLog
	dbCtx := db.WithContext(ctx).Where("company_id = ?", companyId).Order("created_at DESC")
	if limit > 0 {
		dbCtx = dbCtx.Limit(limit)
	}
	if err := dbCtx.Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}
