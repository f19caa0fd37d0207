package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/pleinsud/facade_backend/config"
	"bitbucket.org/pleinsud/facade_backend/utils"
	"github.com/google/uuid"
)

// Customer is the client a job site is built for. Contact fields are
// free-form and optional.
type Customer struct {
	ID        uuid.UUID `gorm:"type:char(36);primary_key" json:"id"`
	CompanyId string    `gorm:"type:char(36);index;not null" json:"company_id"`
	Name      string    `gorm:"size:255" json:"name"`
	Email     string    `gorm:"size:255" json:"email"`
	Phone     string    `gorm:"size:30" json:"phone"`
	City      string    `gorm:"size:100" json:"city"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

type NewCustomer struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	City  string `json:"city"`
}

type UpdateCustomerInput struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
	Phone *string `json:"phone"`
	City  *string `json:"city"`
}

func CreateCustomer(ctx context.Context, input *NewCustomer) (*Customer, error) {
	companyId, ok := utils.GetCompanyIdFromContext(ctx)
	if !ok || companyId == "" {
		return nil, errors.New("company id is required")
	}
	userId, _ := utils.GetUserIdFromContext(ctx)

	customer := Customer{
		ID:        uuid.New(),
		CompanyId: companyId,
		Name:      input.Name,
		Email:     input.Email,
		Phone:     utils.NormalizePhoneNumber(input.Phone, utils.CountryCode),
		City:      input.City,
	}

	db := config.GetDB()
	tx := db.Begin()
	if err := tx.WithContext(ctx).Create(&customer).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := RecordAudit(tx, companyId, userId, "Created customer: "+input.Name); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	return &customer, nil
}

func GetCustomers(ctx context.Context, companyId string) ([]*Customer, error) {
	return utils.FetchAllModels[Customer](ctx, companyId)
}

// GetCustomer loads by id scoped to the caller's company. A customer of
// another company is indistinguishable from a missing one.
func GetCustomer(ctx context.Context, id uuid.UUID) (*Customer, error) {
	companyId, _ := utils.GetCompanyIdFromContext(ctx)
	return utils.FetchModel[Customer](ctx, companyId, id)
}

func UpdateCustomer(ctx context.Context, id uuid.UUID, input *UpdateCustomerInput) (*Customer, error) {
	customer, err := GetCustomer(ctx, id)
	if err != nil {
		return nil, err
	}
	userId, _ := utils.GetUserIdFromContext(ctx)

	if input.Name != nil {
		customer.Name = *input.Name
	}
	if input.Email != nil {
		customer.Email = *input.Email
	}
	if input.Phone != nil {
		customer.Phone = utils.NormalizePhoneNumber(*input.Phone, utils.CountryCode)
	}
	if input.City != nil {
		customer.City = *input.City
	}

	db := config.GetDB()
	tx := db.Begin()
	if err := tx.WithContext(ctx).Save(customer).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := RecordAudit(tx, customer.CompanyId, userId, "Updated customer: "+customer.Name); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	return customer, nil
}

func DeleteCustomer(ctx context.Context, id uuid.UUID) error {
	customer, err := GetCustomer(ctx, id)
	if err != nil {
		return err
	}
	userId, _ := utils.GetUserIdFromContext(ctx)

	db := config.GetDB()
	tx := db.Begin()
	if err := tx.WithContext(ctx).Delete(customer).Error; err != nil {
		tx.Rollback()
		return err
	}
	if err := RecordAudit(tx, customer.CompanyId, userId, "Deleted customer: "+customer.Name); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit().Error
}
