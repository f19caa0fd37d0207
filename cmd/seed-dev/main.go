// seed-dev creates a demo company with a customer, a project, facades and a
// first quote version, and prints a bearer token for the seeded owner.
//
// Usage (from backend directory):
//
//	DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... go run ./cmd/seed-dev
package main

import (
	"context"
	"fmt"
	"os"

	"bitbucket.org/pleinsud/facade_backend/config"
	"bitbucket.org/pleinsud/facade_backend/models"
	"bitbucket.org/pleinsud/facade_backend/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	ownerEmail  = "demo@pleinsud.dev"
	companyName = "Demo Facades SARL"
)

func main() {
	ctx := context.Background()
	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}
	if err := models.MigrateTable(); err != nil {
		fmt.Fprintf(os.Stderr, "migration failed: %v\n", err)
		os.Exit(1)
	}

	ownerId := uuid.New().String()
	ctx = utils.SetUserIdInContext(ctx, ownerId)
	ctx = utils.SetUserEmailInContext(ctx, ownerEmail)

	result, err := models.Onboard(ctx, ownerId, &models.OnboardingInput{
		CompanyName:   companyName,
		AcceptedTerms: true,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "onboarding failed: %v\n", err)
		os.Exit(1)
	}
	ctx = utils.SetCompanyIdInContext(ctx, result.CompanyId.String())
	ctx = utils.SetRoleInContext(ctx, models.RoleOwner)

	customer, err := models.CreateCustomer(ctx, &models.NewCustomer{
		Name:  "Jean Martin",
		Email: "jean.martin@example.fr",
		Phone: "06 12 34 56 78",
		City:  "Marseille",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "create customer failed: %v\n", err)
		os.Exit(1)
	}

	project, err := models.CreateProject(ctx, &models.NewProject{
		CustomerId: customer.ID,
		Name:       "Villa Les Oliviers",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "create project failed: %v\n", err)
		os.Exit(1)
	}

	for _, code := range []string{"A", "B"} {
		if _, err := models.CreateFacade(ctx, &models.NewFacade{ProjectId: project.ID, Code: code}); err != nil {
			fmt.Fprintf(os.Stderr, "create facade %s failed: %v\n", code, err)
			os.Exit(1)
		}
	}

	if _, err := models.CreateMetrageRef(ctx, &models.NewMetrageRef{
		ProjectId: project.ID,
		Type:      string(models.MetrageRefTypeAgglo),
	}); err != nil {
		fmt.Fprintf(os.Stderr, "create metrage ref failed: %v\n", err)
		os.Exit(1)
	}

	version, err := models.CreateQuoteVersion(ctx, project.ID, []*models.NewQuoteLine{
		{Label: "Ravalement facade A", Quantity: decimal.NewFromFloat(42.5), UnitPrice: decimal.NewFromInt(38)},
		{Label: "Traitement anti-mousse", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(250)},
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "create quote version failed: %v\n", err)
		os.Exit(1)
	}

	token, err := utils.JwtGenerate(ownerId, ownerEmail)
	if err != nil {
		fmt.Fprintf(os.Stderr, "token generation failed: %v\n", err)
		os.Exit(1)
	}

	// Cached objects from earlier seed runs may describe rows that no longer
	// exist in this database.
	if err := config.ClearRedis(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "redis flush failed: %v\n", err)
	}

	// Operator-style totals across every tenant in the database, so repeated
	// seed runs are visible. The context carries the demo company id, hence
	// the explicit scope skip.
	opCtx := utils.SetSkipTenantScopeInContext(ctx, true)
	var companies, auditRows int64
	db.WithContext(opCtx).Model(&models.Company{}).Count(&companies)
	db.WithContext(opCtx).Model(&models.AuditLog{}).Count(&auditRows)

	fmt.Println("seeded company:", result.CompanyId)
	fmt.Println("seeded project:", project.ID)
	fmt.Printf("seeded quote version V%d, total %s\n", version.Version, version.Total.StringFixed(2))
	fmt.Printf("database now holds %d companies and %d audit rows\n", companies, auditRows)
	fmt.Println("bearer token:", token)
}
