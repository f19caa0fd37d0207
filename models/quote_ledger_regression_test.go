package models_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"bitbucket.org/pleinsud/facade_backend/config"
	"bitbucket.org/pleinsud/facade_backend/models"
	"bitbucket.org/pleinsud/facade_backend/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestQuoteLedger_DenseVersionsUnderConcurrency(t *testing.T) {
	if strings.TrimSpace(os.Getenv("INTEGRATION_TESTS")) == "" {
		t.Skip("set INTEGRATION_TESTS=1 to run integration tests (requires docker)")
	}

	ctx := setupIntegrationEnv(t)

	ownerId := uuid.New().String()
	ctx = utils.SetUserIdInContext(ctx, ownerId)
	ctx = utils.SetUserEmailInContext(ctx, "owner@test.local")

	result, err := models.Onboard(ctx, ownerId, &models.OnboardingInput{
		CompanyName:   "Ledger Test SARL",
		AcceptedTerms: true,
	})
	if err != nil {
		t.Fatalf("Onboard: %v", err)
	}
	ctx = utils.SetCompanyIdInContext(ctx, result.CompanyId.String())
	ctx = utils.SetRoleInContext(ctx, models.RoleOwner)

	customer, err := models.CreateCustomer(ctx, &models.NewCustomer{Name: "Client"})
	if err != nil {
		t.Fatalf("CreateCustomer: %v", err)
	}
	project, err := models.CreateProject(ctx, &models.NewProject{
		CustomerId: customer.ID,
		Name:       "Chantier ledger",
	})
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}

	// Project creation seeds the quote with no version rows and a zero
	// counter; the first snapshot must take number 1.
	quote, err := models.GetQuoteByProject(ctx, project.ID)
	if err != nil {
		t.Fatalf("GetQuoteByProject: %v", err)
	}
	if quote.CurrentVersion != 0 {
		t.Fatalf("fresh project quote expected current_version 0, got %d", quote.CurrentVersion)
	}
	if len(quote.Versions) != 0 {
		t.Fatalf("fresh project quote expected no versions, got %d", len(quote.Versions))
	}

	const writers = 8
	const versionsPerWriter = 3

	var wg sync.WaitGroup
	errCh := make(chan error, writers*versionsPerWriter)
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < versionsPerWriter; i++ {
				lines := []*models.NewQuoteLine{
					{Label: fmt.Sprintf("writer %d version %d premier", w, i), Quantity: decimal.NewFromInt(2), UnitPrice: decimal.NewFromFloat(10.5)},
					{Label: fmt.Sprintf("writer %d version %d deuxieme", w, i), Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(4)},
					{Label: fmt.Sprintf("writer %d version %d troisieme", w, i), Quantity: decimal.NewFromInt(3), UnitPrice: decimal.NewFromInt(5)},
				}
				// Conflict losers retry with backoff until they win a number.
				for attempt := 0; ; attempt++ {
					_, err := models.CreateQuoteVersion(ctx, project.ID, lines)
					if err == nil {
						break
					}
					if errors.Is(err, utils.ErrorConflict) && attempt < 50 {
						time.Sleep(time.Duration(10+attempt*5) * time.Millisecond)
						continue
					}
					errCh <- fmt.Errorf("writer %d: %w", w, err)
					return
				}
			}
		}(w)
	}
	wg.Wait()
	close(errCh)
	for err := range errCh {
		t.Fatalf("concurrent CreateQuoteVersion: %v", err)
	}

	quote, err = models.GetQuoteByProject(ctx, project.ID)
	if err != nil {
		t.Fatalf("GetQuoteByProject after writes: %v", err)
	}

	total := writers * versionsPerWriter
	expectedCurrent := total
	if quote.CurrentVersion != expectedCurrent {
		t.Fatalf("current_version expected %d, got %d", expectedCurrent, quote.CurrentVersion)
	}
	if len(quote.Versions) != total {
		t.Fatalf("expected %d version rows, got %d", total, len(quote.Versions))
	}

	// Versions come back descending and dense: current, current-1, ..., 1.
	// Lines come back in submission order even though every line of a version
	// shares one insert timestamp.
	lineSuffixes := []string{"premier", "deuxieme", "troisieme"}
	for i, v := range quote.Versions {
		expected := expectedCurrent - i
		if v.Version != expected {
			t.Fatalf("version at index %d expected %d, got %d", i, expected, v.Version)
		}
		// 2*10.5 + 1*4 + 3*5 with exact decimal arithmetic.
		if !v.Total.Equal(decimal.NewFromFloat(40.5)) {
			t.Fatalf("version %d total expected 40.5, got %s", v.Version, v.Total)
		}
		if len(v.Lines) != len(lineSuffixes) {
			t.Fatalf("version %d expected %d lines, got %d", v.Version, len(lineSuffixes), len(v.Lines))
		}
		for j, line := range v.Lines {
			if line.Position != j {
				t.Fatalf("version %d line at index %d has position %d", v.Version, j, line.Position)
			}
			if !strings.HasSuffix(line.Label, lineSuffixes[j]) {
				t.Fatalf("version %d line %d out of submission order: %q", v.Version, j, line.Label)
			}
			if !line.Total.Equal(line.Quantity.Mul(line.UnitPrice)) {
				t.Fatalf("version %d line %d total mismatch", v.Version, j)
			}
		}
	}

	// Each version creation wrote one audit row, plus onboarding, customer
	// and project creation.
	logs, err := models.GetAuditLogs(ctx, result.CompanyId.String(), 1000)
	if err != nil {
		t.Fatalf("GetAuditLogs: %v", err)
	}
	if len(logs) < total+3 {
		t.Fatalf("expected at least %d audit rows, got %d", total+3, len(logs))
	}
}

func TestQuoteLedger_CrossTenantDenied(t *testing.T) {
	if strings.TrimSpace(os.Getenv("INTEGRATION_TESTS")) == "" {
		t.Skip("set INTEGRATION_TESTS=1 to run integration tests (requires docker)")
	}

	baseCtx := setupIntegrationEnv(t)

	ownerA := uuid.New().String()
	ctxA := utils.SetUserIdInContext(baseCtx, ownerA)
	resultA, err := models.Onboard(ctxA, ownerA, &models.OnboardingInput{CompanyName: "Company A", AcceptedTerms: true})
	if err != nil {
		t.Fatalf("Onboard A: %v", err)
	}
	ctxA = utils.SetCompanyIdInContext(ctxA, resultA.CompanyId.String())
	ctxA = utils.SetRoleInContext(ctxA, models.RoleOwner)

	ownerB := uuid.New().String()
	ctxB := utils.SetUserIdInContext(baseCtx, ownerB)
	resultB, err := models.Onboard(ctxB, ownerB, &models.OnboardingInput{CompanyName: "Company B", AcceptedTerms: true})
	if err != nil {
		t.Fatalf("Onboard B: %v", err)
	}
	ctxB = utils.SetCompanyIdInContext(ctxB, resultB.CompanyId.String())
	ctxB = utils.SetRoleInContext(ctxB, models.RoleOwner)

	customerA, err := models.CreateCustomer(ctxA, &models.NewCustomer{Name: "Client A"})
	if err != nil {
		t.Fatalf("CreateCustomer A: %v", err)
	}
	projectA, err := models.CreateProject(ctxA, &models.NewProject{CustomerId: customerA.ID, Name: "Chantier A"})
	if err != nil {
		t.Fatalf("CreateProject A: %v", err)
	}

	// B must not read A's project, quote, or customer, nor write versions.
	if _, err := models.GetProject(ctxB, projectA.ID); !isAccessDenied(err) {
		t.Fatalf("GetProject cross-tenant expected denial, got %v", err)
	}
	if _, err := models.GetQuoteByProject(ctxB, projectA.ID); !isAccessDenied(err) {
		t.Fatalf("GetQuoteByProject cross-tenant expected denial, got %v", err)
	}
	if _, err := models.GetCustomer(ctxB, customerA.ID); !isAccessDenied(err) {
		t.Fatalf("GetCustomer cross-tenant expected denial, got %v", err)
	}
	if _, err := models.CreateQuoteVersion(ctxB, projectA.ID, nil); !isAccessDenied(err) {
		t.Fatalf("CreateQuoteVersion cross-tenant expected denial, got %v", err)
	}

	// B also must not reference A's customer in its own project.
	if _, err := models.CreateProject(ctxB, &models.NewProject{CustomerId: customerA.ID, Name: "Chantier vole"}); !isAccessDenied(err) {
		t.Fatalf("CreateProject with foreign customer expected denial, got %v", err)
	}
}

func TestQuoteLedger_StatusUpdateValidation(t *testing.T) {
	if strings.TrimSpace(os.Getenv("INTEGRATION_TESTS")) == "" {
		t.Skip("set INTEGRATION_TESTS=1 to run integration tests (requires docker)")
	}

	ctx := setupIntegrationEnv(t)

	ownerId := uuid.New().String()
	ctx = utils.SetUserIdInContext(ctx, ownerId)
	result, err := models.Onboard(ctx, ownerId, &models.OnboardingInput{CompanyName: "Status Test", AcceptedTerms: true})
	if err != nil {
		t.Fatalf("Onboard: %v", err)
	}
	ctx = utils.SetCompanyIdInContext(ctx, result.CompanyId.String())
	ctx = utils.SetRoleInContext(ctx, models.RoleOwner)

	customer, err := models.CreateCustomer(ctx, &models.NewCustomer{Name: "Client"})
	if err != nil {
		t.Fatalf("CreateCustomer: %v", err)
	}
	project, err := models.CreateProject(ctx, &models.NewProject{CustomerId: customer.ID, Name: "Chantier statut"})
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	quote, err := models.GetQuoteByProject(ctx, project.ID)
	if err != nil {
		t.Fatalf("GetQuoteByProject: %v", err)
	}

	// Out-of-set value fails and leaves the stored status untouched.
	if _, err := models.UpdateQuoteStatus(ctx, quote.ID, "approved"); !errors.Is(err, utils.ErrorInvalidStatus) {
		t.Fatalf("expected ErrorInvalidStatus, got %v", err)
	}
	reloaded, err := models.GetQuoteByProject(ctx, project.ID)
	if err != nil {
		t.Fatalf("GetQuoteByProject after invalid update: %v", err)
	}
	if reloaded.Status != models.QuoteStatusDraft {
		t.Fatalf("status should remain draft after rejected update, got %s", reloaded.Status)
	}

	// Transitions are unordered; accepted can be reopened.
	for _, s := range []string{"sent", "accepted", "negotiation", "refused", "draft"} {
		updated, err := models.UpdateQuoteStatus(ctx, quote.ID, s)
		if err != nil {
			t.Fatalf("UpdateQuoteStatus(%s): %v", s, err)
		}
		if string(updated.Status) != s {
			t.Fatalf("status expected %s, got %s", s, updated.Status)
		}
	}
}

func TestOnboard_DuplicateUserConflict(t *testing.T) {
	if strings.TrimSpace(os.Getenv("INTEGRATION_TESTS")) == "" {
		t.Skip("set INTEGRATION_TESTS=1 to run integration tests (requires docker)")
	}

	baseCtx := setupIntegrationEnv(t)

	ownerId := uuid.New().String()
	ctx := utils.SetUserIdInContext(baseCtx, ownerId)
	if _, err := models.Onboard(ctx, ownerId, &models.OnboardingInput{CompanyName: "Premiere SARL", AcceptedTerms: true}); err != nil {
		t.Fatalf("Onboard: %v", err)
	}

	// A second onboarding for the same user is a conflict, not a raw
	// database error.
	if _, err := models.Onboard(ctx, ownerId, &models.OnboardingInput{CompanyName: "Seconde SARL", AcceptedTerms: true}); !errors.Is(err, utils.ErrorConflict) {
		t.Fatalf("duplicate onboarding expected ErrorConflict, got %v", err)
	}

	// Concurrent onboardings race past the exists check; the profile primary
	// key settles it and the loser still sees ErrorConflict.
	racerId := uuid.New().String()
	racerCtx := utils.SetUserIdInContext(baseCtx, racerId)
	const racers = 4
	results := make(chan error, racers)
	var wg sync.WaitGroup
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := models.Onboard(racerCtx, racerId, &models.OnboardingInput{
				CompanyName:   fmt.Sprintf("Course SARL %d", i),
				AcceptedTerms: true,
			})
			results <- err
		}(i)
	}
	wg.Wait()
	close(results)

	var won, conflicted int
	for err := range results {
		switch {
		case err == nil:
			won++
		case errors.Is(err, utils.ErrorConflict):
			conflicted++
		default:
			t.Fatalf("concurrent onboarding: unexpected error %v", err)
		}
	}
	if won != 1 {
		t.Fatalf("exactly one concurrent onboarding should succeed, got %d", won)
	}
	if conflicted != racers-1 {
		t.Fatalf("expected %d conflicts, got %d", racers-1, conflicted)
	}
}

func isAccessDenied(err error) bool {
	return errors.Is(err, utils.ErrorForbidden) || errors.Is(err, utils.ErrorRecordNotFound)
}

// setupIntegrationEnv boots throwaway MySQL and Redis containers, wires the
// config env vars, connects and migrates. Shared by all ledger tests.
func setupIntegrationEnv(t *testing.T) context.Context {
	t.Helper()

	redisName, redisPort := startRedisContainer(t)
	t.Cleanup(func() { _ = dockerRmForce(redisName) })

	mysqlName, mysqlPort := startMySQLContainer(t)
	t.Cleanup(func() { _ = dockerRmForce(mysqlName) })

	t.Setenv("REDIS_ADDRESS", fmt.Sprintf("127.0.0.1:%s", redisPort))
	t.Setenv("DB_USER", "root")
	t.Setenv("DB_PASSWORD", "testpw")
	t.Setenv("DB_HOST", "127.0.0.1")
	t.Setenv("DB_PORT", mysqlPort)
	t.Setenv("DB_NAME", "facade_test")

	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()

	if err := models.MigrateTable(); err != nil {
		t.Fatalf("MigrateTable: %v", err)
	}
	return context.Background()
}

func startRedisContainer(t *testing.T) (containerName, hostPort string) {
	t.Helper()
	name := fmt.Sprintf("facade-test-redis-%d", time.Now().UnixNano())
	out, err := dockerRun(
		"run", "-d", "--name", name,
		"-p", "127.0.0.1:0:6379",
		"redis:7-alpine",
	)
	if err != nil {
		t.Fatalf("start redis container: %v\n%s", err, out)
	}
	port, err := dockerHostPort(name, "6379/tcp")
	if err != nil {
		t.Fatalf("redis docker port: %v", err)
	}
	// wait until ready
	deadline := time.Now().Add(60 * time.Second)
	for time.Now().Before(deadline) {
		_, err := dockerRun("exec", name, "redis-cli", "ping")
		if err == nil {
			return name, port
		}
		time.Sleep(250 * time.Millisecond)
	}
	t.Fatalf("redis did not become ready")
	return "", ""
}

func startMySQLContainer(t *testing.T) (containerName, hostPort string) {
	t.Helper()
	name := fmt.Sprintf("facade-test-mysql-%d", time.Now().UnixNano())
	out, err := dockerRun(
		"run", "-d", "--name", name,
		"-e", "MYSQL_ROOT_PASSWORD=testpw",
		"-e", "MYSQL_DATABASE=facade_test",
		"-p", "127.0.0.1:0:3306",
		"mysql:8.0",
		"--default-authentication-plugin=mysql_native_password",
	)
	if err != nil {
		t.Fatalf("start mysql container: %v\n%s", err, out)
	}
	port, err := dockerHostPort(name, "3306/tcp")
	if err != nil {
		t.Fatalf("mysql docker port: %v", err)
	}
	// wait until ready
	deadline := time.Now().Add(120 * time.Second)
	for time.Now().Before(deadline) {
		_, err := dockerRun("exec", name, "mysqladmin", "ping", "-h", "127.0.0.1", "-ptestpw", "--silent")
		if err == nil {
			return name, port
		}
		time.Sleep(500 * time.Millisecond)
	}
	t.Fatalf("mysql did not become ready")
	return "", ""
}

func dockerHostPort(container, portProto string) (string, error) {
	out, err := dockerRun("port", container, portProto)
	if err != nil {
		return "", fmt.Errorf("docker port: %w: %s", err, out)
	}
	// Example: "127.0.0.1:49154\n"
	re := regexp.MustCompile(`:(\d+)`)
	m := re.FindStringSubmatch(out)
	if len(m) != 2 {
		return "", fmt.Errorf("unexpected docker port output: %q", out)
	}
	return m[1], nil
}

func dockerRmForce(container string) error {
	if strings.TrimSpace(container) == "" {
		return nil
	}
	_, err := dockerRun("rm", "-f", container)
	return err
}

func dockerRun(args ...string) (string, error) {
	cmd := exec.Command("docker", args...)
	b, err := cmd.CombinedOutput()
	return string(b), err
}
