//go:build integration

package handler_test

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kiwari-pos/register/internal/auth"
	"github.com/kiwari-pos/register/internal/catalog"
	"github.com/kiwari-pos/register/internal/config"
	"github.com/kiwari-pos/register/internal/database"
	"github.com/kiwari-pos/register/internal/enum"
	"github.com/kiwari-pos/register/internal/router"
	"github.com/kiwari-pos/register/internal/session"
	"github.com/kiwari-pos/register/internal/ws"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestIntegrationFlow rings up an order against a PostgreSQL-backed catalog
// with every handler wired through the router.
func TestIntegrationFlow(t *testing.T) {
	ctx := context.Background()

	// Start PostgreSQL container
	_, connStr, cleanup := setupPostgresContainer(t, ctx)
	defer cleanup()

	// Run migrations
	runMigrations(t, connStr)

	// Create pgxpool connection
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		t.Fatalf("create pool: %v", err)
	}
	defer pool.Close()

	queries := database.New(pool)
	outletID := uuid.New()
	productID, modifierID := seedCatalog(t, ctx, pool, queries, outletID)

	// Initialize dependencies
	cfg := &config.Config{
		Port:        "8081",
		DatabaseURL: connStr,
		JWTSecret:   "integration-test-secret",
	}
	cfg.Register.CurrencySuffix = "₫"

	store := catalog.NewStore(queries)
	hubCtx, stopHub := context.WithCancel(ctx)
	defer stopHub()
	hub := ws.NewHub(zerolog.Nop())
	go hub.Run(hubCtx)

	r := router.New(router.Deps{
		Config:   cfg,
		Catalog:  store,
		Sessions: session.NewManager(session.DefaultConfig(), store, zerolog.Nop()),
		Hub:      hub,
		Logger:   zerolog.Nop(),
	})

	// Create HTTP test server
	server := httptest.NewServer(r)
	defer server.Close()

	token, err := auth.GenerateToken(cfg.JWTSecret, uuid.New(), outletID, enum.UserRoleCashier)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	outletPath := "/outlets/" + outletID.String()

	// --- 1. Browse the catalog ---
	var categories []catalog.Category
	call(t, server, "GET", outletPath+"/catalog/categories", nil, token, http.StatusOK, &categories)
	if len(categories) != 1 || categories[0].Name != "Coffee" {
		t.Fatalf("categories: got %+v", categories)
	}

	var products []catalog.Product
	call(t, server, "GET", outletPath+"/catalog/products?q=latte", nil, token, http.StatusOK, &products)
	if len(products) != 1 || products[0].ID != productID {
		t.Fatalf("search: got %+v", products)
	}
	if !products[0].Price.Equal(decimal.NewFromInt(30000)) {
		t.Errorf("price: got %s, want 30000", products[0].Price)
	}

	var modifiers []catalog.Modifier
	call(t, server, "GET", outletPath+"/catalog/products/"+strconv.FormatInt(productID, 10)+"/modifiers", nil, token, http.StatusOK, &modifiers)
	if len(modifiers) != 1 || modifiers[0].ID != modifierID {
		t.Fatalf("modifiers: got %+v", modifiers)
	}

	// A product of another outlet is not visible
	otherOutlet := uuid.New()
	ownerToken, _ := auth.GenerateToken(cfg.JWTSecret, uuid.New(), uuid.New(), enum.UserRoleOwner)
	call(t, server, "GET", "/outlets/"+otherOutlet.String()+"/catalog/products/"+strconv.FormatInt(productID, 10)+"/modifiers", nil, ownerToken, http.StatusNotFound, nil)

	// --- 2. Open a session and build the order ---
	var s sessionBody
	call(t, server, "POST", outletPath+"/sessions", nil, token, http.StatusCreated, &s)
	sessionPath := outletPath + "/sessions/" + s.ID.String()

	call(t, server, "PUT", sessionPath+"/table", map[string]interface{}{"table_id": 3}, token, http.StatusOK, nil)
	call(t, server, "POST", sessionPath+"/customization", map[string]int64{"product_id": productID}, token, http.StatusOK, nil)
	call(t, server, "POST", sessionPath+"/customization/modifiers/"+strconv.FormatInt(modifierID, 10)+"/toggle", nil, token, http.StatusOK, nil)
	call(t, server, "PUT", sessionPath+"/customization/quantity", map[string]int{"delta": 1}, token, http.StatusOK, &s)

	// Unit: 30000 + 5000, line: 35000 x 2
	if !s.Customization.LineTotal.Equal(decimal.NewFromInt(70000)) {
		t.Fatalf("line total: got %s, want 70000", s.Customization.LineTotal)
	}

	call(t, server, "POST", sessionPath+"/customization/confirm", nil, token, http.StatusCreated, nil)

	// --- 3. Pay cash ---
	call(t, server, "PUT", sessionPath+"/payment/method", map[string]string{"method": enum.PaymentMethodCash}, token, http.StatusOK, &s)
	// Subtotal 70000 + 10% tax
	if !s.Order.Total.Equal(decimal.NewFromInt(77000)) {
		t.Fatalf("order total: got %s, want 77000", s.Order.Total)
	}

	call(t, server, "POST", sessionPath+"/payment/quick-add", map[string]string{"amount": "50000"}, token, http.StatusOK, nil)
	call(t, server, "POST", sessionPath+"/payment/complete", nil, token, http.StatusConflict, nil)
	call(t, server, "POST", sessionPath+"/payment/quick-add", map[string]string{"amount": "50000"}, token, http.StatusOK, &s)
	if s.Payment.State != enum.PaymentStateReady {
		t.Fatalf("payment state: got %q, want READY_TO_COMPLETE", s.Payment.State)
	}

	var completed struct {
		Receipt struct {
			ChangeDue decimal.Decimal `json:"change_due"`
			Order     struct {
				Table *struct {
					ID int `json:"id"`
				} `json:"table"`
			} `json:"order"`
		} `json:"receipt"`
	}
	call(t, server, "POST", sessionPath+"/payment/complete", nil, token, http.StatusOK, &completed)
	if !completed.Receipt.ChangeDue.Equal(decimal.NewFromInt(23000)) {
		t.Errorf("change due: got %s, want 23000", completed.Receipt.ChangeDue)
	}
	if completed.Receipt.Order.Table == nil || completed.Receipt.Order.Table.ID != 3 {
		t.Errorf("receipt table: got %+v", completed.Receipt.Order.Table)
	}
}

// --- Helpers ---

func setupPostgresContainer(t *testing.T, ctx context.Context) (testcontainers.Container, string, func()) {
	t.Helper()

	pgContainer, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("pos_test"),
		tcpostgres.WithUsername("pos"),
		tcpostgres.WithPassword("pos"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("start postgres container: %v", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("get connection string: %v", err)
	}

	cleanup := func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("terminate container: %v", err)
		}
	}

	return pgContainer, connStr, cleanup
}

func runMigrations(t *testing.T, connStr string) {
	t.Helper()

	// Connect with stdlib for migrate
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		t.Fatalf("open db for migrations: %v", err)
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		t.Fatalf("create migrate driver: %v", err)
	}

	// Relative to internal/handler/, the package directory go test runs in.
	m, err := migrate.NewWithDatabaseInstance(
		"file://../../migrations",
		"postgres", driver)
	if err != nil {
		t.Fatalf("create migrate instance: %v", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		t.Fatalf("run migrations: %v", err)
	}
}

// seedCatalog inserts one category with a latte and its modifier, plus an
// inactive product that must never be listed.
func seedCatalog(t *testing.T, ctx context.Context, pool *pgxpool.Pool, q *database.Queries, outletID uuid.UUID) (productID, modifierID int64) {
	t.Helper()

	category, err := q.CreateCategory(ctx, database.CreateCategoryParams{OutletID: outletID, Name: "Coffee"})
	if err != nil {
		t.Fatalf("create category: %v", err)
	}

	latte, err := q.CreateProduct(ctx, database.CreateProductParams{
		OutletID:   outletID,
		CategoryID: category.ID,
		Name:       "Latte",
		BasePrice:  catalog.DecimalToNumeric(decimal.NewFromInt(30000)),
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}

	shot, err := q.CreateProductModifier(ctx, database.CreateProductModifierParams{
		ProductID: latte.ID,
		Name:      "Extra shot",
		Price:     catalog.DecimalToNumeric(decimal.NewFromInt(5000)),
	})
	if err != nil {
		t.Fatalf("create modifier: %v", err)
	}

	retired, err := q.CreateProduct(ctx, database.CreateProductParams{
		OutletID:   outletID,
		CategoryID: category.ID,
		Name:       "Latte Classic",
		BasePrice:  catalog.DecimalToNumeric(decimal.NewFromInt(28000)),
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	if _, err := pool.Exec(ctx, `UPDATE products SET is_active = false WHERE id = $1`, retired.ID); err != nil {
		t.Fatalf("deactivate product: %v", err)
	}

	return latte.ID, shot.ID
}

func call(t *testing.T, server *httptest.Server, method, path string, body interface{}, token string, wantStatus int, out interface{}) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, server.URL+path, reader)
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		var errBody map[string]interface{}
		json.NewDecoder(resp.Body).Decode(&errBody)
		t.Fatalf("%s %s: status %d, want %d, body: %v", method, path, resp.StatusCode, wantStatus, errBody)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s %s: %v", method, path, err)
		}
	}
}
