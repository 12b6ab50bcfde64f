package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"groupbuy/internal/handlers"
	"groupbuy/internal/middleware"
	"groupbuy/internal/models"
	"groupbuy/internal/repositories"
	"groupbuy/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupApp builds a Fiber app over in-memory SQLite with the full handler
// stack, plus a seeded admin account and one open campaign.
func setupApp(t *testing.T) (*fiber.App, *models.Campaign) {
	t.Helper()

	viper.SetDefault("JWT_SECRET", "test_jwt_secret")
	viper.AutomaticEnv()
	jwtSecret := viper.GetString("JWT_SECRET")

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to in-memory database: %v", err)
	}
	err = db.AutoMigrate(&models.Campaign{}, &models.User{}, &models.Order{}, &models.PaymentRound{}, &models.Notification{})
	if err != nil {
		t.Fatalf("failed to auto-migrate database: %v", err)
	}

	// Initialize Repositories
	orderRepo := repositories.NewGORMOrderRepository(db)
	campaignRepo := repositories.NewGORMCampaignRepository(db)
	notificationRepo := repositories.NewGORMNotificationRepository(db)
	userRepo := repositories.NewGORMUserRepository(db)

	// Initialize Services (nil publisher: no broker in tests)
	notificationService := services.NewNotificationService(notificationRepo)
	campaignService := services.NewCampaignService(campaignRepo)
	orderService := services.NewOrderService(orderRepo, campaignRepo, notificationService, nil)
	verificationService := services.NewVerificationService(orderRepo, notificationService, nil)
	authService := services.NewAuthService(userRepo, jwtSecret)

	// Initialize Handlers
	campaignHandler := handlers.NewCampaignHandler(campaignService)
	orderHandler := handlers.NewOrderHandler(orderService, verificationService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	authHandler := handlers.NewAuthHandler(authService)

	app := fiber.New()

	apiV1 := app.Group("/api/v1")
	authHandler.RegisterRoutes(apiV1)

	protected := apiV1.Group("", middleware.AuthRequired(authService))
	campaignHandler.RegisterRoutes(protected)
	orderHandler.RegisterRoutes(protected)
	notificationHandler.RegisterRoutes(protected)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// Registration never grants admin, so the admin account is seeded directly.
	hashed, _ := bcrypt.GenerateFromPassword([]byte("admin-secret"), bcrypt.DefaultCost)
	err = userRepo.Create(&models.User{
		Username: "admin",
		Email:    "admin@example.com",
		Password: string(hashed),
		Role:     "admin",
	})
	if err != nil {
		t.Fatalf("failed to seed admin user: %v", err)
	}

	campaign := &models.Campaign{
		Title:            "Winter Jacket Group Buy",
		Description:      "Imported down jackets",
		Price:            500,
		AirCargoCost:     50,
		Stock:            20,
		Deadline:         time.Now().AddDate(0, 1, 0),
		ShippingDeadline: time.Now().AddDate(0, 2, 0),
	}
	if err := campaignRepo.Create(campaign); err != nil {
		t.Fatalf("failed to seed campaign: %v", err)
	}

	return app, campaign
}

// TestMain runs setup and teardown for all tests
func TestMain(m *testing.M) {
	// Suppress logging during tests for cleaner output
	log.SetOutput(io.Discard)
	code := m.Run()
	os.Exit(code)
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		assert.NoError(t, err)
		reader = bytes.NewReader(jsonBody)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	assert.NoError(t, err)

	var decoded map[string]interface{}
	raw, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &decoded)
	}
	return resp, decoded
}

func login(t *testing.T, app *fiber.App, username, password string) string {
	t.Helper()
	resp, body := doJSON(t, app, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": username,
		"password": password,
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	token, _ := body["token"].(string)
	assert.NotEmpty(t, token)
	return token
}

func registerCustomer(t *testing.T, app *fiber.App) string {
	t.Helper()
	resp, _ := doJSON(t, app, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "password123",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	return login(t, app, "alice", "password123")
}

func TestHealthAndAuthGating(t *testing.T) {
	app, _ := setupApp(t)

	resp, body := doJSON(t, app, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "healthy", body["status"])

	resp, _ = doJSON(t, app, http.MethodGet, "/api/v1/orders/", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAdminOnlyRoutesForbiddenForCustomers(t *testing.T) {
	app, _ := setupApp(t)
	customerToken := registerCustomer(t, app)

	resp, _ := doJSON(t, app, http.MethodPost, "/api/v1/campaigns/", customerToken, map[string]interface{}{
		"title": "Bootleg Campaign", "price": 1, "deadline": time.Now(), "shipping_deadline": time.Now(),
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodPut, "/api/v1/orders/any/payments/firstPayment", customerToken, map[string]string{
		"status": "verified",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestOrderPaymentLifecycle(t *testing.T) {
	app, campaign := setupApp(t)
	customerToken := registerCustomer(t, app)
	adminToken := login(t, app, "admin", "admin-secret")

	// Customer places an installment order.
	resp, order := doJSON(t, app, http.MethodPost, "/api/v1/orders/", customerToken, map[string]interface{}{
		"customer_name":  "Alice Tan",
		"customer_email": "alice@example.com",
		"campaign_id":    campaign.ID,
		"quantity":       2,
		"payment_plan":   "installment",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	orderID, _ := order["id"].(string)
	assert.NotEmpty(t, orderID)
	assert.Equal(t, 1000.0, order["total_cost"])

	orderPath := "/api/v1/orders/" + orderID

	// Verifying before any proof is submitted is rejected with a stable code.
	resp, body := doJSON(t, app, http.MethodPut, orderPath+"/payments/firstPayment", adminToken, map[string]string{
		"status": "verified",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "NO_PROOF_SUBMITTED", body["code"])

	// Customer submits first-round proof.
	proof := map[string]interface{}{
		"sender_name":    "Alice Tan",
		"payment_method": "bank-transfer",
		"transaction_id": "tx-001",
		"payment_date":   time.Now(),
		"screenshot_ref": "blob://proof-1",
	}
	resp, _ = doJSON(t, app, http.MethodPost, orderPath+"/payments/firstPayment/submit", customerToken, proof)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Second round cannot be decided before the first clears.
	resp, body = doJSON(t, app, http.MethodPut, orderPath+"/payments/secondPayment", adminToken, map[string]string{
		"status": "rejected", "notes": "too early",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "SEQUENCE_VIOLATION", body["code"])

	// Admin verifies the first round.
	resp, body = doJSON(t, app, http.MethodPut, orderPath+"/payments/firstPayment", adminToken, map[string]string{
		"status": "verified",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Retrying the decision is idempotent at the boundary: TERMINAL_STATE.
	resp, body = doJSON(t, app, http.MethodPut, orderPath+"/payments/firstPayment", adminToken, map[string]string{
		"status": "verified",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "TERMINAL_STATE", body["code"])

	// A full-plan order has no second round; requesting one is ROUND_NOT_FOUND.
	resp, fullOrder := doJSON(t, app, http.MethodPost, "/api/v1/orders/", customerToken, map[string]interface{}{
		"customer_name":  "Alice Tan",
		"customer_email": "alice@example.com",
		"campaign_id":    campaign.ID,
		"quantity":       1,
		"payment_plan":   "full",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	fullID, _ := fullOrder["id"].(string)
	resp, body = doJSON(t, app, http.MethodPut, "/api/v1/orders/"+fullID+"/payments/secondPayment", adminToken, map[string]string{
		"status": "verified",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "ROUND_NOT_FOUND", body["code"])

	// Customer submits second-round proof; the order enters the admin queue.
	proof["transaction_id"] = "tx-002"
	proof["screenshot_ref"] = "blob://proof-2"
	resp, _ = doJSON(t, app, http.MethodPost, orderPath+"/payments/secondPayment/submit", customerToken, proof)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/?paymentStatus=pending-second", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	listResp, err := app.Test(req, -1)
	assert.NoError(t, err)
	var queue []map[string]interface{}
	assert.NoError(t, json.NewDecoder(listResp.Body).Decode(&queue))
	listResp.Body.Close()
	assert.Len(t, queue, 1)
	assert.Equal(t, orderID, queue[0]["id"])

	// Rejecting without notes is a validation failure.
	resp, body = doJSON(t, app, http.MethodPut, orderPath+"/payments/secondPayment", adminToken, map[string]string{
		"status": "rejected",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", body["code"])

	// Reject the second round, then the customer resubmits and it clears.
	resp, _ = doJSON(t, app, http.MethodPut, orderPath+"/payments/secondPayment", adminToken, map[string]string{
		"status": "rejected", "notes": "blurry screenshot",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	proof["transaction_id"] = "tx-003"
	resp, _ = doJSON(t, app, http.MethodPost, orderPath+"/payments/secondPayment/submit", customerToken, proof)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = doJSON(t, app, http.MethodPut, orderPath+"/payments/secondPayment", adminToken, map[string]string{
		"status": "verified",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Shipping mutation with tracking number.
	resp, body = doJSON(t, app, http.MethodPut, orderPath, adminToken, map[string]interface{}{
		"status":          "shipped",
		"tracking_number": "SF123456789",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "shipped", body["status"])
	assert.Equal(t, "SF123456789", body["tracking_number"])

	// The customer's notification feed saw the decisions and the status change.
	req = httptest.NewRequest(http.MethodGet, "/api/v1/notifications/", nil)
	req.Header.Set("Authorization", "Bearer "+customerToken)
	notifResp, err := app.Test(req, -1)
	assert.NoError(t, err)
	var notifications []map[string]interface{}
	assert.NoError(t, json.NewDecoder(notifResp.Body).Decode(&notifications))
	notifResp.Body.Close()
	assert.NotEmpty(t, notifications)

	var sawRejection bool
	for _, n := range notifications {
		if msg, _ := n["message"].(string); msg != "" && bytes.Contains([]byte(msg), []byte("blurry screenshot")) {
			sawRejection = true
		}
	}
	assert.True(t, sawRejection, "rejection reason must reach the customer")

	// Administrative purge: single delete, then bulk delete by status.
	resp, body = doJSON(t, app, http.MethodDelete, "/api/v1/orders/"+fullID, adminToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1.0, body["deleted"])

	resp, body = doJSON(t, app, http.MethodDelete, "/api/v1/orders/?status=shipped", adminToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1.0, body["deleted"])

	resp, _ = doJSON(t, app, http.MethodGet, orderPath, adminToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCampaignCRUD(t *testing.T) {
	app, _ := setupApp(t)
	adminToken := login(t, app, "admin", "admin-secret")

	deadline := time.Now().AddDate(0, 1, 0)
	resp, created := doJSON(t, app, http.MethodPost, "/api/v1/campaigns/", adminToken, map[string]interface{}{
		"title":             "Mechanical Keyboard Batch 3",
		"description":       "75% layout, hot-swap",
		"price":             85.0,
		"air_cargo_cost":    10.0,
		"stock":             25,
		"deadline":          deadline,
		"shipping_deadline": deadline.AddDate(0, 1, 0),
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	campaignID, _ := created["id"].(string)
	assert.NotEmpty(t, campaignID)

	resp, fetched := doJSON(t, app, http.MethodGet, "/api/v1/campaigns/"+campaignID, adminToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Mechanical Keyboard Batch 3", fetched["title"])

	resp, _ = doJSON(t, app, http.MethodDelete, "/api/v1/campaigns/"+campaignID, adminToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodGet, "/api/v1/campaigns/"+campaignID, adminToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
