package controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"asikh-oms/config"
	"asikh-oms/controllers/idgen"
	"asikh-oms/database"
	"asikh-oms/routes"

	"github.com/gofiber/fiber/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDBCounter int64

// newTestApp wires the full route table against a fresh in-memory database
// seeded with the default admin account.
func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	config.LoadConfig()
	idgen.Init()

	dsn := fmt.Sprintf("file:apitest%d?mode=memory&cache=shared", atomic.AddInt64(&testDBCounter, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	database.RunSeeders(db)

	app := fiber.New(fiber.Config{BodyLimit: 10 * 1024 * 1024})
	routes.SetupAuthRoutes(app, db)
	routes.SetupUserRoutes(app, db)
	routes.SetupFarmRoutes(app, db)
	routes.SetupPackhouseRoutes(app, db)
	routes.SetupVarietyRoutes(app, db)
	routes.SetupQRCodeRoutes(app, db)
	routes.SetupBatchRoutes(app, db)
	routes.SetupCrateRoutes(app, db)
	routes.SetupReportRoutes(app, db)

	return app
}

// doJSON issues a request and decodes the JSON body into a generic map.
func doJSON(t *testing.T, app *fiber.App, method, path, token string, payload interface{}) (int, map[string]interface{}) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response body: %v", err)
	}

	result := map[string]interface{}{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &result); err != nil {
			t.Fatalf("%s %s: decode body %q: %v", method, path, raw, err)
		}
	}
	return resp.StatusCode, result
}

// loginAdmin authenticates as the seeded admin and returns the access token.
func loginAdmin(t *testing.T, app *fiber.App) string {
	t.Helper()

	status, body := doJSON(t, app, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": "admin",
		"password": "adminpass",
	})
	if status != http.StatusOK {
		t.Fatalf("admin login failed with status %d: %v", status, body)
	}
	token, _ := body["access_token"].(string)
	if token == "" {
		t.Fatal("admin login returned no access token")
	}
	return token
}

// createRoute sets up a farm and a packhouse and returns their IDs.
func createRoute(t *testing.T, app *fiber.App, token string) (farmID, packhouseID float64) {
	t.Helper()

	status, farm := doJSON(t, app, http.MethodPost, "/api/v1/farms/", token, map[string]interface{}{
		"name":     "Ratnagiri North",
		"location": "Ratnagiri",
	})
	if status != http.StatusCreated {
		t.Fatalf("create farm failed with status %d: %v", status, farm)
	}

	status, packhouse := doJSON(t, app, http.MethodPost, "/api/v1/packhouses/", token, map[string]interface{}{
		"name":     "Mumbai Central Packhouse",
		"location": "Mumbai",
	})
	if status != http.StatusCreated {
		t.Fatalf("create packhouse failed with status %d: %v", status, packhouse)
	}

	return farm["id"].(float64), packhouse["id"].(float64)
}

// createBatch creates an open batch between the given locations.
func createBatch(t *testing.T, app *fiber.App, token string, farmID, packhouseID float64) map[string]interface{} {
	t.Helper()

	status, batch := doJSON(t, app, http.MethodPost, "/api/v1/batches/", token, map[string]interface{}{
		"transport_mode": "truck",
		"from_location":  farmID,
		"to_location":    packhouseID,
	})
	if status != http.StatusCreated {
		t.Fatalf("create batch failed with status %d: %v", status, batch)
	}
	return batch
}
