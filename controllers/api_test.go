package controllers_test

import (
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"asikh-oms/services"
)

func TestBatchCodeFormat(t *testing.T) {
	app := newTestApp(t)
	token := loginAdmin(t, app)
	farmID, packhouseID := createRoute(t, app, token)

	batch := createBatch(t, app, token, farmID, packhouseID)

	wantPrefix := "BATCH-" + time.Now().Format("20060102") + "-"
	code, _ := batch["batch_code"].(string)
	if !strings.HasPrefix(code, wantPrefix) {
		t.Fatalf("batch code %q does not start with %q", code, wantPrefix)
	}
	if !strings.HasSuffix(code, "-001") {
		t.Fatalf("first batch of the day should end in -001, got %q", code)
	}

	second := createBatch(t, app, token, farmID, packhouseID)
	if code2, _ := second["batch_code"].(string); !strings.HasSuffix(code2, "-002") {
		t.Fatalf("second batch of the day should end in -002, got %q", code2)
	}
}

func TestBatchRejectsSameOriginAndDestination(t *testing.T) {
	app := newTestApp(t)
	token := loginAdmin(t, app)
	farmID, _ := createRoute(t, app, token)

	status, body := doJSON(t, app, http.MethodPost, "/api/v1/batches/", token, map[string]interface{}{
		"transport_mode": "truck",
		"from_location":  farmID,
		"to_location":    farmID,
	})
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400 for from == to, got %d: %v", status, body)
	}
	if detail, _ := body["detail"].(string); !strings.Contains(detail, "differ") {
		t.Fatalf("expected detail to mention the locations must differ, got %v", body)
	}
}

func TestBatchLifecycleTransitions(t *testing.T) {
	app := newTestApp(t)
	token := loginAdmin(t, app)
	farmID, packhouseID := createRoute(t, app, token)
	batch := createBatch(t, app, token, farmID, packhouseID)
	batchPath := fmt.Sprintf("/api/v1/batches/%v", batch["id"])

	// A fresh batch cannot be delivered or closed.
	if status, _ := doJSON(t, app, http.MethodPost, batchPath+"/deliver", token, nil); status != http.StatusBadRequest {
		t.Fatalf("deliver from open should fail, got %d", status)
	}
	if status, _ := doJSON(t, app, http.MethodPost, batchPath+"/close", token, nil); status != http.StatusBadRequest {
		t.Fatalf("close from open should fail, got %d", status)
	}

	status, body := doJSON(t, app, http.MethodPost, batchPath+"/depart", token, nil)
	if status != http.StatusOK {
		t.Fatalf("depart failed with %d: %v", status, body)
	}
	if body["status"] != "in_transit" {
		t.Fatalf("expected in_transit after depart, got %v", body["status"])
	}
	if body["departure_time"] == nil {
		t.Fatal("depart should stamp departure_time")
	}

	// Departing twice is an invalid transition.
	if status, _ := doJSON(t, app, http.MethodPost, batchPath+"/depart", token, nil); status != http.StatusBadRequest {
		t.Fatalf("second depart should fail, got %d", status)
	}

	status, body = doJSON(t, app, http.MethodPost, batchPath+"/arrive", token, nil)
	if status != http.StatusOK {
		t.Fatalf("arrive failed with %d: %v", status, body)
	}
	if body["status"] != "arrived" {
		t.Fatalf("expected arrived, got %v", body["status"])
	}
	if body["arrival_time"] == nil {
		t.Fatal("arrive should stamp arrival_time")
	}

	// An arrived batch cannot be cancelled.
	if status, _ = doJSON(t, app, http.MethodPost, batchPath+"/cancel", token, nil); status != http.StatusBadRequest {
		t.Fatalf("cancel from arrived should fail, got %d", status)
	}
}

func TestBatchDeliveryRequiresFullReconciliation(t *testing.T) {
	app := newTestApp(t)
	token := loginAdmin(t, app)
	farmID, packhouseID := createRoute(t, app, token)
	batch := createBatch(t, app, token, farmID, packhouseID)
	batchPath := fmt.Sprintf("/api/v1/batches/%v", batch["id"])

	qrCode := services.GenerateQRValue("crate")
	status, body := doJSON(t, app, http.MethodPost, batchPath+"/add-minimal-crate", token, map[string]interface{}{
		"qr_code":    qrCode,
		"variety_id": 1,
		"weight":     9.5,
	})
	if status != http.StatusCreated {
		t.Fatalf("add minimal crate failed with %d: %v", status, body)
	}
	if body["total_crates"].(float64) != 1 {
		t.Fatalf("expected total_crates 1, got %v", body["total_crates"])
	}
	if body["total_weight"].(float64) != 9.5 {
		t.Fatalf("expected total_weight 9.5, got %v", body["total_weight"])
	}

	doJSON(t, app, http.MethodPost, batchPath+"/depart", token, nil)
	doJSON(t, app, http.MethodPost, batchPath+"/arrive", token, nil)

	// Reconciliation is incomplete, so delivery must be refused.
	status, body = doJSON(t, app, http.MethodPost, batchPath+"/deliver", token, nil)
	if status != http.StatusBadRequest {
		t.Fatalf("deliver before reconciliation should fail, got %d: %v", status, body)
	}

	status, body = doJSON(t, app, http.MethodPost, batchPath+"/reconcile", token, map[string]interface{}{
		"qr_code": qrCode,
		"weight":  9.0,
	})
	if status != http.StatusCreated {
		t.Fatalf("reconcile failed with %d: %v", status, body)
	}
	if diff := body["weight_differential"].(float64); diff != -0.5 {
		t.Fatalf("expected weight differential -0.5, got %v", diff)
	}
	if body["reconciliation_complete"] != true {
		t.Fatalf("expected reconciliation complete, got %v", body)
	}

	// Reconciling the same crate again is a conflict.
	if status, _ = doJSON(t, app, http.MethodPost, batchPath+"/reconcile", token, map[string]interface{}{
		"qr_code": qrCode,
	}); status != http.StatusConflict {
		t.Fatalf("duplicate reconcile should return 409, got %d", status)
	}

	status, body = doJSON(t, app, http.MethodPost, batchPath+"/deliver", token, nil)
	if status != http.StatusOK {
		t.Fatalf("deliver after reconciliation failed with %d: %v", status, body)
	}
	if body["status"] != "delivered" {
		t.Fatalf("expected delivered, got %v", body["status"])
	}

	status, body = doJSON(t, app, http.MethodPost, batchPath+"/close", token, nil)
	if status != http.StatusOK {
		t.Fatalf("close failed with %d: %v", status, body)
	}
	if body["status"] != "closed" {
		t.Fatalf("expected closed, got %v", body["status"])
	}
}

func TestCratesOnlyAttachWhileBatchOpen(t *testing.T) {
	app := newTestApp(t)
	token := loginAdmin(t, app)
	farmID, packhouseID := createRoute(t, app, token)
	batch := createBatch(t, app, token, farmID, packhouseID)
	batchPath := fmt.Sprintf("/api/v1/batches/%v", batch["id"])

	doJSON(t, app, http.MethodPost, batchPath+"/depart", token, nil)

	status, body := doJSON(t, app, http.MethodPost, batchPath+"/add-minimal-crate", token, map[string]interface{}{
		"qr_code":    services.GenerateQRValue("crate"),
		"variety_id": 1,
	})
	if status != http.StatusBadRequest {
		t.Fatalf("adding a crate to an in_transit batch should fail, got %d: %v", status, body)
	}

	// The batch-assign path tolerates in_transit for late truck scans.
	status, crate := doJSON(t, app, http.MethodPost, "/api/v1/crates/", token, map[string]interface{}{
		"qr_code":      services.GenerateQRValue("crate"),
		"variety_id":   1,
		"weight":       7.0,
		"gps_location": map[string]float64{"lat": 16.99, "lng": 73.31},
	})
	if status != http.StatusCreated {
		t.Fatalf("create crate failed with %d: %v", status, crate)
	}

	status, body = doJSON(t, app, http.MethodPost, "/api/v1/crates/batch-assign", token, map[string]interface{}{
		"qr_code":  crate["qr_code"],
		"batch_id": batch["id"],
	})
	if status != http.StatusOK {
		t.Fatalf("batch-assign to in_transit batch failed with %d: %v", status, body)
	}
}

func TestCrateCreationRequiresGPS(t *testing.T) {
	app := newTestApp(t)
	token := loginAdmin(t, app)

	status, body := doJSON(t, app, http.MethodPost, "/api/v1/crates/", token, map[string]interface{}{
		"qr_code":    services.GenerateQRValue("crate"),
		"variety_id": 1,
		"weight":     5.0,
	})
	if status != http.StatusBadRequest {
		t.Fatalf("crate without GPS should be rejected, got %d: %v", status, body)
	}
	if detail, _ := body["detail"].(string); !strings.Contains(detail, "GPS") {
		t.Fatalf("expected a GPS error detail, got %v", body)
	}
}

func TestCrateDefaultsAndDuplicates(t *testing.T) {
	app := newTestApp(t)
	token := loginAdmin(t, app)

	qrCode := services.GenerateQRValue("crate")
	payload := map[string]interface{}{
		"qr_code":      qrCode,
		"variety_id":   1,
		"gps_location": map[string]float64{"lat": 16.99, "lng": 73.31},
	}

	status, crate := doJSON(t, app, http.MethodPost, "/api/v1/crates/", token, payload)
	if status != http.StatusCreated {
		t.Fatalf("create crate failed with %d: %v", status, crate)
	}
	if crate["weight"].(float64) != 1.0 {
		t.Fatalf("unweighed crate should default to 1.0, got %v", crate["weight"])
	}

	// Same QR again is a conflict.
	if status, _ = doJSON(t, app, http.MethodPost, "/api/v1/crates/", token, payload); status != http.StatusConflict {
		t.Fatalf("duplicate QR should return 409, got %d", status)
	}

	// Malformed QR values never reach the database.
	badPayload := map[string]interface{}{
		"qr_code":      "CRATE-123",
		"variety_id":   1,
		"gps_location": map[string]float64{"lat": 16.99, "lng": 73.31},
	}
	if status, _ = doJSON(t, app, http.MethodPost, "/api/v1/crates/", token, badPayload); status != http.StatusBadRequest {
		t.Fatalf("malformed QR should return 400, got %d", status)
	}
}

func TestCrateCannotJoinTwoBatches(t *testing.T) {
	app := newTestApp(t)
	token := loginAdmin(t, app)
	farmID, packhouseID := createRoute(t, app, token)
	first := createBatch(t, app, token, farmID, packhouseID)
	second := createBatch(t, app, token, farmID, packhouseID)

	qrCode := services.GenerateQRValue("crate")
	firstPath := fmt.Sprintf("/api/v1/batches/%v/add-minimal-crate", first["id"])
	if status, body := doJSON(t, app, http.MethodPost, firstPath, token, map[string]interface{}{
		"qr_code":    qrCode,
		"variety_id": 1,
	}); status != http.StatusCreated {
		t.Fatalf("add crate failed with %d: %v", status, body)
	}

	// Re-adding to the same batch is a no-op success.
	secondAdd := fmt.Sprintf("/api/v1/batches/%v/add-crate", first["id"])
	status, body := doJSON(t, app, http.MethodPost, secondAdd, token, map[string]interface{}{"qr_code": qrCode})
	if status != http.StatusOK {
		t.Fatalf("re-adding to the same batch should succeed, got %d: %v", status, body)
	}

	// Another batch cannot steal the crate.
	otherAdd := fmt.Sprintf("/api/v1/batches/%v/add-crate", second["id"])
	if status, _ := doJSON(t, app, http.MethodPost, otherAdd, token, map[string]interface{}{"qr_code": qrCode}); status != http.StatusConflict {
		t.Fatalf("adding to a second batch should return 409, got %d", status)
	}
}

func TestListEnvelopeShape(t *testing.T) {
	app := newTestApp(t)
	token := loginAdmin(t, app)
	createRoute(t, app, token)

	status, body := doJSON(t, app, http.MethodGet, "/api/v1/farms/", token, nil)
	if status != http.StatusOK {
		t.Fatalf("list farms failed with %d: %v", status, body)
	}
	for _, key := range []string{"farms", "total", "page", "page_size"} {
		if _, ok := body[key]; !ok {
			t.Fatalf("list envelope missing %q: %v", key, body)
		}
	}
	if body["total"].(float64) != 1 {
		t.Fatalf("expected total 1, got %v", body["total"])
	}

	status, body = doJSON(t, app, http.MethodGet, "/api/v1/varieties/", token, nil)
	if status != http.StatusOK {
		t.Fatalf("list varieties failed with %d: %v", status, body)
	}
	if body["total"].(float64) != 3 {
		t.Fatalf("expected the three seeded varieties, got %v", body["total"])
	}
}

func TestAuthGuards(t *testing.T) {
	app := newTestApp(t)

	status, body := doJSON(t, app, http.MethodGet, "/api/v1/farms/", "", nil)
	if status != http.StatusUnauthorized {
		t.Fatalf("unauthenticated request should return 401, got %d: %v", status, body)
	}
	if _, ok := body["detail"]; !ok {
		t.Fatalf("error envelope should carry a detail field: %v", body)
	}

	token := loginAdmin(t, app)

	// A harvester cannot mint users.
	status, user := doJSON(t, app, http.MethodPost, "/api/v1/users/", token, map[string]interface{}{
		"username": "picker1",
		"email":    "picker1@example.com",
		"password": "harvest123",
		"role":     "harvester",
	})
	if status != http.StatusCreated {
		t.Fatalf("create harvester failed with %d: %v", status, user)
	}

	status, login := doJSON(t, app, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": "picker1",
		"password": "harvest123",
	})
	if status != http.StatusOK {
		t.Fatalf("harvester login failed with %d: %v", status, login)
	}
	harvesterToken := login["access_token"].(string)

	if status, _ := doJSON(t, app, http.MethodPost, "/api/v1/users/", harvesterToken, map[string]interface{}{
		"username": "picker2",
		"email":    "picker2@example.com",
		"password": "harvest123",
		"role":     "harvester",
	}); status != http.StatusForbidden {
		t.Fatalf("harvester creating users should return 403, got %d", status)
	}
}

func TestDashboardSummary(t *testing.T) {
	app := newTestApp(t)
	token := loginAdmin(t, app)
	farmID, packhouseID := createRoute(t, app, token)
	createBatch(t, app, token, farmID, packhouseID)

	status, body := doJSON(t, app, http.MethodGet, "/api/v1/dashboard/summary", token, nil)
	if status != http.StatusOK {
		t.Fatalf("dashboard summary failed with %d: %v", status, body)
	}
	byStatus, ok := body["batches_by_status"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected batches_by_status map, got %v", body)
	}
	if byStatus["open"].(float64) != 1 {
		t.Fatalf("expected one open batch, got %v", byStatus)
	}
}
