package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDecodeListEnvelope(t *testing.T) {
	body := []byte(`{"farms": [{"id": 1, "name": "a"}, {"id": 2, "name": "b"}], "total": 2, "page": 1, "page_size": 20}`)
	items, ok := DecodeList(body, "farms")
	if !ok {
		t.Fatal("envelope payload should decode")
	}
	if len(items) != 2 || items[0].ID() != 1 || items[1].ID() != 2 {
		t.Fatalf("unexpected items: %v", items)
	}
}

func TestDecodeListBareArray(t *testing.T) {
	items, ok := DecodeList([]byte(`[{"id": 1}, {"id": 2}]`), "farms")
	if !ok {
		t.Fatal("bare array payload should decode")
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
}

func TestDecodeListUnrecognizedShape(t *testing.T) {
	for _, body := range []string{
		`{"unexpected": true}`,
		`{"farms": "oops"}`,
		`"just a string"`,
		`42`,
	} {
		items, ok := DecodeList([]byte(body), "farms")
		if ok {
			t.Errorf("%s should not decode cleanly", body)
		}
		if items == nil || len(items) != 0 {
			t.Errorf("%s should yield an empty collection, got %v", body, items)
		}
	}
}

func TestParseErrorDetailString(t *testing.T) {
	if got := parseErrorDetail([]byte(`{"detail": "Farm not found"}`)); got != "Farm not found" {
		t.Errorf("unexpected detail %q", got)
	}
}

func TestParseErrorDetailValidationArray(t *testing.T) {
	body := []byte(`{"detail": [{"msg": "name is required"}, {"msg": "weight must be positive"}]}`)
	got := parseErrorDetail(body)
	if got != "name is required; weight must be positive" {
		t.Errorf("unexpected detail %q", got)
	}
}

func TestParseErrorDetailFallback(t *testing.T) {
	for _, body := range []string{``, `{}`, `not json`, `{"detail": null}`} {
		if got := parseErrorDetail([]byte(body)); got != fallbackErrorMessage {
			t.Errorf("%q: expected fallback message, got %q", body, got)
		}
	}
}

func TestClientListAgainstServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer token123" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"detail": "Missing Authorization header"})
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"varieties": []map[string]interface{}{{"id": 1, "name": "Alphonso"}},
			"total":     1,
		})
	}))
	defer srv.Close()

	c := New(srv.URL)
	if _, err := c.List(context.Background(), "/varieties", "varieties", nil); err == nil {
		t.Fatal("unauthenticated list should fail")
	}

	c.Token = "token123"
	items, err := c.List(context.Background(), "/varieties", "varieties", nil)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(items) != 1 || items[0]["name"] != "Alphonso" {
		t.Fatalf("unexpected items: %v", items)
	}
}

func TestClientErrorCarriesServerDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]string{"detail": "Crate is already assigned to another batch"})
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.Create(context.Background(), "/crates", map[string]string{"qr_code": "x"})
	if err == nil {
		t.Fatal("expected an error")
	}

	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("expected *APIError, got %T", err)
	}
	if apiErr.StatusCode != http.StatusConflict {
		t.Errorf("expected 409, got %d", apiErr.StatusCode)
	}
	if apiErr.Detail != "Crate is already assigned to another batch" {
		t.Errorf("unexpected detail %q", apiErr.Detail)
	}
}

func TestClientLoginStoresToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/login" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "abc123",
			"token_type":   "bearer",
		})
	}))
	defer srv.Close()

	c := New(srv.URL)
	if _, err := c.Login(context.Background(), "admin", "adminpass"); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if c.Token != "abc123" {
		t.Errorf("token not stored, got %q", c.Token)
	}
}
