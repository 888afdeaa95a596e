package client

import (
	"errors"
	"reflect"
	"testing"
)

func populatedStore() *Store {
	s := NewStore("farms")
	s.LoadFulfilled([]byte(`{"farms": [{"id": 1, "name": "a"}, {"id": 2, "name": "b"}]}`))
	return s
}

func TestStoreLoadCycle(t *testing.T) {
	s := NewStore("farms")
	if s.State != StateIdle {
		t.Fatalf("new store should be idle, got %s", s.State)
	}

	s.LoadStart()
	if s.State != StateLoading {
		t.Fatalf("expected loading, got %s", s.State)
	}

	s.LoadFulfilled([]byte(`{"farms": [{"id": 1}]}`))
	if s.State != StatePopulated || len(s.Items) != 1 {
		t.Fatalf("expected populated with 1 item, got %s %v", s.State, s.Items)
	}

	s.LoadStart()
	s.LoadRejected(errors.New("connection refused"))
	if s.State != StateErrored {
		t.Fatalf("expected errored, got %s", s.State)
	}
	if s.FormError != "connection refused" {
		t.Fatalf("unexpected form error %q", s.FormError)
	}
}

func TestStoreGarbagePayloadEmptiesCache(t *testing.T) {
	s := populatedStore()
	s.LoadFulfilled([]byte(`{"surprise": 1}`))
	if len(s.Items) != 0 {
		t.Fatalf("unrecognized shape should empty the cache, got %v", s.Items)
	}
}

func TestStoreCreateAppendsOnce(t *testing.T) {
	s := populatedStore()
	s.MutationPending()
	s.CreateFulfilled(Entity{"id": float64(3), "name": "c"})

	if len(s.Items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(s.Items))
	}
	if s.Items[2].ID() != 3 {
		t.Fatalf("new entity should be appended at the end, got %v", s.Items)
	}
	if s.Saving {
		t.Error("saving flag should clear on fulfillment")
	}
}

func TestStoreUpdateReplacesOnlyMatch(t *testing.T) {
	s := populatedStore()
	s.MutationPending()
	s.UpdateFulfilled(Entity{"id": float64(2), "name": "b2"})

	if len(s.Items) != 2 {
		t.Fatalf("update should not change the count, got %d", len(s.Items))
	}
	if s.Items[0]["name"] != "a" {
		t.Errorf("untouched entry changed: %v", s.Items[0])
	}
	if s.Items[1]["name"] != "b2" {
		t.Errorf("matching entry not replaced: %v", s.Items[1])
	}

	// Unknown id is a no-op.
	before := make([]Entity, len(s.Items))
	copy(before, s.Items)
	s.UpdateFulfilled(Entity{"id": float64(99), "name": "ghost"})
	if !reflect.DeepEqual(before, s.Items) {
		t.Errorf("update with unknown id mutated the cache: %v", s.Items)
	}
}

func TestStoreDeleteRemovesOnlyMatch(t *testing.T) {
	s := populatedStore()
	s.MutationPending()
	s.DeleteFulfilled(1)

	if len(s.Items) != 1 {
		t.Fatalf("expected 1 item after delete, got %d", len(s.Items))
	}
	if s.Items[0].ID() != 2 {
		t.Fatalf("wrong entry removed: %v", s.Items)
	}
}

func TestStoreRejectedMutationLeavesCacheUnchanged(t *testing.T) {
	s := populatedStore()
	before := make([]Entity, len(s.Items))
	copy(before, s.Items)

	s.MutationPending()
	if s.FormError != "" {
		t.Error("pending should clear the prior form error")
	}
	s.MutationRejected(&APIError{StatusCode: 409, Detail: "Variety with this name already exists"})

	if !reflect.DeepEqual(before, s.Items) {
		t.Fatalf("rejected mutation changed the cache: %v", s.Items)
	}
	if s.FormError != "Variety with this name already exists" {
		t.Fatalf("form error should hold the server detail, got %q", s.FormError)
	}
	if s.Saving {
		t.Error("saving flag should clear on rejection")
	}
}

func TestStoreRejectedWithoutDetailFallsBack(t *testing.T) {
	s := populatedStore()
	s.MutationPending()
	s.MutationRejected(nil)
	if s.FormError != fallbackErrorMessage {
		t.Fatalf("expected fallback message, got %q", s.FormError)
	}
}

func TestCrateSubmissionPreconditions(t *testing.T) {
	valid := CrateSubmission{
		QRCode:       "ASIKH-CRATE-123e4567-e89b-12d3-a456-426614174000",
		BatchID:      4,
		Weight:       9.5,
		SupervisorID: 2,
		VarietyID:    1,
		Latitude:     16.99,
		Longitude:    73.31,
		HasGPSFix:    true,
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("complete submission should pass: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*CrateSubmission)
	}{
		{"missing batch", func(c *CrateSubmission) { c.BatchID = 0 }},
		{"missing weight", func(c *CrateSubmission) { c.Weight = 0 }},
		{"missing supervisor", func(c *CrateSubmission) { c.SupervisorID = 0 }},
		{"no gps fix", func(c *CrateSubmission) { c.HasGPSFix = false }},
	}
	for _, tc := range cases {
		sub := valid
		tc.mutate(&sub)
		if err := sub.Validate(); err == nil {
			t.Errorf("%s: submission should be blocked", tc.name)
		}
	}
}

func TestBatchAcceptsCrates(t *testing.T) {
	if !BatchAcceptsCrates(Entity{"status": "open"}) {
		t.Error("open batch should accept crates")
	}
	for _, status := range []string{"in_transit", "arrived", "delivered", "closed", "cancelled", ""} {
		if BatchAcceptsCrates(Entity{"status": status}) {
			t.Errorf("status %q should not accept crates", status)
		}
	}
}
