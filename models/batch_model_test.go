package models

import (
	"strings"
	"testing"
)

func TestValidateBatchTransition(t *testing.T) {
	cases := []struct {
		current string
		next    string
		wantOK  bool
	}{
		{BatchStatusOpen, BatchStatusInTransit, true},
		{BatchStatusOpen, BatchStatusArrived, true},
		{BatchStatusOpen, BatchStatusCancelled, true},
		{BatchStatusOpen, BatchStatusDelivered, false},
		{BatchStatusOpen, BatchStatusClosed, false},
		{BatchStatusInTransit, BatchStatusArrived, true},
		{BatchStatusInTransit, BatchStatusCancelled, true},
		{BatchStatusInTransit, BatchStatusOpen, false},
		{BatchStatusInTransit, BatchStatusDelivered, false},
		{BatchStatusArrived, BatchStatusDelivered, true},
		{BatchStatusArrived, BatchStatusCancelled, false},
		{BatchStatusDelivered, BatchStatusClosed, true},
		{BatchStatusDelivered, BatchStatusArrived, false},
		{BatchStatusClosed, BatchStatusOpen, false},
		{BatchStatusClosed, BatchStatusDelivered, false},
		{BatchStatusCancelled, BatchStatusOpen, false},
	}

	for _, tc := range cases {
		err := ValidateBatchTransition(tc.current, tc.next)
		if tc.wantOK && err != nil {
			t.Errorf("%s -> %s should be allowed, got %v", tc.current, tc.next, err)
		}
		if !tc.wantOK && err == nil {
			t.Errorf("%s -> %s should be rejected", tc.current, tc.next)
		}
	}
}

func TestValidateBatchTransitionUnknownStatus(t *testing.T) {
	err := ValidateBatchTransition("teleporting", BatchStatusArrived)
	if err == nil {
		t.Fatal("unknown status should be rejected")
	}
	if !strings.Contains(err.Error(), "teleporting") {
		t.Errorf("error should name the unknown status, got %v", err)
	}
}

func TestTransitionErrorNamesAllowedTargets(t *testing.T) {
	err := ValidateBatchTransition(BatchStatusArrived, BatchStatusClosed)
	if err == nil {
		t.Fatal("arrived -> closed should be rejected")
	}
	if !strings.Contains(err.Error(), BatchStatusDelivered) {
		t.Errorf("error should list the allowed transitions, got %v", err)
	}
}

func TestBatchGatingHelpers(t *testing.T) {
	b := &Batch{Status: BatchStatusOpen}
	if !b.CanAcceptCrates() {
		t.Error("open batch should accept crates")
	}
	if b.CanReconcile() {
		t.Error("open batch should not reconcile")
	}

	b.Status = BatchStatusInTransit
	if b.CanAcceptCrates() {
		t.Error("in_transit batch should not accept crates")
	}

	b.Status = BatchStatusArrived
	if !b.CanReconcile() {
		t.Error("arrived batch should reconcile")
	}

	b.Status = BatchStatusDelivered
	if !b.CanReconcile() {
		t.Error("delivered batch should reconcile")
	}

	b.Status = BatchStatusClosed
	if b.CanReconcile() || b.CanAcceptCrates() {
		t.Error("closed batch should be inert")
	}
}
