package services

import (
	"bytes"
	"image/png"
	"strings"
	"testing"
	"time"

	"asikh-oms/models"
)

func TestGenerateQRValueFormat(t *testing.T) {
	crate := GenerateQRValue(models.QREntityCrate)
	if !strings.HasPrefix(crate, "ASIKH-CRATE-") {
		t.Errorf("crate code has wrong prefix: %s", crate)
	}
	if err := ValidateQRValue(crate); err != nil {
		t.Errorf("generated crate code should validate: %v", err)
	}

	batch := GenerateQRValue(models.QREntityBatch)
	if !strings.HasPrefix(batch, "ASIKH-BATCH-") {
		t.Errorf("batch code has wrong prefix: %s", batch)
	}
	if err := ValidateQRValue(batch); err != nil {
		t.Errorf("generated batch code should validate: %v", err)
	}

	if crate == GenerateQRValue(models.QREntityCrate) {
		t.Error("two generated codes should not collide")
	}
}

func TestValidateQRValueRejectsGarbage(t *testing.T) {
	bad := []string{
		"",
		"ASIKH-CRATE-",
		"ASIKH-CRATE-not-a-uuid",
		"CRATE-123e4567-e89b-12d3-a456-426614174000",
		"ASIKH-PALLET-123e4567-e89b-12d3-a456-426614174000",
	}
	for _, v := range bad {
		if err := ValidateQRValue(v); err == nil {
			t.Errorf("%q should be rejected", v)
		}
	}

	// Case-insensitive match on the prefix and entity.
	if err := ValidateQRValue("asikh-crate-123e4567-e89b-12d3-a456-426614174000"); err != nil {
		t.Errorf("lowercase code should validate: %v", err)
	}
}

func TestRenderQRPNG(t *testing.T) {
	data, err := RenderQRPNG(GenerateQRValue(models.QREntityCrate), 256)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("output is not a valid PNG: %v", err)
	}
	if img.Bounds().Dx() != 256 || img.Bounds().Dy() != 256 {
		t.Errorf("expected 256x256, got %v", img.Bounds())
	}
}

func TestRenderQRLabelsPDF(t *testing.T) {
	codes := []string{
		GenerateQRValue(models.QREntityCrate),
		GenerateQRValue(models.QREntityCrate),
		GenerateQRValue(models.QREntityCrate),
		GenerateQRValue(models.QREntityCrate),
		GenerateQRValue(models.QREntityCrate),
	}

	data, err := RenderQRLabelsPDF(codes, time.Now())
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Error("output is not a PDF")
	}

	if _, err := RenderQRLabelsPDF(nil, time.Now()); err == nil {
		t.Error("empty label list should be rejected")
	}
}

func TestShortCode(t *testing.T) {
	got := shortCode("ASIKH-CRATE-123e4567-e89b-12d3-a456-426614174000")
	if got != "ASIKH-CRATE-123e4567" {
		t.Errorf("unexpected short code %q", got)
	}
	if shortCode("plain") != "plain" {
		t.Error("values without enough segments pass through unchanged")
	}
}
