package services

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"asikh-oms/config"
	"asikh-oms/controllers/idgen"
)

// Images above this size are rejected rather than stored.
const maxImageSize = 5 * 1024 * 1024

// SaveCratePhoto decodes a base64 payload (with or without a data-URL
// header) and writes it under the configured storage directory. Returns the
// public URL path of the stored file.
func SaveCratePhoto(base64Data, qrCode string) (string, error) {
	if idx := strings.Index(base64Data, ","); idx >= 0 {
		base64Data = base64Data[idx+1:]
	}
	if len(base64Data) < 100 {
		return "", fmt.Errorf("invalid or empty image data")
	}

	imageData, err := base64.StdEncoding.DecodeString(base64Data)
	if err != nil {
		return "", fmt.Errorf("invalid base64 image data: %w", err)
	}
	if len(imageData) > maxImageSize {
		return "", fmt.Errorf("image too large (%d bytes, limit %d)", len(imageData), maxImageSize)
	}

	if err := os.MkdirAll(config.StorageDir, 0o755); err != nil {
		return "", err
	}

	filename := fmt.Sprintf("%s_%d.jpg", sanitizeFilename(qrCode), idgen.GenerateID())
	if err := os.WriteFile(filepath.Join(config.StorageDir, filename), imageData, 0o644); err != nil {
		return "", err
	}

	return config.StorageURL + "/" + filename, nil
}

func sanitizeFilename(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
}
