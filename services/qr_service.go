package services

import (
	"bytes"
	"fmt"
	"image/png"
	"regexp"
	"strings"
	"time"

	"asikh-oms/models"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"
	"github.com/google/uuid"
	"github.com/jung-kurt/gofpdf"
)

// QR code format: ASIKH-{CRATE|BATCH}-{uuid}
var qrCodeRegex = regexp.MustCompile(`(?i)^ASIKH-(CRATE|BATCH)-[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

// GenerateQRValue mints a new code value for the given entity type.
func GenerateQRValue(entityType string) string {
	prefix := "CRATE"
	if entityType == models.QREntityBatch {
		prefix = "BATCH"
	}
	return fmt.Sprintf("ASIKH-%s-%s", prefix, uuid.NewString())
}

// ValidateQRValue checks a code value against the expected format.
func ValidateQRValue(codeValue string) error {
	if !qrCodeRegex.MatchString(codeValue) {
		return fmt.Errorf("invalid QR code format: %s", codeValue)
	}
	return nil
}

// RenderQRPNG renders the code value as a PNG image of the given pixel size.
func RenderQRPNG(codeValue string, size int) ([]byte, error) {
	if size <= 0 {
		size = 256
	}
	code, err := qr.Encode(codeValue, qr.M, qr.Auto)
	if err != nil {
		return nil, err
	}
	code, err = barcode.Scale(code, size, size)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, code); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// RenderQRLabelsPDF lays out printable crate labels, one QR per label,
// four labels per A4 page.
func RenderQRLabelsPDF(codeValues []string, printedAt time.Time) ([]byte, error) {
	if len(codeValues) == 0 {
		return nil, fmt.Errorf("no labels to render")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Crate QR Labels", false)

	const (
		labelW  = 90.0
		labelH  = 120.0
		marginX = 12.0
		marginY = 15.0
		qrSide  = 70.0
	)

	for i, codeValue := range codeValues {
		pos := i % 4
		if pos == 0 {
			pdf.AddPage()
		}
		col := float64(pos % 2)
		row := float64(pos / 2)
		x := marginX + col*(labelW+6)
		y := marginY + row*(labelH+10)

		qrPNG, err := RenderQRPNG(codeValue, 600)
		if err != nil {
			return nil, err
		}

		imgName := fmt.Sprintf("qr-%d", i)
		pdf.RegisterImageOptionsReader(imgName, gofpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(qrPNG))
		pdf.ImageOptions(imgName, x+(labelW-qrSide)/2, y, qrSide, qrSide, false, gofpdf.ImageOptions{ImageType: "PNG"}, 0, "")

		pdf.SetFont("Helvetica", "B", 9)
		pdf.SetXY(x, y+qrSide+4)
		pdf.CellFormat(labelW, 5, shortCode(codeValue), "", 0, "C", false, 0, "")

		pdf.SetFont("Helvetica", "", 7)
		pdf.SetXY(x, y+qrSide+10)
		pdf.CellFormat(labelW, 4, "Printed "+printedAt.Format("2006-01-02 15:04"), "", 0, "C", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// shortCode keeps the printed caption readable: prefix plus the first uuid
// block.
func shortCode(codeValue string) string {
	parts := strings.Split(codeValue, "-")
	if len(parts) < 3 {
		return codeValue
	}
	return strings.Join(parts[:3], "-")
}
