package controllers

import (
	"errors"
	"fmt"
	"time"

	"asikh-oms/models"
	"asikh-oms/services"

	"github.com/go-playground/validator"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const maxBulkQRCodes = 100

type QRCodeController struct {
	DB *gorm.DB
}

func NewQRCodeController(db *gorm.DB) *QRCodeController {
	return &QRCodeController{DB: db}
}

func (c *QRCodeController) CreateQRCode(ctx *fiber.Ctx) error {
	var input struct {
		EntityType string `json:"entity_type"`
	}
	_ = ctx.BodyParser(&input)

	if input.EntityType == "" {
		input.EntityType = models.QREntityCrate
	}
	if input.EntityType != models.QREntityCrate && input.EntityType != models.QREntityBatch {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "Invalid entity type: " + input.EntityType})
	}

	qr := models.QRCode{
		CodeValue:  services.GenerateQRValue(input.EntityType),
		Status:     models.QRStatusActive,
		EntityType: input.EntityType,
	}

	if err := c.DB.Create(&qr).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": err.Error()})
	}

	return ctx.Status(fiber.StatusCreated).JSON(qr)
}

// CreateQRCodeBatch mints up to 100 codes in one call for label printing runs.
func (c *QRCodeController) CreateQRCodeBatch(ctx *fiber.Ctx) error {
	var input struct {
		Count      int    `json:"count" validate:"required,min=1"`
		EntityType string `json:"entity_type"`
	}

	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": err.Error()})
	}

	validate := validator.New()
	if err := validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": err.Error()})
	}

	if input.Count > maxBulkQRCodes {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": fmt.Sprintf("Count exceeds the maximum of %d", maxBulkQRCodes)})
	}

	if input.EntityType == "" {
		input.EntityType = models.QREntityCrate
	}
	if input.EntityType != models.QREntityCrate && input.EntityType != models.QREntityBatch {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "Invalid entity type: " + input.EntityType})
	}

	codes := make([]models.QRCode, 0, input.Count)
	for i := 0; i < input.Count; i++ {
		codes = append(codes, models.QRCode{
			CodeValue:  services.GenerateQRValue(input.EntityType),
			Status:     models.QRStatusActive,
			EntityType: input.EntityType,
		})
	}

	if err := c.DB.Create(&codes).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": err.Error()})
	}

	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{
		"qr_codes": codes,
		"count":    len(codes),
	})
}

func (c *QRCodeController) ListQRCodes(ctx *fiber.Ctx) error {
	page, pageSize := parsePagination(ctx)

	query := c.DB.Model(&models.QRCode{})
	if status := ctx.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if entityType := ctx.Query("entity_type"); entityType != "" {
		query = query.Where("entity_type = ?", entityType)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": err.Error()})
	}

	var codes []models.QRCode
	if err := query.Order("id DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&codes).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": err.Error()})
	}

	return ctx.JSON(fiber.Map{
		"qr_codes":  codes,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

func (c *QRCodeController) GetQRCodeByID(ctx *fiber.Ctx) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "Invalid ID"})
	}

	var qr models.QRCode
	if err := c.DB.First(&qr, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"detail": "QR code not found"})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": err.Error()})
	}

	return ctx.JSON(qr)
}

func (c *QRCodeController) GetQRCodeByValue(ctx *fiber.Ctx) error {
	value := ctx.Params("value")
	if err := services.ValidateQRValue(value); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": err.Error()})
	}

	var qr models.QRCode
	if err := c.DB.Where("code_value = ?", value).First(&qr).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"detail": "QR code not found"})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": err.Error()})
	}

	return ctx.JSON(qr)
}

func (c *QRCodeController) UpdateQRCodeStatus(ctx *fiber.Ctx) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "Invalid ID"})
	}

	var input struct {
		Status string `json:"status" validate:"required"`
	}
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": err.Error()})
	}

	validate := validator.New()
	if err := validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": err.Error()})
	}

	if !models.IsValidQRStatus(input.Status) {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "Invalid status: " + input.Status})
	}

	var qr models.QRCode
	if err := c.DB.First(&qr, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"detail": "QR code not found"})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": err.Error()})
	}

	qr.Status = input.Status
	if err := c.DB.Save(&qr).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": err.Error()})
	}

	return ctx.JSON(qr)
}

// GetQRCodeImage streams the code as a PNG, default 256px.
func (c *QRCodeController) GetQRCodeImage(ctx *fiber.Ctx) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "Invalid ID"})
	}

	size := ctx.QueryInt("size", 256)
	if size < 64 || size > 1024 {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "Size must be between 64 and 1024"})
	}

	var qr models.QRCode
	if err := c.DB.First(&qr, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"detail": "QR code not found"})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": err.Error()})
	}

	png, err := services.RenderQRPNG(qr.CodeValue, size)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": err.Error()})
	}

	ctx.Set("Content-Type", "image/png")
	return ctx.Send(png)
}

// DownloadQRCodeLabels builds a printable PDF sheet from code IDs.
func (c *QRCodeController) DownloadQRCodeLabels(ctx *fiber.Ctx) error {
	var input struct {
		IDs []uint `json:"ids" validate:"required,min=1"`
	}

	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": err.Error()})
	}

	validate := validator.New()
	if err := validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": err.Error()})
	}

	var codes []models.QRCode
	if err := c.DB.Where("id IN ?", input.IDs).Find(&codes).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": err.Error()})
	}
	if len(codes) == 0 {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"detail": "No QR codes found for the given IDs"})
	}

	values := make([]string, 0, len(codes))
	for _, qr := range codes {
		values = append(values, qr.CodeValue)
	}

	pdf, err := services.RenderQRLabelsPDF(values, time.Now())
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": err.Error()})
	}

	ctx.Set("Content-Type", "application/pdf")
	ctx.Set("Content-Disposition", "attachment; filename=qr_labels.pdf")
	return ctx.Send(pdf)
}
