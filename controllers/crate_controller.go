package controllers

import (
	"errors"
	"time"

	"asikh-oms/middleware"
	"asikh-oms/models"
	"asikh-oms/services"

	"github.com/go-playground/validator"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type CrateController struct {
	DB *gorm.DB
}

func NewCrateController(db *gorm.DB) *CrateController {
	return &CrateController{DB: db}
}

// markQRCodeUsed flips an active code to used. A code that was never minted
// through the QR endpoints is registered on the fly so field scans keep
// working offline.
func markQRCodeUsed(tx *gorm.DB, codeValue string) error {
	var qr models.QRCode
	err := tx.Where("code_value = ?", codeValue).First(&qr).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return tx.Create(&models.QRCode{
			CodeValue:  codeValue,
			Status:     models.QRStatusUsed,
			EntityType: models.QREntityCrate,
		}).Error
	}
	if err != nil {
		return err
	}
	if qr.Status != models.QRStatusActive {
		return errors.New("QR code is not active")
	}
	qr.Status = models.QRStatusUsed
	return tx.Save(&qr).Error
}

func (c *CrateController) CreateCrate(ctx *fiber.Ctx) error {
	var input struct {
		QRCode       string             `json:"qr_code" validate:"required"`
		HarvestDate  *time.Time         `json:"harvest_date"`
		GPSLocation  models.GPSLocation `json:"gps_location"`
		PhotoBase64  string             `json:"photo_base64"`
		SupervisorID uint               `json:"supervisor_id"`
		Weight       float64            `json:"weight"`
		Notes        string             `json:"notes"`
		VarietyID    uint               `json:"variety_id" validate:"required"`
		FarmID       *uint              `json:"farm_id"`
		QualityGrade string             `json:"quality_grade"`
	}

	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": err.Error()})
	}

	validate := validator.New()
	if err := validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": err.Error()})
	}

	if err := services.ValidateQRValue(input.QRCode); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": err.Error()})
	}

	// Harvest provenance requires a fix. Refuse crates without one.
	if input.GPSLocation.IsZero() {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "GPS location is required"})
	}

	if input.QualityGrade != "" && !models.IsValidQualityGrade(input.QualityGrade) {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "Invalid quality grade: " + input.QualityGrade})
	}

	var existing models.Crate
	if err := c.DB.Where("qr_code = ?", input.QRCode).First(&existing).Error; err == nil {
		return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{"detail": "Crate with this QR code already exists"})
	}

	var variety models.Variety
	if err := c.DB.First(&variety, input.VarietyID).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"detail": "Variety not found"})
	}

	if input.FarmID != nil {
		var farm models.Farm
		if err := c.DB.First(&farm, *input.FarmID).Error; err != nil {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"detail": "Farm not found"})
		}
	}

	supervisorID := input.SupervisorID
	if supervisorID == 0 {
		supervisorID = middleware.CurrentUserID(ctx)
	}
	var supervisor models.User
	if err := c.DB.First(&supervisor, supervisorID).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"detail": "Supervisor not found"})
	}

	harvestDate := time.Now()
	if input.HarvestDate != nil {
		harvestDate = *input.HarvestDate
	}

	weight := input.Weight
	if weight <= 0 {
		weight = models.DefaultCrateWeight
	}

	photoURL := ""
	if input.PhotoBase64 != "" {
		url, err := services.SaveCratePhoto(input.PhotoBase64, input.QRCode)
		if err != nil {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": err.Error()})
		}
		photoURL = url
	}

	crate := models.Crate{
		QRCode:       input.QRCode,
		HarvestDate:  harvestDate,
		GPSLocation:  input.GPSLocation,
		PhotoURL:     photoURL,
		SupervisorID: supervisorID,
		Weight:       weight,
		Notes:        input.Notes,
		VarietyID:    input.VarietyID,
		FarmID:       input.FarmID,
		QualityGrade: input.QualityGrade,
	}

	txErr := c.DB.Transaction(func(tx *gorm.DB) error {
		if err := markQRCodeUsed(tx, input.QRCode); err != nil {
			return err
		}
		return tx.Create(&crate).Error
	})
	if txErr != nil {
		if txErr.Error() == "QR code is not active" {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": txErr.Error()})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": txErr.Error()})
	}

	return ctx.Status(fiber.StatusCreated).JSON(crate)
}

func (c *CrateController) ListCrates(ctx *fiber.Ctx) error {
	page, pageSize := parsePagination(ctx)

	query := c.DB.Model(&models.Crate{})
	if variety := ctx.QueryInt("variety_id", 0); variety > 0 {
		query = query.Where("variety_id = ?", variety)
	}
	if batch := ctx.QueryInt("batch_id", 0); batch > 0 {
		query = query.Where("batch_id = ?", batch)
	}
	if farm := ctx.QueryInt("farm_id", 0); farm > 0 {
		query = query.Where("farm_id = ?", farm)
	}
	if supervisor := ctx.QueryInt("supervisor_id", 0); supervisor > 0 {
		query = query.Where("supervisor_id = ?", supervisor)
	}
	if grade := ctx.Query("quality_grade"); grade != "" {
		query = query.Where("quality_grade = ?", grade)
	}
	if from := ctx.Query("harvested_after"); from != "" {
		if t, err := time.Parse(time.RFC3339, from); err == nil {
			query = query.Where("harvest_date >= ?", t)
		}
	}
	if to := ctx.Query("harvested_before"); to != "" {
		if t, err := time.Parse(time.RFC3339, to); err == nil {
			query = query.Where("harvest_date <= ?", t)
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": err.Error()})
	}

	var crates []models.Crate
	if err := query.Order("harvest_date DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&crates).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": err.Error()})
	}

	return ctx.JSON(fiber.Map{
		"crates":    crates,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// ListUnassignedCrates returns crates not yet attached to any batch.
func (c *CrateController) ListUnassignedCrates(ctx *fiber.Ctx) error {
	page, pageSize := parsePagination(ctx)

	query := c.DB.Model(&models.Crate{}).Where("batch_id IS NULL")

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": err.Error()})
	}

	var crates []models.Crate
	if err := query.Order("harvest_date DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&crates).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": err.Error()})
	}

	return ctx.JSON(fiber.Map{
		"crates":    crates,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

func (c *CrateController) GetCrateByID(ctx *fiber.Ctx) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "Invalid ID"})
	}

	var crate models.Crate
	if err := c.DB.First(&crate, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"detail": "Crate not found"})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": err.Error()})
	}

	return ctx.JSON(crate)
}

func (c *CrateController) GetCrateByQR(ctx *fiber.Ctx) error {
	qrCode := ctx.Params("qr_code")

	var crate models.Crate
	if err := c.DB.Where("qr_code = ?", qrCode).First(&crate).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"detail": "Crate not found"})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": err.Error()})
	}

	return ctx.JSON(crate)
}

func (c *CrateController) UpdateCrate(ctx *fiber.Ctx) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "Invalid ID"})
	}

	var crate models.Crate
	if err := c.DB.First(&crate, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"detail": "Crate not found"})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": err.Error()})
	}

	var input struct {
		Weight       *float64 `json:"weight"`
		Notes        *string  `json:"notes"`
		VarietyID    *uint    `json:"variety_id"`
		FarmID       *uint    `json:"farm_id"`
		QualityGrade *string  `json:"quality_grade"`
	}
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": err.Error()})
	}

	oldWeight := crate.Weight

	if input.Weight != nil {
		if *input.Weight <= 0 {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "Weight must be positive"})
		}
		crate.Weight = *input.Weight
	}
	if input.Notes != nil {
		crate.Notes = *input.Notes
	}
	if input.VarietyID != nil {
		var variety models.Variety
		if err := c.DB.First(&variety, *input.VarietyID).Error; err != nil {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"detail": "Variety not found"})
		}
		crate.VarietyID = *input.VarietyID
	}
	if input.FarmID != nil {
		var farm models.Farm
		if err := c.DB.First(&farm, *input.FarmID).Error; err != nil {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"detail": "Farm not found"})
		}
		crate.FarmID = input.FarmID
	}
	if input.QualityGrade != nil {
		if *input.QualityGrade != "" && !models.IsValidQualityGrade(*input.QualityGrade) {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "Invalid quality grade: " + *input.QualityGrade})
		}
		crate.QualityGrade = *input.QualityGrade
	}

	txErr := c.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&crate).Error; err != nil {
			return err
		}
		// Keep the batch total in sync when the field weight is corrected.
		if crate.BatchID != nil && crate.Weight != oldWeight {
			return tx.Model(&models.Batch{}).
				Where("id = ?", *crate.BatchID).
				UpdateColumn("total_weight", gorm.Expr("total_weight + ?", crate.Weight-oldWeight)).Error
		}
		return nil
	})
	if txErr != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": txErr.Error()})
	}

	return ctx.JSON(crate)
}

// AssignToBatch attaches a crate to a batch by QR code. Unlike the batch-side
// endpoint this tolerates in_transit, for crates scanned onto the truck late.
func (c *CrateController) AssignToBatch(ctx *fiber.Ctx) error {
	var input struct {
		QRCode  string `json:"qr_code" validate:"required"`
		BatchID uint   `json:"batch_id" validate:"required"`
	}

	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": err.Error()})
	}

	validate := validator.New()
	if err := validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": err.Error()})
	}

	var batch models.Batch
	if err := c.DB.First(&batch, input.BatchID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"detail": "Batch not found"})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": err.Error()})
	}

	if batch.Status != models.BatchStatusOpen && batch.Status != models.BatchStatusInTransit {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "Batch is not accepting crates in status '" + batch.Status + "'"})
	}

	var crate models.Crate
	if err := c.DB.Where("qr_code = ?", input.QRCode).First(&crate).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"detail": "Crate not found"})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": err.Error()})
	}

	if crate.BatchID != nil {
		if *crate.BatchID == batch.ID {
			return ctx.JSON(fiber.Map{
				"message":  "Crate is already in this batch",
				"crate_id": crate.ID,
				"batch_id": batch.ID,
			})
		}
		return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{"detail": "Crate is already assigned to another batch"})
	}

	txErr := c.DB.Transaction(func(tx *gorm.DB) error {
		crate.BatchID = &batch.ID
		if err := tx.Save(&crate).Error; err != nil {
			return err
		}
		batch.TotalCrates++
		batch.TotalWeight += crate.Weight
		return tx.Save(&batch).Error
	})
	if txErr != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": txErr.Error()})
	}

	return ctx.JSON(fiber.Map{
		"message":      "Crate assigned to batch",
		"crate_id":     crate.ID,
		"batch_id":     batch.ID,
		"batch_code":   batch.BatchCode,
		"total_crates": batch.TotalCrates,
		"total_weight": batch.TotalWeight,
	})
}
