package controllers

import (
	"errors"
	"time"

	"asikh-oms/middleware"
	"asikh-oms/models"
	"asikh-oms/repositories"
	"asikh-oms/services"

	"github.com/go-playground/validator"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

var validTransportModes = []string{"truck", "van", "pickup", "bike", "other"}

type BatchController struct {
	DB   *gorm.DB
	Repo *repositories.BatchRepository
}

func NewBatchController(db *gorm.DB) *BatchController {
	return &BatchController{DB: db, Repo: repositories.NewBatchRepository(db)}
}

// batchResponse flattens the batch with the names a mobile client renders
// directly, so the list screens need no extra lookups.
type batchResponse struct {
	models.Batch
	SupervisorName   string `json:"supervisor_name"`
	FromLocationName string `json:"from_location_name"`
	ToLocationName   string `json:"to_location_name"`
}

func (c *BatchController) toResponse(batch *models.Batch) batchResponse {
	resp := batchResponse{Batch: *batch}

	var supervisor models.User
	if err := c.DB.First(&supervisor, batch.SupervisorID).Error; err == nil {
		resp.SupervisorName = supervisor.DisplayName()
	}
	var farm models.Farm
	if err := c.DB.First(&farm, batch.FromLocation).Error; err == nil {
		resp.FromLocationName = farm.Name
	}
	var packhouse models.Packhouse
	if err := c.DB.First(&packhouse, batch.ToLocation).Error; err == nil {
		resp.ToLocationName = packhouse.Name
	}
	return resp
}

func isValidTransportMode(mode string) bool {
	for _, m := range validTransportModes {
		if m == mode {
			return true
		}
	}
	return false
}

func (c *BatchController) CreateBatch(ctx *fiber.Ctx) error {
	var input struct {
		SupervisorID  uint       `json:"supervisor_id"`
		TransportMode string     `json:"transport_mode" validate:"required"`
		FromLocation  uint       `json:"from_location" validate:"required"`
		ToLocation    uint       `json:"to_location" validate:"required"`
		VehicleNumber string     `json:"vehicle_number"`
		DriverName    string     `json:"driver_name"`
		ETA           *time.Time `json:"eta"`
		Latitude      float64    `json:"latitude"`
		Longitude     float64    `json:"longitude"`
		Notes         string     `json:"notes"`
	}

	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": err.Error()})
	}

	validate := validator.New()
	if err := validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": err.Error()})
	}

	if !isValidTransportMode(input.TransportMode) {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "Invalid transport mode: " + input.TransportMode})
	}

	// A batch never routes back to its own origin.
	if input.FromLocation == input.ToLocation {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "from_location and to_location must differ"})
	}

	supervisorID := input.SupervisorID
	if supervisorID == 0 {
		supervisorID = middleware.CurrentUserID(ctx)
	}

	var supervisor models.User
	if err := c.DB.First(&supervisor, supervisorID).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"detail": "Supervisor not found"})
	}
	var farm models.Farm
	if err := c.DB.First(&farm, input.FromLocation).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"detail": "Farm not found"})
	}
	var packhouse models.Packhouse
	if err := c.DB.First(&packhouse, input.ToLocation).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"detail": "Packhouse not found"})
	}

	batchCode, err := c.Repo.NextBatchCode(time.Now())
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": err.Error()})
	}

	batch := models.Batch{
		BatchCode:     batchCode,
		SupervisorID:  supervisorID,
		TransportMode: input.TransportMode,
		FromLocation:  input.FromLocation,
		ToLocation:    input.ToLocation,
		VehicleNumber: input.VehicleNumber,
		DriverName:    input.DriverName,
		ETA:           input.ETA,
		Status:        models.BatchStatusOpen,
		Latitude:      input.Latitude,
		Longitude:     input.Longitude,
		Notes:         input.Notes,
	}

	if err := c.DB.Create(&batch).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": err.Error()})
	}

	return ctx.Status(fiber.StatusCreated).JSON(c.toResponse(&batch))
}

func (c *BatchController) ListBatches(ctx *fiber.Ctx) error {
	page, pageSize := parsePagination(ctx)

	query := c.DB.Model(&models.Batch{})
	if status := ctx.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if from := ctx.QueryInt("from_location", 0); from > 0 {
		query = query.Where("from_location = ?", from)
	}
	if to := ctx.QueryInt("to_location", 0); to > 0 {
		query = query.Where("to_location = ?", to)
	}
	if supervisor := ctx.QueryInt("supervisor_id", 0); supervisor > 0 {
		query = query.Where("supervisor_id = ?", supervisor)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": err.Error()})
	}

	var batches []models.Batch
	if err := query.Order("created_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&batches).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": err.Error()})
	}

	responses := make([]batchResponse, 0, len(batches))
	for i := range batches {
		responses = append(responses, c.toResponse(&batches[i]))
	}

	return ctx.JSON(fiber.Map{
		"batches":   responses,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

func (c *BatchController) findBatch(ctx *fiber.Ctx) (*models.Batch, error) {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return nil, ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "Invalid ID"})
	}

	var batch models.Batch
	if err := c.DB.First(&batch, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"detail": "Batch not found"})
		}
		return nil, ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": err.Error()})
	}
	return &batch, nil
}

func (c *BatchController) GetBatchByID(ctx *fiber.Ctx) error {
	batch, err := c.findBatch(ctx)
	if batch == nil {
		return err
	}
	return ctx.JSON(c.toResponse(batch))
}

func (c *BatchController) GetBatchByCode(ctx *fiber.Ctx) error {
	code := ctx.Params("code")

	var batch models.Batch
	if err := c.DB.Where("batch_code = ?", code).First(&batch).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"detail": "Batch not found"})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": err.Error()})
	}

	return ctx.JSON(c.toResponse(&batch))
}

func (c *BatchController) UpdateBatch(ctx *fiber.Ctx) error {
	batch, err := c.findBatch(ctx)
	if batch == nil {
		return err
	}

	var input struct {
		TransportMode *string    `json:"transport_mode"`
		VehicleNumber *string    `json:"vehicle_number"`
		DriverName    *string    `json:"driver_name"`
		ETA           *time.Time `json:"eta"`
		Status        *string    `json:"status"`
		PhotoURL      *string    `json:"photo_url"`
		Latitude      *float64   `json:"latitude"`
		Longitude     *float64   `json:"longitude"`
		Notes         *string    `json:"notes"`
	}
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": err.Error()})
	}

	if input.TransportMode != nil {
		if !isValidTransportMode(*input.TransportMode) {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "Invalid transport mode: " + *input.TransportMode})
		}
		batch.TransportMode = *input.TransportMode
	}
	if input.VehicleNumber != nil {
		batch.VehicleNumber = *input.VehicleNumber
	}
	if input.DriverName != nil {
		batch.DriverName = *input.DriverName
	}
	if input.ETA != nil {
		batch.ETA = input.ETA
	}
	if input.PhotoURL != nil {
		batch.PhotoURL = *input.PhotoURL
	}
	if input.Latitude != nil {
		batch.Latitude = *input.Latitude
	}
	if input.Longitude != nil {
		batch.Longitude = *input.Longitude
	}
	if input.Notes != nil {
		batch.Notes = *input.Notes
	}

	if input.Status != nil && *input.Status != batch.Status {
		if err := c.applyTransition(batch, *input.Status); err != nil {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": err.Error()})
		}
	}

	if err := c.DB.Save(batch).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": err.Error()})
	}

	return ctx.JSON(c.toResponse(batch))
}

// applyTransition validates the status change and stamps the transit
// timestamps that go with it. Delivery additionally requires every crate in
// the batch to be reconciled.
func (c *BatchController) applyTransition(batch *models.Batch, next string) error {
	if err := models.ValidateBatchTransition(batch.Status, next); err != nil {
		return err
	}

	now := time.Now()
	switch next {
	case models.BatchStatusInTransit:
		batch.DepartureTime = &now
	case models.BatchStatusArrived:
		batch.ArrivalTime = &now
		if batch.DepartureTime == nil {
			batch.DepartureTime = &now
		}
	case models.BatchStatusDelivered:
		stats, err := c.Repo.GetReconciliationStats(batch.ID)
		if err != nil {
			return err
		}
		if !stats.IsReconciliationComplete {
			return errors.New("batch cannot be delivered until all crates are reconciled")
		}
	}

	batch.Status = next
	return nil
}

func (c *BatchController) transitionHandler(ctx *fiber.Ctx, next string) error {
	batch, err := c.findBatch(ctx)
	if batch == nil {
		return err
	}

	if err := c.applyTransition(batch, next); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": err.Error()})
	}

	if err := c.DB.Save(batch).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": err.Error()})
	}

	return ctx.JSON(c.toResponse(batch))
}

// UpdateBatchStatus is the explicit status endpoint mobile clients call.
func (c *BatchController) UpdateBatchStatus(ctx *fiber.Ctx) error {
	batch, err := c.findBatch(ctx)
	if batch == nil {
		return err
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

	if input.Status == batch.Status {
		return ctx.JSON(c.toResponse(batch))
	}
	if err := c.applyTransition(batch, input.Status); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": err.Error()})
	}

	if err := c.DB.Save(batch).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": err.Error()})
	}

	return ctx.JSON(c.toResponse(batch))
}

func (c *BatchController) DepartBatch(ctx *fiber.Ctx) error {
	return c.transitionHandler(ctx, models.BatchStatusInTransit)
}

func (c *BatchController) ArriveBatch(ctx *fiber.Ctx) error {
	return c.transitionHandler(ctx, models.BatchStatusArrived)
}

func (c *BatchController) DeliverBatch(ctx *fiber.Ctx) error {
	return c.transitionHandler(ctx, models.BatchStatusDelivered)
}

func (c *BatchController) CloseBatch(ctx *fiber.Ctx) error {
	return c.transitionHandler(ctx, models.BatchStatusClosed)
}

func (c *BatchController) CancelBatch(ctx *fiber.Ctx) error {
	return c.transitionHandler(ctx, models.BatchStatusCancelled)
}

// AddCrate attaches an already registered crate to an open batch by QR code.
// Attaching a crate that is already in this batch is a no-op success.
func (c *BatchController) AddCrate(ctx *fiber.Ctx) error {
	batch, err := c.findBatch(ctx)
	if batch == nil {
		return err
	}

	var input struct {
		QRCode string `json:"qr_code" validate:"required"`
	}
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": err.Error()})
	}

	validate := validator.New()
	if err := validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": err.Error()})
	}

	if !batch.CanAcceptCrates() {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "Crates can only be added while the batch is open"})
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
				"message":    "Crate is already in this batch",
				"crate_id":   crate.ID,
				"batch_id":   batch.ID,
				"batch_code": batch.BatchCode,
			})
		}
		return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{"detail": "Crate is already assigned to another batch"})
	}

	if err := c.attachCrate(batch, &crate); err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": err.Error()})
	}

	return ctx.JSON(fiber.Map{
		"message":      "Crate added to batch",
		"crate_id":     crate.ID,
		"batch_id":     batch.ID,
		"batch_code":   batch.BatchCode,
		"total_crates": batch.TotalCrates,
		"total_weight": batch.TotalWeight,
	})
}

// attachCrate links the crate and bumps the batch totals in one transaction.
func (c *BatchController) attachCrate(batch *models.Batch, crate *models.Crate) error {
	return c.DB.Transaction(func(tx *gorm.DB) error {
		crate.BatchID = &batch.ID
		if err := tx.Save(crate).Error; err != nil {
			return err
		}
		batch.TotalCrates++
		batch.TotalWeight += crate.Weight
		return tx.Save(batch).Error
	})
}

// AddMinimalCrate registers a crate with field defaults and attaches it in a
// single scan, for harvesters working offline-first.
func (c *BatchController) AddMinimalCrate(ctx *fiber.Ctx) error {
	batch, err := c.findBatch(ctx)
	if batch == nil {
		return err
	}

	var input struct {
		QRCode    string  `json:"qr_code" validate:"required"`
		VarietyID uint    `json:"variety_id" validate:"required"`
		Weight    float64 `json:"weight"`
	}
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": err.Error()})
	}

	validate := validator.New()
	if err := validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": err.Error()})
	}

	if !batch.CanAcceptCrates() {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "Crates can only be added while the batch is open"})
	}

	if err := services.ValidateQRValue(input.QRCode); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": err.Error()})
	}

	var variety models.Variety
	if err := c.DB.First(&variety, input.VarietyID).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"detail": "Variety not found"})
	}

	var existing models.Crate
	if err := c.DB.Where("qr_code = ?", input.QRCode).First(&existing).Error; err == nil {
		if existing.BatchID != nil && *existing.BatchID == batch.ID {
			return ctx.JSON(fiber.Map{
				"message":  "Crate is already in this batch",
				"crate_id": existing.ID,
				"batch_id": batch.ID,
			})
		}
		return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{"detail": "Crate with this QR code already exists"})
	}

	weight := input.Weight
	if weight <= 0 {
		weight = models.DefaultCrateWeight
	}

	crate := models.Crate{
		QRCode:       input.QRCode,
		HarvestDate:  time.Now(),
		SupervisorID: middleware.CurrentUserID(ctx),
		Weight:       weight,
		VarietyID:    input.VarietyID,
	}

	txErr := c.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&crate).Error; err != nil {
			return err
		}
		if err := markQRCodeUsed(tx, input.QRCode); err != nil {
			return err
		}
		crate.BatchID = &batch.ID
		if err := tx.Save(&crate).Error; err != nil {
			return err
		}
		batch.TotalCrates++
		batch.TotalWeight += crate.Weight
		return tx.Save(batch).Error
	})
	if txErr != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": txErr.Error()})
	}

	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":      "Crate created and added to batch",
		"crate_id":     crate.ID,
		"batch_id":     batch.ID,
		"batch_code":   batch.BatchCode,
		"total_crates": batch.TotalCrates,
		"total_weight": batch.TotalWeight,
	})
}

func (c *BatchController) ListBatchCrates(ctx *fiber.Ctx) error {
	batch, err := c.findBatch(ctx)
	if batch == nil {
		return err
	}

	page, pageSize := parsePagination(ctx)

	query := c.DB.Model(&models.Crate{}).Where("batch_id = ?", batch.ID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": err.Error()})
	}

	var crates []models.Crate
	if err := query.Order("created_at").
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

func (c *BatchController) GetBatchStats(ctx *fiber.Ctx) error {
	batch, err := c.findBatch(ctx)
	if batch == nil {
		return err
	}

	stats, statsErr := c.Repo.GetBatchStats(batch)
	if statsErr != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": statsErr.Error()})
	}
	return ctx.JSON(stats)
}

func (c *BatchController) GetWeightDetails(ctx *fiber.Ctx) error {
	batch, err := c.findBatch(ctx)
	if batch == nil {
		return err
	}

	details, detailsErr := c.Repo.GetWeightDetails(batch)
	if detailsErr != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": detailsErr.Error()})
	}
	return ctx.JSON(details)
}

func (c *BatchController) GetReconciliationStats(ctx *fiber.Ctx) error {
	batch, err := c.findBatch(ctx)
	if batch == nil {
		return err
	}

	stats, statsErr := c.Repo.GetReconciliationStats(batch.ID)
	if statsErr != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": statsErr.Error()})
	}
	return ctx.JSON(stats)
}

// GetBatchStatus is the light polling endpoint for transit screens.
func (c *BatchController) GetBatchStatus(ctx *fiber.Ctx) error {
	batch, err := c.findBatch(ctx)
	if batch == nil {
		return err
	}

	stats, statsErr := c.Repo.GetReconciliationStats(batch.ID)
	if statsErr != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": statsErr.Error()})
	}

	return ctx.JSON(fiber.Map{
		"batch_id":                   batch.ID,
		"batch_code":                 batch.BatchCode,
		"status":                     batch.Status,
		"total_crates":               batch.TotalCrates,
		"reconciled_crates":          stats.ReconciledCrates,
		"reconciliation_complete":    stats.IsReconciliationComplete,
		"reconciliation_percentage":  stats.ReconciliationPercentage,
	})
}

// ReconcileCrate records a packhouse scan of a crate from this batch. The
// scan always lands in the audit log, matched or not.
func (c *BatchController) ReconcileCrate(ctx *fiber.Ctx) error {
	batch, err := c.findBatch(ctx)
	if batch == nil {
		return err
	}

	var input struct {
		QRCode     string             `json:"qr_code" validate:"required"`
		Weight     float64            `json:"weight"`
		PhotoBase64 string            `json:"photo_base64"`
		Location   models.GPSLocation `json:"location"`
		DeviceInfo models.JSONMap     `json:"device_info"`
		Notes      string             `json:"notes"`
	}
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": err.Error()})
	}

	validate := validator.New()
	if err := validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": err.Error()})
	}

	if !batch.CanReconcile() {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "Batch must be arrived or delivered to reconcile crates"})
	}

	userID := middleware.CurrentUserID(ctx)

	logEntry := models.ReconciliationLog{
		BatchID:     batch.ID,
		ScannedQR:   input.QRCode,
		ScannedByID: userID,
		Location:    input.Location,
		DeviceInfo:  input.DeviceInfo,
		Notes:       input.Notes,
	}

	var crate models.Crate
	if err := c.DB.Where("qr_code = ? AND batch_id = ?", input.QRCode, batch.ID).First(&crate).Error; err != nil {
		logEntry.Status = "unmatched"
		c.DB.Create(&logEntry)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"detail": "Crate not found in this batch"})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": err.Error()})
	}

	var existing models.CrateReconciliation
	if err := c.DB.Where("batch_id = ? AND crate_id = ?", batch.ID, crate.ID).First(&existing).Error; err == nil {
		logEntry.Status = "duplicate"
		logEntry.CrateID = &crate.ID
		c.DB.Create(&logEntry)
		return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{"detail": "Crate has already been reconciled"})
	}

	weight := input.Weight
	if weight <= 0 {
		weight = crate.Weight
	}

	photoURL := ""
	if input.PhotoBase64 != "" {
		url, saveErr := services.SaveCratePhoto(input.PhotoBase64, crate.QRCode)
		if saveErr != nil {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": saveErr.Error()})
		}
		photoURL = url
	}

	reconciliation := models.CrateReconciliation{
		BatchID:            batch.ID,
		CrateID:            crate.ID,
		QRCode:             crate.QRCode,
		ReconciledByID:     userID,
		ReconciledAt:       time.Now(),
		Weight:             weight,
		OriginalWeight:     crate.Weight,
		WeightDifferential: weight - crate.Weight,
		PhotoURL:           photoURL,
		IsReconciled:       true,
	}

	txErr := c.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&reconciliation).Error; err != nil {
			return err
		}
		logEntry.Status = "matched"
		logEntry.CrateID = &crate.ID
		return tx.Create(&logEntry).Error
	})
	if txErr != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": txErr.Error()})
	}

	stats, statsErr := c.Repo.GetReconciliationStats(batch.ID)
	if statsErr != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": statsErr.Error()})
	}

	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":                 "Crate reconciled",
		"crate_id":                crate.ID,
		"batch_id":                batch.ID,
		"weight":                  weight,
		"weight_differential":     reconciliation.WeightDifferential,
		"reconciled_crates":       stats.ReconciledCrates,
		"total_crates":            stats.TotalCrates,
		"reconciliation_complete": stats.IsReconciliationComplete,
	})
}
