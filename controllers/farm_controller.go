package controllers

import (
	"errors"

	"asikh-oms/models"

	"github.com/go-playground/validator"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type FarmController struct {
	DB *gorm.DB
}

func NewFarmController(db *gorm.DB) *FarmController {
	return &FarmController{DB: db}
}

func (c *FarmController) CreateFarm(ctx *fiber.Ctx) error {
	var input struct {
		Name           string             `json:"name" validate:"required,min=2"`
		Location       string             `json:"location"`
		GPSCoordinates models.GPSLocation `json:"gps_coordinates"`
		Owner          string             `json:"owner"`
		ContactInfo    models.JSONMap     `json:"contact_info"`
	}

	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": err.Error()})
	}

	validate := validator.New()
	if err := validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": err.Error()})
	}

	farm := models.Farm{
		Name:           input.Name,
		Location:       input.Location,
		GPSCoordinates: input.GPSCoordinates,
		Owner:          input.Owner,
		ContactInfo:    input.ContactInfo,
	}

	if err := c.DB.Create(&farm).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": err.Error()})
	}

	return ctx.Status(fiber.StatusCreated).JSON(farm)
}

func (c *FarmController) ListFarms(ctx *fiber.Ctx) error {
	page, pageSize := parsePagination(ctx)

	query := c.DB.Model(&models.Farm{})
	if name := ctx.Query("name"); name != "" {
		query = query.Where("name LIKE ?", "%"+name+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": err.Error()})
	}

	var farms []models.Farm
	if err := query.Order("name").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&farms).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": err.Error()})
	}

	return ctx.JSON(fiber.Map{
		"farms":     farms,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

func (c *FarmController) GetFarmByID(ctx *fiber.Ctx) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "Invalid ID"})
	}

	var farm models.Farm
	if err := c.DB.First(&farm, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"detail": "Farm not found"})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": err.Error()})
	}

	return ctx.JSON(farm)
}

func (c *FarmController) UpdateFarm(ctx *fiber.Ctx) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "Invalid ID"})
	}

	var farm models.Farm
	if err := c.DB.First(&farm, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"detail": "Farm not found"})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": err.Error()})
	}

	var input struct {
		Name           *string             `json:"name"`
		Location       *string             `json:"location"`
		GPSCoordinates *models.GPSLocation `json:"gps_coordinates"`
		Owner          *string             `json:"owner"`
		ContactInfo    *models.JSONMap     `json:"contact_info"`
	}
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": err.Error()})
	}

	if input.Name != nil {
		farm.Name = *input.Name
	}
	if input.Location != nil {
		farm.Location = *input.Location
	}
	if input.GPSCoordinates != nil {
		farm.GPSCoordinates = *input.GPSCoordinates
	}
	if input.Owner != nil {
		farm.Owner = *input.Owner
	}
	if input.ContactInfo != nil {
		farm.ContactInfo = *input.ContactInfo
	}

	if err := c.DB.Save(&farm).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": err.Error()})
	}

	return ctx.JSON(farm)
}

func (c *FarmController) DeleteFarm(ctx *fiber.Ctx) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "Invalid ID"})
	}

	var farm models.Farm
	if err := c.DB.First(&farm, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"detail": "Farm not found"})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": err.Error()})
	}

	// A farm with batches still routed from it cannot go away.
	var batchCount int64
	if err := c.DB.Model(&models.Batch{}).Where("from_location = ?", farm.ID).Count(&batchCount).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": err.Error()})
	}
	if batchCount > 0 {
		return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{"detail": "Farm has batches and cannot be deleted"})
	}

	if err := c.DB.Delete(&farm).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": err.Error()})
	}

	return ctx.SendStatus(fiber.StatusNoContent)
}

func (c *FarmController) GetFarmStats(ctx *fiber.Ctx) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "Invalid ID"})
	}

	var farm models.Farm
	if err := c.DB.First(&farm, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"detail": "Farm not found"})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": err.Error()})
	}

	var batchCount, crateCount int64
	var totalWeight float64

	c.DB.Model(&models.Batch{}).Where("from_location = ?", farm.ID).Count(&batchCount)
	c.DB.Model(&models.Crate{}).Where("farm_id = ?", farm.ID).Count(&crateCount)
	c.DB.Model(&models.Crate{}).Where("farm_id = ?", farm.ID).
		Select("COALESCE(SUM(weight), 0)").Scan(&totalWeight)

	return ctx.JSON(fiber.Map{
		"farm_id":      farm.ID,
		"farm_name":    farm.Name,
		"total_batches": batchCount,
		"total_crates": crateCount,
		"total_weight": totalWeight,
	})
}
