package controllers

import (
	"errors"

	"asikh-oms/models"

	"github.com/go-playground/validator"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type PackhouseController struct {
	DB *gorm.DB
}

func NewPackhouseController(db *gorm.DB) *PackhouseController {
	return &PackhouseController{DB: db}
}

func (c *PackhouseController) CreatePackhouse(ctx *fiber.Ctx) error {
	var input struct {
		Name           string             `json:"name" validate:"required,min=2"`
		Location       string             `json:"location"`
		GPSCoordinates models.GPSLocation `json:"gps_coordinates"`
		Manager        string             `json:"manager"`
		ContactInfo    models.JSONMap     `json:"contact_info"`
	}

	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": err.Error()})
	}

	validate := validator.New()
	if err := validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": err.Error()})
	}

	packhouse := models.Packhouse{
		Name:           input.Name,
		Location:       input.Location,
		GPSCoordinates: input.GPSCoordinates,
		Manager:        input.Manager,
		ContactInfo:    input.ContactInfo,
	}

	if err := c.DB.Create(&packhouse).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": err.Error()})
	}

	return ctx.Status(fiber.StatusCreated).JSON(packhouse)
}

func (c *PackhouseController) ListPackhouses(ctx *fiber.Ctx) error {
	page, pageSize := parsePagination(ctx)

	query := c.DB.Model(&models.Packhouse{})
	if name := ctx.Query("name"); name != "" {
		query = query.Where("name LIKE ?", "%"+name+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": err.Error()})
	}

	var packhouses []models.Packhouse
	if err := query.Order("name").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&packhouses).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": err.Error()})
	}

	return ctx.JSON(fiber.Map{
		"packhouses": packhouses,
		"total":      total,
		"page":       page,
		"page_size":  pageSize,
	})
}

func (c *PackhouseController) GetPackhouseByID(ctx *fiber.Ctx) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "Invalid ID"})
	}

	var packhouse models.Packhouse
	if err := c.DB.First(&packhouse, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"detail": "Packhouse not found"})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": err.Error()})
	}

	return ctx.JSON(packhouse)
}

func (c *PackhouseController) UpdatePackhouse(ctx *fiber.Ctx) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "Invalid ID"})
	}

	var packhouse models.Packhouse
	if err := c.DB.First(&packhouse, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"detail": "Packhouse not found"})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": err.Error()})
	}

	var input struct {
		Name           *string             `json:"name"`
		Location       *string             `json:"location"`
		GPSCoordinates *models.GPSLocation `json:"gps_coordinates"`
		Manager        *string             `json:"manager"`
		ContactInfo    *models.JSONMap     `json:"contact_info"`
	}
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": err.Error()})
	}

	if input.Name != nil {
		packhouse.Name = *input.Name
	}
	if input.Location != nil {
		packhouse.Location = *input.Location
	}
	if input.GPSCoordinates != nil {
		packhouse.GPSCoordinates = *input.GPSCoordinates
	}
	if input.Manager != nil {
		packhouse.Manager = *input.Manager
	}
	if input.ContactInfo != nil {
		packhouse.ContactInfo = *input.ContactInfo
	}

	if err := c.DB.Save(&packhouse).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": err.Error()})
	}

	return ctx.JSON(packhouse)
}

func (c *PackhouseController) DeletePackhouse(ctx *fiber.Ctx) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "Invalid ID"})
	}

	var packhouse models.Packhouse
	if err := c.DB.First(&packhouse, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"detail": "Packhouse not found"})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": err.Error()})
	}

	var batchCount int64
	if err := c.DB.Model(&models.Batch{}).Where("to_location = ?", packhouse.ID).Count(&batchCount).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": err.Error()})
	}
	if batchCount > 0 {
		return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{"detail": "Packhouse has batches and cannot be deleted"})
	}

	if err := c.DB.Delete(&packhouse).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": err.Error()})
	}

	return ctx.SendStatus(fiber.StatusNoContent)
}
