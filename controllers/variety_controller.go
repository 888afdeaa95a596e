package controllers

import (
	"errors"

	"asikh-oms/models"

	"github.com/go-playground/validator"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type VarietyController struct {
	DB *gorm.DB
}

func NewVarietyController(db *gorm.DB) *VarietyController {
	return &VarietyController{DB: db}
}

func (c *VarietyController) CreateVariety(ctx *fiber.Ctx) error {
	var input struct {
		Name        string `json:"name" validate:"required,min=2"`
		Description string `json:"description"`
	}

	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": err.Error()})
	}

	validate := validator.New()
	if err := validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": err.Error()})
	}

	var existing models.Variety
	if err := c.DB.Where("name = ?", input.Name).First(&existing).Error; err == nil {
		return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{"detail": "Variety with this name already exists"})
	}

	variety := models.Variety{
		Name:        input.Name,
		Description: input.Description,
	}

	if err := c.DB.Create(&variety).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": err.Error()})
	}

	return ctx.Status(fiber.StatusCreated).JSON(variety)
}

func (c *VarietyController) ListVarieties(ctx *fiber.Ctx) error {
	page, pageSize := parsePagination(ctx)

	var total int64
	if err := c.DB.Model(&models.Variety{}).Count(&total).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": err.Error()})
	}

	var varieties []models.Variety
	if err := c.DB.Order("name").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&varieties).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": err.Error()})
	}

	return ctx.JSON(fiber.Map{
		"varieties": varieties,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

func (c *VarietyController) GetVarietyByID(ctx *fiber.Ctx) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "Invalid ID"})
	}

	var variety models.Variety
	if err := c.DB.First(&variety, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"detail": "Variety not found"})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": err.Error()})
	}

	return ctx.JSON(variety)
}

func (c *VarietyController) UpdateVariety(ctx *fiber.Ctx) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "Invalid ID"})
	}

	var variety models.Variety
	if err := c.DB.First(&variety, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"detail": "Variety not found"})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": err.Error()})
	}

	var input struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
	}
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": err.Error()})
	}

	if input.Name != nil {
		variety.Name = *input.Name
	}
	if input.Description != nil {
		variety.Description = *input.Description
	}

	if err := c.DB.Save(&variety).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": err.Error()})
	}

	return ctx.JSON(variety)
}

func (c *VarietyController) DeleteVariety(ctx *fiber.Ctx) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "Invalid ID"})
	}

	var variety models.Variety
	if err := c.DB.First(&variety, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"detail": "Variety not found"})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": err.Error()})
	}

	var crateCount int64
	if err := c.DB.Model(&models.Crate{}).Where("variety_id = ?", variety.ID).Count(&crateCount).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": err.Error()})
	}
	if crateCount > 0 {
		return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{"detail": "Variety is used by crates and cannot be deleted"})
	}

	if err := c.DB.Delete(&variety).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": err.Error()})
	}

	return ctx.SendStatus(fiber.StatusNoContent)
}
