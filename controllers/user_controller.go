package controllers

import (
	"errors"

	"asikh-oms/middleware"
	"asikh-oms/models"

	"github.com/go-playground/validator"
	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserController struct {
	DB *gorm.DB
}

func NewUserController(db *gorm.DB) *UserController {
	return &UserController{DB: db}
}

func (c *UserController) CreateUser(ctx *fiber.Ctx) error {
	var input struct {
		Username    string `json:"username" validate:"required,min=3"`
		Email       string `json:"email" validate:"required,email"`
		Password    string `json:"password" validate:"required,min=8"`
		Role        string `json:"role" validate:"required"`
		FullName    string `json:"full_name"`
		PhoneNumber string `json:"phone_number"`
	}

	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": err.Error()})
	}

	validate := validator.New()
	if err := validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": err.Error()})
	}

	if !models.IsValidRole(input.Role) {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "Invalid role: " + input.Role})
	}

	var existing models.User
	if err := c.DB.Where("username = ? OR email = ?", input.Username, input.Email).First(&existing).Error; err == nil {
		return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{"detail": "Username or email already in use"})
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": "Failed to hash password"})
	}

	user := models.User{
		Username:    input.Username,
		Email:       input.Email,
		Password:    string(hashed),
		Role:        input.Role,
		FullName:    input.FullName,
		PhoneNumber: input.PhoneNumber,
		Active:      true,
	}

	if err := c.DB.Create(&user).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": err.Error()})
	}

	return ctx.Status(fiber.StatusCreated).JSON(user)
}

func (c *UserController) ListUsers(ctx *fiber.Ctx) error {
	page, pageSize := parsePagination(ctx)

	query := c.DB.Model(&models.User{})
	if role := ctx.Query("role"); role != "" {
		query = query.Where("role = ?", role)
	}
	if active := ctx.Query("active"); active != "" {
		query = query.Where("active = ?", active == "true")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": err.Error()})
	}

	var users []models.User
	if err := query.Order("username").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&users).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": err.Error()})
	}

	return ctx.JSON(fiber.Map{
		"users":     users,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// Me returns the authenticated user's own record.
func (c *UserController) Me(ctx *fiber.Ctx) error {
	var user models.User
	if err := c.DB.First(&user, middleware.CurrentUserID(ctx)).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"detail": "User not found"})
	}
	return ctx.JSON(user)
}

func (c *UserController) GetUserByID(ctx *fiber.Ctx) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "Invalid ID"})
	}

	var user models.User
	if err := c.DB.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"detail": "User not found"})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": err.Error()})
	}

	return ctx.JSON(user)
}

func (c *UserController) UpdateUser(ctx *fiber.Ctx) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "Invalid ID"})
	}

	var user models.User
	if err := c.DB.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"detail": "User not found"})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": err.Error()})
	}

	var input struct {
		Email       *string `json:"email"`
		Role        *string `json:"role"`
		FullName    *string `json:"full_name"`
		PhoneNumber *string `json:"phone_number"`
	}
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": err.Error()})
	}

	if input.Email != nil {
		user.Email = *input.Email
	}
	if input.Role != nil {
		if !models.IsValidRole(*input.Role) {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "Invalid role: " + *input.Role})
		}
		user.Role = *input.Role
	}
	if input.FullName != nil {
		user.FullName = *input.FullName
	}
	if input.PhoneNumber != nil {
		user.PhoneNumber = *input.PhoneNumber
	}

	if err := c.DB.Save(&user).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": err.Error()})
	}

	return ctx.JSON(user)
}

func (c *UserController) ActivateUser(ctx *fiber.Ctx) error {
	return c.setActive(ctx, true)
}

func (c *UserController) DeactivateUser(ctx *fiber.Ctx) error {
	return c.setActive(ctx, false)
}

func (c *UserController) setActive(ctx *fiber.Ctx, active bool) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "Invalid ID"})
	}

	var user models.User
	if err := c.DB.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"detail": "User not found"})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": err.Error()})
	}

	// The last admin stays active.
	if !active && user.Role == "admin" {
		var adminCount int64
		c.DB.Model(&models.User{}).Where("role = ? AND active = ?", "admin", true).Count(&adminCount)
		if adminCount <= 1 {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "Cannot deactivate the last active admin"})
		}
	}

	user.Active = active
	if err := c.DB.Save(&user).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": err.Error()})
	}

	return ctx.JSON(user)
}

// ChangePassword lets a user rotate their own password.
func (c *UserController) ChangePassword(ctx *fiber.Ctx) error {
	var input struct {
		CurrentPassword string `json:"current_password" validate:"required"`
		NewPassword     string `json:"new_password" validate:"required,min=8"`
	}

	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": err.Error()})
	}

	validate := validator.New()
	if err := validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": err.Error()})
	}

	var user models.User
	if err := c.DB.First(&user, middleware.CurrentUserID(ctx)).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"detail": "User not found"})
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.CurrentPassword)) != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "Current password is incorrect"})
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": "Failed to hash password"})
	}

	user.Password = string(hashed)
	if err := c.DB.Save(&user).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": err.Error()})
	}

	return ctx.JSON(fiber.Map{"message": "Password changed successfully"})
}

// ResetPassword lets an admin force a new password on an account.
func (c *UserController) ResetPassword(ctx *fiber.Ctx) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "Invalid ID"})
	}

	var input struct {
		NewPassword string `json:"new_password" validate:"required,min=8"`
	}
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": err.Error()})
	}

	validate := validator.New()
	if err := validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": err.Error()})
	}

	var user models.User
	if err := c.DB.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"detail": "User not found"})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": err.Error()})
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": "Failed to hash password"})
	}

	user.Password = string(hashed)
	if err := c.DB.Save(&user).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": err.Error()})
	}

	return ctx.JSON(user)
}

func (c *UserController) ListRoles(ctx *fiber.Ctx) error {
	return ctx.JSON(fiber.Map{"roles": models.ValidRoles})
}
