package controllers

import (
	"fmt"
	"time"

	"asikh-oms/config"
	"asikh-oms/models"
	"asikh-oms/services"

	"github.com/go-playground/validator"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/exp/rand"
	"gorm.io/gorm"
)

type AuthController struct {
	DB *gorm.DB
}

func NewAuthController(db *gorm.DB) *AuthController {
	return &AuthController{DB: db}
}

func generateToken(user *models.User, tokenType string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"role":     user.Role,
		"type":     tokenType,
		"jti":      uuid.NewString(),
		"exp":      time.Now().Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(config.JWTSecret))
}

func (c *AuthController) issueTokens(ctx *fiber.Ctx, user *models.User) error {
	accessToken, err := generateToken(user, "access", time.Duration(config.JWTExpiration)*time.Second)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": "Failed to generate token"})
	}

	refreshToken, err := generateToken(user, "refresh", time.Duration(config.RefreshExpiration)*time.Second)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": "Failed to generate token"})
	}

	now := time.Now()
	user.LastLogin = &now
	c.DB.Save(user)

	ctx.Cookie(config.GetRefreshCookie(refreshToken))

	return ctx.JSON(fiber.Map{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
		"token_type":    "bearer",
		"expires_in":    config.JWTExpiration,
		"user": fiber.Map{
			"id":        user.ID,
			"username":  user.Username,
			"email":     user.Email,
			"role":      user.Role,
			"full_name": user.DisplayName(),
		},
	})
}

// Login accepts the username or the email in the username field.
func (c *AuthController) Login(ctx *fiber.Ctx) error {
	var input struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": err.Error()})
	}

	validate := validator.New()
	if err := validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": err.Error()})
	}

	var user models.User
	if err := c.DB.Where("username = ? OR email = ?", input.Username, input.Username).First(&user).Error; err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"detail": "Invalid credentials"})
	}

	if !user.Active {
		return ctx.Status(fiber.StatusForbidden).JSON(fiber.Map{"detail": "Account is deactivated"})
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)) != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"detail": "Invalid credentials"})
	}

	return c.issueTokens(ctx, &user)
}

// PinLogin authenticates field devices with username plus a short PIN.
func (c *AuthController) PinLogin(ctx *fiber.Ctx) error {
	var input struct {
		Username string `json:"username" validate:"required"`
		Pin      string `json:"pin" validate:"required,len=4"`
	}

	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": err.Error()})
	}

	validate := validator.New()
	if err := validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": err.Error()})
	}

	var user models.User
	if err := c.DB.Where("username = ?", input.Username).First(&user).Error; err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"detail": "Invalid credentials"})
	}

	if !user.Active {
		return ctx.Status(fiber.StatusForbidden).JSON(fiber.Map{"detail": "Account is deactivated"})
	}

	if user.Pin == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "PIN login is not set up for this account"})
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Pin), []byte(input.Pin)) != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"detail": "Invalid credentials"})
	}

	return c.issueTokens(ctx, &user)
}

// SetPin stores a bcrypt hash of a 4 digit PIN on the authenticated account.
func (c *AuthController) SetPin(ctx *fiber.Ctx) error {
	var input struct {
		Password string `json:"password" validate:"required"`
		Pin      string `json:"pin" validate:"required,len=4,numeric"`
	}

	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": err.Error()})
	}

	validate := validator.New()
	if err := validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": err.Error()})
	}

	userID, ok := ctx.Locals("userID").(uint)
	if !ok {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"detail": "Not authenticated"})
	}

	var user models.User
	if err := c.DB.First(&user, userID).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"detail": "User not found"})
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)) != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "Password is incorrect"})
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Pin), bcrypt.DefaultCost)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": "Failed to hash PIN"})
	}

	now := time.Now()
	user.Pin = string(hashed)
	user.PinSetAt = &now
	if err := c.DB.Save(&user).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": err.Error()})
	}

	return ctx.JSON(fiber.Map{"message": "PIN set successfully"})
}

// Refresh exchanges a refresh token for a new access token. The token may
// come from the request body or the refresh cookie.
func (c *AuthController) Refresh(ctx *fiber.Ctx) error {
	var input struct {
		RefreshToken string `json:"refresh_token"`
	}
	_ = ctx.BodyParser(&input)

	tokenString := input.RefreshToken
	if tokenString == "" {
		tokenString = ctx.Cookies(config.CookieName)
	}
	if tokenString == "" {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"detail": "Refresh token missing"})
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(config.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"detail": "Invalid or expired refresh token"})
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || claims["type"] != "refresh" {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"detail": "Invalid token type"})
	}

	userIDFloat, ok := claims["user_id"].(float64)
	if !ok {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"detail": "Invalid token claims"})
	}

	var user models.User
	if err := c.DB.First(&user, uint(userIDFloat)).Error; err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"detail": "User no longer exists"})
	}
	if !user.Active {
		return ctx.Status(fiber.StatusForbidden).JSON(fiber.Map{"detail": "Account is deactivated"})
	}

	return c.issueTokens(ctx, &user)
}

func (c *AuthController) Logout(ctx *fiber.Ctx) error {
	ctx.Cookie(&fiber.Cookie{
		Name:     config.CookieName,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
	})
	return ctx.JSON(fiber.Map{"message": "Logged out"})
}

// RequestPasswordReset mails a short lived 6 digit code. The response is
// identical whether or not the email exists.
func (c *AuthController) RequestPasswordReset(ctx *fiber.Ctx) error {
	var input struct {
		Email string `json:"email" validate:"required,email"`
	}

	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": err.Error()})
	}

	validate := validator.New()
	if err := validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": err.Error()})
	}

	accepted := fiber.Map{"message": "If the email is registered, a reset code has been sent"}

	var user models.User
	if err := c.DB.Where("email = ?", input.Email).First(&user).Error; err != nil {
		return ctx.JSON(accepted)
	}

	rng := rand.New(rand.NewSource(uint64(time.Now().UnixNano())))
	code := fmt.Sprintf("%06d", rng.Intn(1000000))

	expires := time.Now().Add(15 * time.Minute)
	user.ResetCode = code
	user.ResetCodeExpiresAt = &expires
	if err := c.DB.Save(&user).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": err.Error()})
	}

	if err := services.SendPasswordResetMail(user.Email, code); err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": "Failed to send reset email"})
	}

	return ctx.JSON(accepted)
}

// VerifyPasswordReset checks the mailed code and sets the new password.
func (c *AuthController) VerifyPasswordReset(ctx *fiber.Ctx) error {
	var input struct {
		Email       string `json:"email" validate:"required,email"`
		Code        string `json:"code" validate:"required,len=6"`
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
	if err := c.DB.Where("email = ?", input.Email).First(&user).Error; err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "Invalid reset code"})
	}

	if user.ResetCode == "" || user.ResetCode != input.Code {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "Invalid reset code"})
	}
	if user.ResetCodeExpiresAt == nil || time.Now().After(*user.ResetCodeExpiresAt) {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "Reset code has expired"})
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": "Failed to hash password"})
	}

	user.Password = string(hashed)
	user.ResetCode = ""
	user.ResetCodeExpiresAt = nil
	if err := c.DB.Save(&user).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": err.Error()})
	}

	return ctx.JSON(fiber.Map{"message": "Password reset successfully"})
}
