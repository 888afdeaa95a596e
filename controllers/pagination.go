package controllers

import (
	"github.com/gofiber/fiber/v2"
)

// parsePagination reads ?page and ?page_size with the backend defaults.
// Page size is capped at 100.
func parsePagination(ctx *fiber.Ctx) (page, pageSize int) {
	page = ctx.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	pageSize = ctx.QueryInt("page_size", 20)
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return page, pageSize
}
