package handlers

import (
	"strconv"
	"strings"

	"github.com/AbelSturm/fitzoapp/internal/models"
	"github.com/gofiber/fiber/v2"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 50
	maxPage          = 10000
)

// parsePagination reads ?page and ?limit as 1-based page numbers. Garbage and
// out of range values fall back to the defaults.
func parsePagination(c *fiber.Ctx) (page, limit int) {
	page, err := strconv.Atoi(strings.TrimSpace(c.Query("page")))
	if err != nil || page < 1 {
		page = 1
	}
	if page > maxPage {
		page = maxPage
	}
	limit, err = strconv.Atoi(strings.TrimSpace(c.Query("limit")))
	if err != nil || limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return page, limit
}

func pageOffset(page, limit int) int {
	return (page - 1) * limit
}

func buildPaginationMeta(page, limit, total int) models.PaginationMeta {
	totalPages := 0
	if total > 0 {
		totalPages = (total + limit - 1) / limit
	}

	return models.PaginationMeta{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
	}
}
