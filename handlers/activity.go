package handlers

import (
	"time"

	"enkai-backend/database"
	"enkai-backend/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type CreateActivityRequest struct {
	Title             string  `json:"title"`
	Category          string  `json:"category"`
	Region            string  `json:"region"`
	City              string  `json:"city"`
	EstPricePerPerson float64 `json:"est_price_per_person"`
	ShortDescription  string  `json:"short_description"`
}

// CreateActivity はアクティビティを登録する
func CreateActivity(c *fiber.Ctx) error {
	var req CreateActivityRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request format",
		})
	}
	if req.Title == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Title is empty",
		})
	}

	activity := models.Activity{
		ID:                uuid.New().String(),
		Title:             req.Title,
		Category:          req.Category,
		Region:            req.Region,
		City:              req.City,
		EstPricePerPerson: req.EstPricePerPerson,
		ShortDescription:  req.ShortDescription,
		CreatedAt:         time.Now(),
	}
	if err := database.DB.Create(&activity).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create activity",
		})
	}
	return c.Status(fiber.StatusCreated).JSON(activity)
}

// ListActivities はアクティビティ一覧を返す
func ListActivities(c *fiber.Ctx) error {
	var activities []models.Activity
	query := database.DB.Order("created_at DESC")
	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}
	if region := c.Query("region"); region != "" {
		query = query.Where("region = ?", region)
	}
	if err := query.Find(&activities).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to get activities",
		})
	}
	return c.JSON(activities)
}
