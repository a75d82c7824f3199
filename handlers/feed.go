package handlers

import (
	"fmt"
	"os"
	"time"

	"enkai-backend/database"
	"enkai-backend/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gorilla/feeds"
)

// EventRSS はイベントの確定通知をRSSで配信する
func EventRSS(c *fiber.Ctx) error {
	eventID := c.Params("id")

	var event models.Event
	err := database.DB.Where("id = ? OR short_code = ?", eventID, eventID).First(&event).Error
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Event not found",
		})
	}

	feed := &feeds.Feed{
		Title:       event.Name,
		Link:        &feeds.Link{Href: fmt.Sprintf("%s/events/%s", os.Getenv("FRONTEND_URL"), event.ShortCode)},
		Description: "このイベントのアクティビティと開催日が決定次第、通知が届きます。",
		Created:     time.Now(),
	}

	var items []models.FeedItem
	if err := database.DB.Where("event_id = ?", event.ID).Order("created_at ASC").Find(&items).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to get feed items",
		})
	}

	for _, item := range items {
		feed.Items = append(feed.Items, &feeds.Item{
			Title:       item.Title,
			Link:        &feeds.Link{Href: item.Link},
			Description: item.Description,
			Created:     item.CreatedAt,
		})
	}

	rss, err := feed.ToRss()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to generate RSS feed",
		})
	}
	c.Set("Content-Type", "application/rss+xml; charset=utf-8")
	return c.Status(fiber.StatusOK).SendString(rss)
}
