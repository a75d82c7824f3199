package handlers

import (
	"crypto/rand"
	"strings"
	"time"

	"enkai-backend/database"
	"enkai-backend/engine"
	"enkai-backend/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type CreateRoomRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type JoinRoomRequest struct {
	InviteCode string `json:"invite_code"`
}

type CreateEventRequest struct {
	Name                string   `json:"name"`
	Description         string   `json:"description"`
	BudgetType          string   `json:"budget_type"`
	BudgetAmount        float64  `json:"budget_amount"`
	VotingDeadline      string   `json:"voting_deadline"` // ISO 8601形式
	ProposedActivityIDs []string `json:"proposed_activity_ids"`
}

// CreateRoom はルームを作成する。作成者はownerメンバーになる
func CreateRoom(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c)
	}

	var req CreateRoomRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request format",
		})
	}
	if req.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Name is empty",
		})
	}

	room := models.Room{
		ID:              uuid.New().String(),
		Name:            req.Name,
		Description:     req.Description,
		InviteCode:      newInviteCode(),
		CreatedByUserID: userID,
		CreatedAt:       time.Now(),
		Members: []models.RoomMember{
			{UserID: userID, Role: models.RoleOwner, JoinedAt: time.Now()},
		},
	}

	if err := database.DB.Create(&room).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create room",
		})
	}
	return c.Status(fiber.StatusCreated).JSON(room)
}

// GetRoom はルームとメンバーを返す
func GetRoom(c *fiber.Ctx) error {
	roomID := c.Params("id")

	var room models.Room
	if err := database.DB.Preload("Members").First(&room, "id = ?", roomID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Room not found",
		})
	}
	return c.JSON(room)
}

// JoinRoom は招待コードでルームに参加する
func JoinRoom(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c)
	}

	var req JoinRoomRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request format",
		})
	}

	inviteCode := strings.TrimSpace(req.InviteCode)
	if inviteCode == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invite_code is required",
		})
	}

	var room models.Room
	if err := database.DB.First(&room, "invite_code = ?", inviteCode).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Room not found with this invite code",
		})
	}

	// 参加済みなら何もしない
	var existing models.RoomMember
	err := database.DB.Where("room_id = ? AND user_id = ?", room.ID, userID).First(&existing).Error
	if err == nil {
		return c.JSON(room)
	}

	member := models.RoomMember{
		RoomID:   room.ID,
		UserID:   userID,
		Role:     models.RoleMember,
		JoinedAt: time.Now(),
	}
	if err := database.DB.Create(&member).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to join room",
		})
	}
	return c.JSON(room)
}

// GetRoomEvents はルームのイベント一覧を返す
func GetRoomEvents(c *fiber.Ctx) error {
	roomID := c.Params("id")

	var events []models.Event
	err := database.DB.
		Preload("ProposedActivities").
		Preload("Participants").
		Preload("DateOptions").
		Where("room_id = ?", roomID).
		Order("created_at DESC").
		Find(&events).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to get events",
		})
	}
	return c.JSON(events)
}

// CreateEvent はルーム内にイベントを作成する
func CreateEvent(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c)
	}

	var req CreateEventRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request format",
		})
	}

	var deadline *time.Time
	if req.VotingDeadline != "" {
		parsed, err := time.Parse(time.RFC3339, req.VotingDeadline)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid voting deadline format. Please use ISO 8601 format",
			})
		}
		deadline = &parsed
	}

	event, err := Eng.CreateEvent(userID, engine.CreateEventInput{
		RoomID:              c.Params("id"),
		Name:                req.Name,
		Description:         req.Description,
		BudgetType:          req.BudgetType,
		BudgetAmount:        req.BudgetAmount,
		VotingDeadline:      deadline,
		ProposedActivityIDs: req.ProposedActivityIDs,
	})
	if err != nil {
		return engineError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(event)
}

const inviteCodeAlphabet = "abcdefghjkmnpqrstuvwxyz23456789"

func newInviteCode() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		// 乱数が取れない環境はまず無いが、uuidで代替する
		return uuid.New().String()[:8]
	}
	for i := range buf {
		buf[i] = inviteCodeAlphabet[int(buf[i])%len(inviteCodeAlphabet)]
	}
	return string(buf)
}
