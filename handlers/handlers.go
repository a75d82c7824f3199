package handlers

import (
	"errors"

	"enkai-backend/engine"

	"github.com/gofiber/fiber/v2"
)

// Eng はライフサイクルエンジン。main.goのSetupでセットされる
var Eng *engine.Engine

func Setup(e *engine.Engine) {
	Eng = e
}

// Register はAPIルートを登録する
func Register(app *fiber.App) {
	api := app.Group("/api/v1")

	// ユーザー
	api.Post("/users", CreateUser)

	// アクティビティ
	api.Post("/activities", CreateActivity)
	api.Get("/activities", ListActivities)

	// ルーム
	api.Post("/rooms", CreateRoom)
	api.Post("/rooms/join", JoinRoom)
	api.Get("/rooms/:id", GetRoom)
	api.Get("/rooms/:id/events", GetRoomEvents)
	api.Post("/rooms/:id/events", CreateEvent)

	// イベント
	api.Get("/events/:id", GetEvent)
	api.Put("/events/:id/activities", ProposeActivities)
	api.Delete("/events/:id/activities/:activityId", RemoveProposedActivity)
	api.Patch("/events/:id/activities/:activityId/exclude", ExcludeActivity)
	api.Patch("/events/:id/activities/:activityId/include", IncludeActivity)
	api.Post("/events/:id/open-voting", OpenVoting)
	api.Post("/events/:id/votes", CastVote)
	api.Post("/events/:id/date-options", AddDateOptions)
	api.Post("/events/:id/date-options/:optionId/response", RespondToDateOption)
	api.Post("/events/:id/select-activity", SelectActivity)
	api.Post("/events/:id/finalize-date", FinalizeDate)

	// 確定通知のRSSフィード
	api.Get("/rss/:id/feed", EventRSS)
}

// currentUserID は操作ユーザーを取り出す。
// セッション発行は外部コラボレーターの責務なので、ここではヘッダーを信頼する
func currentUserID(c *fiber.Ctx) (string, bool) {
	userID := c.Get("X-User-ID")
	return userID, userID != ""
}

// unauthorized はヘッダー欠落時の401レスポンス
func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": "X-User-ID header is required",
	})
}

// engineError はエンジンの型付きエラーをHTTPレスポンスに変換する
func engineError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, engine.ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, engine.ErrUnauthorized):
		status = fiber.StatusForbidden
	case errors.Is(err, engine.ErrBusy):
		status = fiber.StatusConflict
	case errors.Is(err, engine.ErrInvalidPhase),
		errors.Is(err, engine.ErrEventFinalized),
		errors.Is(err, engine.ErrLimitExceeded),
		errors.Is(err, engine.ErrDuplicateDateOption),
		errors.Is(err, engine.ErrValidation):
		status = fiber.StatusBadRequest
	}
	return c.Status(status).JSON(fiber.Map{
		"error": err.Error(),
	})
}
