package handlers

import (
	"time"

	"enkai-backend/engine"
	"enkai-backend/models"

	"github.com/gofiber/fiber/v2"
)

type ProposeActivitiesRequest struct {
	ActivityIDs []string `json:"activity_ids"`
}

type VoteRequest struct {
	ActivityID string `json:"activity_id"`
	Vote       string `json:"vote"` // "for", "against", "abstain"
}

type DateOptionRequest struct {
	Date      string  `json:"date"` // YYYY-MM-DD
	StartTime *string `json:"start_time"`
	EndTime   *string `json:"end_time"`
}

type AddDateOptionsRequest struct {
	DateOptions []DateOptionRequest `json:"date_options"`
}

type DateResponseRequest struct {
	Response     string  `json:"response"` // "yes", "maybe", "no"
	IsPriority   bool    `json:"is_priority"`
	Contribution float64 `json:"contribution"`
	Note         string  `json:"note"`
}

type SelectActivityRequest struct {
	ActivityID string `json:"activity_id"`
}

type FinalizeDateRequest struct {
	DateOptionID string `json:"date_option_id"`
}

// GetEvent はイベントのスナップショットを返す（IDまたは短縮コード）
func GetEvent(c *fiber.Ctx) error {
	event, err := Eng.GetEvent(c.Params("id"))
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(event)
}

// ProposeActivities は提案セットを置き換える（提案フェーズのみ）
func ProposeActivities(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c)
	}

	var req ProposeActivitiesRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request format",
		})
	}

	event, err := Eng.ProposeActivities(c.Params("id"), userID, req.ActivityIDs)
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(event)
}

// RemoveProposedActivity は提案から一件外す（幹事のみ）
func RemoveProposedActivity(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c)
	}

	event, err := Eng.RemoveProposedActivity(c.Params("id"), userID, c.Params("activityId"))
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(event)
}

// ExcludeActivity はアクティビティを選考対象から外す（幹事のみ）
func ExcludeActivity(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c)
	}

	event, err := Eng.ExcludeActivity(c.Params("id"), userID, c.Params("activityId"))
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(event)
}

// IncludeActivity は除外を取り消す（幹事のみ）
func IncludeActivity(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c)
	}

	event, err := Eng.IncludeActivity(c.Params("id"), userID, c.Params("activityId"))
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(event)
}

// OpenVoting は投票フェーズを開始する（幹事のみ）
func OpenVoting(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c)
	}

	event, err := Eng.OpenVoting(c.Params("id"), userID)
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(event)
}

// CastVote はアクティビティへの投票を登録・更新する
func CastVote(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c)
	}

	var req VoteRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request format",
		})
	}

	event, err := Eng.CastActivityVote(c.Params("id"), req.ActivityID, userID, models.VoteType(req.Vote))
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(event)
}

// AddDateOptions は候補日をまとめて追加する。全件成功か全件拒否
func AddDateOptions(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c)
	}

	var req AddDateOptionsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request format",
		})
	}

	inputs := make([]engine.DateOptionInput, 0, len(req.DateOptions))
	for _, d := range req.DateOptions {
		date, err := time.Parse("2006-01-02", d.Date)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid date format. Please use YYYY-MM-DD",
			})
		}
		inputs = append(inputs, engine.DateOptionInput{
			Date:      date,
			StartTime: d.StartTime,
			EndTime:   d.EndTime,
		})
	}

	event, err := Eng.AddDateOptions(c.Params("id"), userID, inputs)
	if err != nil {
		return engineError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(event)
}

// RespondToDateOption は候補日への回答を登録・更新する
func RespondToDateOption(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c)
	}

	var req DateResponseRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request format",
		})
	}

	event, err := Eng.RespondToDateOption(c.Params("id"), c.Params("optionId"), userID, engine.DateResponseInput{
		Response:     models.DateResponseType(req.Response),
		IsPriority:   req.IsPriority,
		Contribution: req.Contribution,
		Note:         req.Note,
	})
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(event)
}

// SelectActivity はアクティビティを確定し日程調整フェーズへ進める（幹事のみ）
func SelectActivity(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c)
	}

	var req SelectActivityRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request format",
		})
	}

	event, err := Eng.SelectWinningActivity(c.Params("id"), userID, req.ActivityID)
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(event)
}

// FinalizeDate は日程を確定しイベントを終端フェーズへ進める（幹事のみ）
func FinalizeDate(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return unauthorized(c)
	}

	var req FinalizeDateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request format",
		})
	}

	event, err := Eng.FinalizeDateOption(c.Params("id"), userID, req.DateOptionID)
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(event)
}
