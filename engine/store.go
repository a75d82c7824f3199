package engine

import (
	"errors"
	"fmt"
	"time"

	"enkai-backend/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// participantFor は操作ユーザーの参加者レコードを返す。
// 未登録でもルームメンバーなら後から参加した扱いで登録する（ルーム外は拒否）
func participantFor(tx *gorm.DB, ev *models.Event, userID string) (*models.EventParticipant, error) {
	var p models.EventParticipant
	err := tx.Where("event_id = ? AND user_id = ?", ev.ID, userID).First(&p).Error
	if err == nil {
		return &p, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("load participant: %w", err)
	}

	var member models.RoomMember
	if err := tx.Where("room_id = ? AND user_id = ?", ev.RoomID, userID).First(&member).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("load room member: %w", err)
	}

	p = models.EventParticipant{EventID: ev.ID, UserID: userID}
	if err := tx.Create(&p).Error; err != nil {
		return nil, fmt.Errorf("add participant: %w", err)
	}
	return &p, nil
}

// requireOrganizer は幹事専用操作の権限チェック
func requireOrganizer(tx *gorm.DB, ev *models.Event, userID string) error {
	p, err := participantFor(tx, ev, userID)
	if err != nil {
		return err
	}
	if !p.IsOrganizer {
		return ErrUnauthorized
	}
	return nil
}

// upsertActivityVote は (event, activity, user) をキーに投票を入れ替える。
// 同一ユーザーの再投票は前の票を置き換え、他ユーザーの票には影響しない
func upsertActivityVote(tx *gorm.DB, eventID, activityID, userID string, vote models.VoteType, now time.Time) error {
	record := models.ActivityVote{
		EventID:    eventID,
		ActivityID: activityID,
		UserID:     userID,
		Vote:       vote,
		VotedAt:    now,
	}
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "event_id"}, {Name: "activity_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"vote", "voted_at"}),
	}).Create(&record).Error
	if err != nil {
		return fmt.Errorf("upsert vote: %w", err)
	}

	// 一票でも投じたら has_voted を立てる
	err = tx.Model(&models.EventParticipant{}).
		Where("event_id = ? AND user_id = ?", eventID, userID).
		Update("has_voted", true).Error
	if err != nil {
		return fmt.Errorf("mark has_voted: %w", err)
	}
	return nil
}

// upsertDateResponse は (date_option, user) をキーに回答を入れ替える。
// 本命フラグは一人一つなので、立てる場合は同イベント内の他の回答から外す
func upsertDateResponse(tx *gorm.DB, eventID, dateOptionID, userID string, in DateResponseInput, now time.Time) error {
	if in.IsPriority {
		optionIDs := tx.Model(&models.DateOption{}).Select("id").Where("event_id = ?", eventID)
		err := tx.Model(&models.DateResponse{}).
			Where("user_id = ? AND date_option_id IN (?)", userID, optionIDs).
			Update("is_priority", false).Error
		if err != nil {
			return fmt.Errorf("clear priority flags: %w", err)
		}
	}

	record := models.DateResponse{
		DateOptionID: dateOptionID,
		UserID:       userID,
		Response:     in.Response,
		IsPriority:   in.IsPriority,
		Contribution: in.Contribution,
		Note:         in.Note,
		UpdatedAt:    now,
	}
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "date_option_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"response", "is_priority", "contribution", "note", "updated_at"}),
	}).Create(&record).Error
	if err != nil {
		return fmt.Errorf("upsert date response: %w", err)
	}
	return nil
}

// replaceProposedActivities は提案セットを丸ごと入れ替える（提案フェーズのみ呼ばれる）
func replaceProposedActivities(tx *gorm.DB, eventID string, activityIDs []string, now time.Time) error {
	if err := tx.Where("event_id = ?", eventID).Delete(&models.ProposedActivity{}).Error; err != nil {
		return fmt.Errorf("clear proposals: %w", err)
	}
	for i, activityID := range activityIDs {
		p := models.ProposedActivity{
			EventID:    eventID,
			ActivityID: activityID,
			Position:   i,
			CreatedAt:  now,
		}
		if err := tx.Create(&p).Error; err != nil {
			return fmt.Errorf("create proposal: %w", err)
		}
	}
	return nil
}

// validateActivityIDs は重複と存在チェック
func validateActivityIDs(tx *gorm.DB, activityIDs []string) error {
	if len(activityIDs) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(activityIDs))
	for _, id := range activityIDs {
		if seen[id] {
			return fmt.Errorf("%w: duplicate activity id %s", ErrValidation, id)
		}
		seen[id] = true
	}
	var count int64
	if err := tx.Model(&models.Activity{}).Where("id IN ?", activityIDs).Count(&count).Error; err != nil {
		return fmt.Errorf("count activities: %w", err)
	}
	if int(count) != len(activityIDs) {
		return fmt.Errorf("%w: unknown activity id", ErrNotFound)
	}
	return nil
}
