package engine

import (
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"enkai-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Config はエンジンの調整パラメータ
type Config struct {
	MaxDateOptions int
	Score          ScoreConfig
	LockTimeout    time.Duration
}

func DefaultConfig() Config {
	return Config{
		MaxDateOptions: 10,
		Score:          DefaultScoreConfig(),
		LockTimeout:    5 * time.Second,
	}
}

// ConfigFromEnv は環境変数で上書きした設定を返す
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	if v, err := strconv.Atoi(os.Getenv("MAX_DATE_OPTIONS")); err == nil && v > 0 {
		cfg.MaxDateOptions = v
	}
	if v, err := strconv.Atoi(os.Getenv("SCORE_YES")); err == nil {
		cfg.Score.Yes = v
	}
	if v, err := strconv.Atoi(os.Getenv("SCORE_MAYBE")); err == nil {
		cfg.Score.Maybe = v
	}
	if v, err := strconv.Atoi(os.Getenv("SCORE_PRIORITY_BONUS")); err == nil {
		cfg.Score.PriorityBonus = v
	}
	return cfg
}

// Notifier は確定シグナルの通知先。失敗してもイベントの状態は巻き戻さない
type Notifier interface {
	ActivityChosen(ev *models.Event) error
	DateFinalized(ev *models.Event) error
}

// Engine はイベントのライフサイクルを司る。
// すべての書き込みはイベント単位のロックとトランザクションの中で行う
type Engine struct {
	db       *gorm.DB
	cfg      Config
	notifier Notifier
	locks    *lockTable
	now      func() time.Time
}

func New(db *gorm.DB, cfg Config, notifier Notifier) *Engine {
	return &Engine{
		db:       db,
		cfg:      cfg,
		notifier: notifier,
		locks:    newLockTable(),
		now:      time.Now,
	}
}

// --- 入力 ---

type CreateEventInput struct {
	RoomID              string
	Name                string
	Description         string
	BudgetType          string
	BudgetAmount        float64
	VotingDeadline      *time.Time
	ProposedActivityIDs []string
}

type DateOptionInput struct {
	Date      time.Time
	StartTime *string
	EndTime   *string
}

type DateResponseInput struct {
	Response     models.DateResponseType
	IsPriority   bool
	Contribution float64
	Note         string
}

// --- 読み取り ---

// GetEvent はイベントのスナップショットを返す。
// 締切超過を検知した場合だけ書き込み経路（自動進行）に乗せる
func (e *Engine) GetEvent(idOrCode string) (*models.Event, error) {
	id, err := e.resolveEventID(idOrCode)
	if err != nil {
		return nil, err
	}

	var light models.Event
	if err := e.db.Select("id", "phase", "voting_deadline").First(&light, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load event: %w", err)
	}
	if deadlineElapsed(&light, e.now()) {
		return e.withEvent(id, nil)
	}
	return loadEvent(e.db, id)
}

// --- 書き込み ---

// CreateEvent はルームメンバーがイベントを作成する。
// ルームメンバー全員が参加者として登録され、作成者が幹事になる
func (e *Engine) CreateEvent(userID string, in CreateEventInput) (*models.Event, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if in.BudgetType != "" && in.BudgetType != "total" && in.BudgetType != "per_person" {
		return nil, fmt.Errorf("%w: unknown budget type %q", ErrValidation, in.BudgetType)
	}

	var out *models.Event
	err := e.db.Transaction(func(tx *gorm.DB) error {
		var room models.Room
		if err := tx.Preload("Members").First(&room, "id = ?", in.RoomID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("load room: %w", err)
		}

		isMember := room.CreatedByUserID == userID
		for _, m := range room.Members {
			if m.UserID == userID {
				isMember = true
			}
		}
		if !isMember {
			return ErrUnauthorized
		}

		if err := validateActivityIDs(tx, in.ProposedActivityIDs); err != nil {
			return err
		}

		shortCode, err := uniqueShortCode(tx)
		if err != nil {
			return err
		}

		now := e.now()
		ev := models.Event{
			ID:              uuid.New().String(),
			RoomID:          room.ID,
			Name:            in.Name,
			Description:     in.Description,
			ShortCode:       shortCode,
			Phase:           models.PhaseProposal,
			VotingDeadline:  in.VotingDeadline,
			BudgetType:      in.BudgetType,
			BudgetAmount:    in.BudgetAmount,
			CreatedByUserID: userID,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := tx.Create(&ev).Error; err != nil {
			return fmt.Errorf("create event: %w", err)
		}

		seen := make(map[string]bool)
		for _, m := range room.Members {
			if seen[m.UserID] {
				continue
			}
			seen[m.UserID] = true
			p := models.EventParticipant{
				EventID:     ev.ID,
				UserID:      m.UserID,
				IsOrganizer: m.UserID == userID,
			}
			if err := tx.Create(&p).Error; err != nil {
				return fmt.Errorf("add participant: %w", err)
			}
		}
		if !seen[userID] {
			p := models.EventParticipant{EventID: ev.ID, UserID: userID, IsOrganizer: true}
			if err := tx.Create(&p).Error; err != nil {
				return fmt.Errorf("add organizer: %w", err)
			}
		}

		if err := replaceProposedActivities(tx, ev.ID, in.ProposedActivityIDs, now); err != nil {
			return err
		}

		out, err = loadEvent(tx, ev.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ProposeActivities は提案セットを丸ごと入れ替える。提案フェーズのみ
func (e *Engine) ProposeActivities(idOrCode, userID string, activityIDs []string) (*models.Event, error) {
	return e.withEvent(idOrCode, func(tx *gorm.DB, ev *models.Event) error {
		if err := requirePhase(ev, models.PhaseProposal); err != nil {
			return err
		}
		if _, err := participantFor(tx, ev, userID); err != nil {
			return err
		}
		if err := validateActivityIDs(tx, activityIDs); err != nil {
			return err
		}
		return replaceProposedActivities(tx, ev.ID, activityIDs, e.now())
	})
}

// RemoveProposedActivity は提案から一件外す（幹事のみ、提案フェーズのみ）。
// そのアクティビティへの票も一緒に消す
func (e *Engine) RemoveProposedActivity(idOrCode, userID, activityID string) (*models.Event, error) {
	return e.withEvent(idOrCode, func(tx *gorm.DB, ev *models.Event) error {
		if err := requirePhase(ev, models.PhaseProposal); err != nil {
			return err
		}
		if err := requireOrganizer(tx, ev, userID); err != nil {
			return err
		}
		if findProposed(ev, activityID) == nil {
			return ErrNotFound
		}
		err := tx.Where("event_id = ? AND activity_id = ?", ev.ID, activityID).
			Delete(&models.ProposedActivity{}).Error
		if err != nil {
			return fmt.Errorf("remove proposal: %w", err)
		}
		err = tx.Where("event_id = ? AND activity_id = ?", ev.ID, activityID).
			Delete(&models.ActivityVote{}).Error
		if err != nil {
			return fmt.Errorf("remove votes: %w", err)
		}
		return nil
	})
}

// ExcludeActivity は提案済みアクティビティを選考対象から外す（幹事のみ）。
// 投票開始後も提案セット自体は不変のまま、除外だけは許される
func (e *Engine) ExcludeActivity(idOrCode, userID, activityID string) (*models.Event, error) {
	return e.setActivityExcluded(idOrCode, userID, activityID, true)
}

// IncludeActivity は除外を取り消す（幹事のみ）
func (e *Engine) IncludeActivity(idOrCode, userID, activityID string) (*models.Event, error) {
	return e.setActivityExcluded(idOrCode, userID, activityID, false)
}

func (e *Engine) setActivityExcluded(idOrCode, userID, activityID string, excluded bool) (*models.Event, error) {
	return e.withEvent(idOrCode, func(tx *gorm.DB, ev *models.Event) error {
		if err := requirePhase(ev, models.PhaseProposal, models.PhaseVoting); err != nil {
			return err
		}
		if err := requireOrganizer(tx, ev, userID); err != nil {
			return err
		}
		if findProposed(ev, activityID) == nil {
			return ErrNotFound
		}
		err := tx.Model(&models.ProposedActivity{}).
			Where("event_id = ? AND activity_id = ?", ev.ID, activityID).
			Update("excluded", excluded).Error
		if err != nil {
			return fmt.Errorf("update exclusion: %w", err)
		}
		return nil
	})
}

// OpenVoting は幹事が投票フェーズを開始する
func (e *Engine) OpenVoting(idOrCode, userID string) (*models.Event, error) {
	return e.withEvent(idOrCode, func(tx *gorm.DB, ev *models.Event) error {
		if err := validateTransition(ev.Phase, models.PhaseVoting); err != nil {
			return err
		}
		if err := requireOrganizer(tx, ev, userID); err != nil {
			return err
		}
		if countEligible(ev) == 0 {
			return fmt.Errorf("%w: no activities proposed", ErrValidation)
		}
		return e.transitionTo(tx, ev, models.PhaseVoting, nil, nil)
	})
}

// CastActivityVote は投票フェーズでの一人一票のアクティビティ投票
func (e *Engine) CastActivityVote(idOrCode, activityID, userID string, vote models.VoteType) (*models.Event, error) {
	return e.withEvent(idOrCode, func(tx *gorm.DB, ev *models.Event) error {
		if err := requirePhase(ev, models.PhaseVoting); err != nil {
			return err
		}
		if _, err := participantFor(tx, ev, userID); err != nil {
			return err
		}
		switch vote {
		case models.VoteFor, models.VoteAgainst, models.VoteAbstain:
		default:
			return fmt.Errorf("%w: unknown vote %q", ErrValidation, vote)
		}
		p := findProposed(ev, activityID)
		if p == nil || p.Excluded {
			return ErrNotFound
		}
		return upsertActivityVote(tx, ev.ID, activityID, userID, vote, e.now())
	})
}

// AddDateOptions は候補日をまとめて追加する。
// 上限チェックの一貫性のため、一件でも弾かれたらバッチ全体を拒否する
func (e *Engine) AddDateOptions(idOrCode, userID string, inputs []DateOptionInput) (*models.Event, error) {
	return e.withEvent(idOrCode, func(tx *gorm.DB, ev *models.Event) error {
		if err := requirePhase(ev, models.PhaseScheduling); err != nil {
			return err
		}
		if _, err := participantFor(tx, ev, userID); err != nil {
			return err
		}
		if len(inputs) == 0 {
			return fmt.Errorf("%w: no date options given", ErrValidation)
		}
		if len(ev.DateOptions)+len(inputs) > e.cfg.MaxDateOptions {
			return fmt.Errorf("%w: maximum %d date options allowed", ErrLimitExceeded, e.cfg.MaxDateOptions)
		}

		existing := make(map[string]bool, len(ev.DateOptions))
		for _, opt := range ev.DateOptions {
			existing[dateOptionKey(opt.Date, opt.StartTime)] = true
		}

		now := e.now()
		for _, in := range inputs {
			if err := validateDateOptionInput(in); err != nil {
				return err
			}
			key := dateOptionKey(in.Date, in.StartTime)
			if existing[key] {
				return fmt.Errorf("%w: %s", ErrDuplicateDateOption, key)
			}
			existing[key] = true

			opt := models.DateOption{
				ID:        uuid.New().String(),
				EventID:   ev.ID,
				Date:      normalizeDate(in.Date),
				StartTime: in.StartTime,
				EndTime:   in.EndTime,
				CreatedAt: now,
			}
			if err := tx.Create(&opt).Error; err != nil {
				return fmt.Errorf("create date option: %w", err)
			}
		}
		return nil
	})
}

// RespondToDateOption は候補日への回答（yes/maybe/no）を登録・更新する
func (e *Engine) RespondToDateOption(idOrCode, dateOptionID, userID string, in DateResponseInput) (*models.Event, error) {
	return e.withEvent(idOrCode, func(tx *gorm.DB, ev *models.Event) error {
		if err := requirePhase(ev, models.PhaseScheduling); err != nil {
			return err
		}
		if _, err := participantFor(tx, ev, userID); err != nil {
			return err
		}
		switch in.Response {
		case models.ResponseYes, models.ResponseMaybe, models.ResponseNo:
		default:
			return fmt.Errorf("%w: unknown response %q", ErrValidation, in.Response)
		}
		if !ownsDateOption(ev, dateOptionID) {
			return ErrNotFound
		}
		return upsertDateResponse(tx, ev.ID, dateOptionID, userID, in, e.now())
	})
}

// SelectWinningActivity は幹事がアクティビティを確定し、日程調整フェーズへ進める
func (e *Engine) SelectWinningActivity(idOrCode, userID, activityID string) (*models.Event, error) {
	var chosen bool
	ev, err := e.withEvent(idOrCode, func(tx *gorm.DB, ev *models.Event) error {
		if err := validateTransition(ev.Phase, models.PhaseScheduling); err != nil {
			return err
		}
		if err := requireOrganizer(tx, ev, userID); err != nil {
			return err
		}
		p := findProposed(ev, activityID)
		if p == nil || p.Excluded {
			return ErrNotFound
		}
		chosen = true
		return e.transitionTo(tx, ev, models.PhaseScheduling, &activityID, nil)
	})
	if err != nil {
		return nil, err
	}
	if chosen {
		e.signalActivityChosen(ev)
	}
	return ev, nil
}

// FinalizeDateOption は幹事が日程を確定し、イベントを終端のinfoフェーズへ進める
func (e *Engine) FinalizeDateOption(idOrCode, userID, dateOptionID string) (*models.Event, error) {
	var finalized bool
	ev, err := e.withEvent(idOrCode, func(tx *gorm.DB, ev *models.Event) error {
		if err := validateTransition(ev.Phase, models.PhaseInfo); err != nil {
			return err
		}
		if err := requireOrganizer(tx, ev, userID); err != nil {
			return err
		}
		if !ownsDateOption(ev, dateOptionID) {
			return ErrNotFound
		}
		finalized = true
		return e.transitionTo(tx, ev, models.PhaseInfo, nil, &dateOptionID)
	})
	if err != nil {
		return nil, err
	}
	if finalized {
		e.signalDateFinalized(ev)
	}
	return ev, nil
}

// SweepDeadlines は締切を過ぎたイベントをまとめて自動進行させる（cronから毎分呼ばれる）
func (e *Engine) SweepDeadlines() error {
	var ids []string
	err := e.db.Model(&models.Event{}).
		Where("phase IN ? AND voting_deadline IS NOT NULL AND voting_deadline <= ?",
			[]string{string(models.PhaseProposal), string(models.PhaseVoting)}, e.now()).
		Pluck("id", &ids).Error
	if err != nil {
		return fmt.Errorf("list events past deadline: %w", err)
	}

	for _, id := range ids {
		if _, err := e.withEvent(id, nil); err != nil {
			// ロック競合は次回のスイープに任せる
			if errors.Is(err, ErrBusy) {
				continue
			}
			return fmt.Errorf("advance event %s: %w", id, err)
		}
	}
	return nil
}

// --- 内部処理 ---

// withEvent はイベント単位のロックとトランザクションの中で fn を実行し、
// 最新のスナップショットを返す。入口で必ず締切の遅延チェックを行う
func (e *Engine) withEvent(idOrCode string, fn func(tx *gorm.DB, ev *models.Event) error) (*models.Event, error) {
	id, err := e.resolveEventID(idOrCode)
	if err != nil {
		return nil, err
	}

	release, err := e.locks.acquire(id, e.cfg.LockTimeout)
	if err != nil {
		return nil, err
	}
	defer release()

	var snapshot *models.Event
	var autoAdvanced bool
	err = e.db.Transaction(func(tx *gorm.DB) error {
		ev, err := loadEvent(tx, id)
		if err != nil {
			return err
		}
		autoAdvanced, err = e.advanceForDeadline(tx, ev)
		if err != nil {
			return err
		}
		if fn != nil {
			if err := fn(tx, ev); err != nil {
				return err
			}
		}
		snapshot, err = loadEvent(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	if autoAdvanced {
		e.signalActivityChosen(snapshot)
	}
	return snapshot, nil
}

// advanceForDeadline は締切超過なら投票フェーズを自動で終わらせる。
// 勝者は純得票数の最大（同点は提案順の早い方）。候補が無ければ何もしない
func (e *Engine) advanceForDeadline(tx *gorm.DB, ev *models.Event) (bool, error) {
	if !deadlineElapsed(ev, e.now()) {
		return false, nil
	}
	winner, ok := WinningActivity(ev.ProposedActivities, ev.Votes)
	if !ok {
		return false, nil
	}
	if err := e.transitionTo(tx, ev, models.PhaseScheduling, &winner, nil); err != nil {
		return false, err
	}
	log.Println("Voting deadline reached, auto-advanced event:", ev.ID, "chosen activity:", winner)
	return true, nil
}

// transitionTo はフェーズと確定フィールドを一緒に書き込む。
// 確定フィールドは一度セットされたら二度と変更されない（フェーズ検証が守る）
func (e *Engine) transitionTo(tx *gorm.DB, ev *models.Event, to models.EventPhase, chosenActivityID, finalDateOptionID *string) error {
	now := e.now()
	updates := map[string]interface{}{
		"phase":      to,
		"updated_at": now,
	}
	if chosenActivityID != nil {
		updates["chosen_activity_id"] = *chosenActivityID
	}
	if finalDateOptionID != nil {
		updates["final_date_option_id"] = *finalDateOptionID
	}
	if err := tx.Model(&models.Event{}).Where("id = ?", ev.ID).Updates(updates).Error; err != nil {
		return fmt.Errorf("transition event: %w", err)
	}

	ev.Phase = to
	ev.UpdatedAt = now
	if chosenActivityID != nil {
		ev.ChosenActivityID = chosenActivityID
	}
	if finalDateOptionID != nil {
		ev.FinalDateOptionID = finalDateOptionID
	}
	return nil
}

func (e *Engine) resolveEventID(idOrCode string) (string, error) {
	var ev models.Event
	err := e.db.Select("id").Where("id = ? OR short_code = ?", idOrCode, idOrCode).First(&ev).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("resolve event: %w", err)
	}
	return ev.ID, nil
}

func (e *Engine) signalActivityChosen(ev *models.Event) {
	if e.notifier == nil {
		return
	}
	go func() {
		if err := e.notifier.ActivityChosen(ev); err != nil {
			log.Println("Failed to send activity chosen notification:", err)
		}
	}()
}

func (e *Engine) signalDateFinalized(ev *models.Event) {
	if e.notifier == nil {
		return
	}
	go func() {
		if err := e.notifier.DateFinalized(ev); err != nil {
			log.Println("Failed to send date finalized notification:", err)
		}
	}()
}

// --- ヘルパー ---

func loadEvent(tx *gorm.DB, eventID string) (*models.Event, error) {
	var ev models.Event
	err := tx.
		Preload("ProposedActivities", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Participants").
		Preload("Votes").
		Preload("DateOptions", func(db *gorm.DB) *gorm.DB { return db.Order("date ASC") }).
		Preload("DateOptions.Responses").
		First(&ev, "id = ?", eventID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load event: %w", err)
	}
	return &ev, nil
}

func deadlineElapsed(ev *models.Event, now time.Time) bool {
	if ev.Phase != models.PhaseProposal && ev.Phase != models.PhaseVoting {
		return false
	}
	return ev.VotingDeadline != nil && !now.Before(*ev.VotingDeadline)
}

func findProposed(ev *models.Event, activityID string) *models.ProposedActivity {
	for i := range ev.ProposedActivities {
		if ev.ProposedActivities[i].ActivityID == activityID {
			return &ev.ProposedActivities[i]
		}
	}
	return nil
}

func countEligible(ev *models.Event) int {
	n := 0
	for _, p := range ev.ProposedActivities {
		if !p.Excluded {
			n++
		}
	}
	return n
}

func ownsDateOption(ev *models.Event, dateOptionID string) bool {
	for _, opt := range ev.DateOptions {
		if opt.ID == dateOptionID {
			return true
		}
	}
	return false
}

func validateDateOptionInput(in DateOptionInput) error {
	if in.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrValidation)
	}
	if in.EndTime != nil && in.StartTime == nil {
		return fmt.Errorf("%w: end time requires a start time", ErrValidation)
	}
	for _, t := range []*string{in.StartTime, in.EndTime} {
		if t == nil {
			continue
		}
		if _, err := time.Parse("15:04", *t); err != nil {
			return fmt.Errorf("%w: invalid time %q, expected HH:mm", ErrValidation, *t)
		}
	}
	return nil
}

// normalizeDate は時刻部分を落として日付だけにする
func normalizeDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func dateOptionKey(date time.Time, startTime *string) string {
	key := normalizeDate(date).Format("2006-01-02")
	if startTime != nil {
		key += " " + *startTime
	}
	return key
}

const shortCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// uniqueShortCode は衝突しない短縮コードを生成する
func uniqueShortCode(tx *gorm.DB) (string, error) {
	for attempt := 0; attempt < 10; attempt++ {
		buf := make([]byte, 6)
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("generate short code: %w", err)
		}
		for i := range buf {
			buf[i] = shortCodeAlphabet[int(buf[i])%len(shortCodeAlphabet)]
		}
		code := string(buf)

		var count int64
		if err := tx.Model(&models.Event{}).Where("short_code = ?", code).Count(&count).Error; err != nil {
			return "", fmt.Errorf("check short code: %w", err)
		}
		if count == 0 {
			return code, nil
		}
	}
	return "", fmt.Errorf("failed to generate unique short code")
}
