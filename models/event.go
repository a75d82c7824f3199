package models

import (
	"time"
)

// EventPhase はイベントの進行フェーズを表す
type EventPhase string

const (
	PhaseProposal   EventPhase = "proposal"   // アクティビティ提案中
	PhaseVoting     EventPhase = "voting"     // アクティビティ投票中
	PhaseScheduling EventPhase = "scheduling" // 候補日調整中
	PhaseInfo       EventPhase = "info"       // 確定済み（終端）
)

// VoteType はアクティビティへの投票種別
type VoteType string

const (
	VoteFor     VoteType = "for"
	VoteAgainst VoteType = "against"
	VoteAbstain VoteType = "abstain"
)

// DateResponseType は候補日への回答種別
type DateResponseType string

const (
	ResponseYes   DateResponseType = "yes"
	ResponseMaybe DateResponseType = "maybe"
	ResponseNo    DateResponseType = "no"
)

// Event はルーム内で企画される一回のお出かけを表す
type Event struct {
	ID          string `gorm:"primaryKey;type:varchar(36)" json:"id"`
	RoomID      string `gorm:"not null;type:varchar(36);index" json:"room_id"`
	Name        string `gorm:"not null;type:varchar(255)" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	// 短縮コード（招待リンク用）
	ShortCode string     `gorm:"uniqueIndex;type:varchar(12)" json:"short_code"`
	Phase     EventPhase `gorm:"not null;type:varchar(20);default:proposal" json:"phase"`

	VotingDeadline *time.Time `gorm:"type:timestamp" json:"voting_deadline"`

	BudgetType   string  `gorm:"type:varchar(20)" json:"budget_type"` // "total" または "per_person"
	BudgetAmount float64 `json:"budget_amount"`

	// 確定フィールド。一度セットされたら変更されない
	ChosenActivityID  *string `gorm:"type:varchar(36)" json:"chosen_activity_id"`
	FinalDateOptionID *string `gorm:"type:varchar(36)" json:"final_date_option_id"`

	CreatedByUserID string    `gorm:"type:varchar(36)" json:"created_by_user_id"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	// リレーション
	ProposedActivities []ProposedActivity `gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE" json:"proposed_activities"`
	Participants       []EventParticipant `gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE" json:"participants"`
	Votes              []ActivityVote     `gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE" json:"votes"`
	DateOptions        []DateOption       `gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE" json:"date_options"`
}

// ProposedActivity はイベントに提案されたアクティビティ候補を表す。
// Position は提案順（同点時のタイブレークに使う）
type ProposedActivity struct {
	EventID    string    `gorm:"primaryKey;type:varchar(36)" json:"event_id"`
	ActivityID string    `gorm:"primaryKey;type:varchar(36)" json:"activity_id"`
	Position   int       `gorm:"not null" json:"position"`
	Excluded   bool      `gorm:"default:false" json:"excluded"`
	CreatedAt  time.Time `json:"created_at"`
}

// EventParticipant はイベントへの参加者を表す
type EventParticipant struct {
	EventID     string    `gorm:"primaryKey;type:varchar(36)" json:"event_id"`
	UserID      string    `gorm:"primaryKey;type:varchar(36)" json:"user_id"`
	IsOrganizer bool      `gorm:"default:false" json:"is_organizer"`
	HasVoted    bool      `gorm:"default:false" json:"has_voted"`
	CreatedAt   time.Time `json:"created_at"`
}

// ActivityVote は参加者のアクティビティへの投票を表す。
// (event_id, activity_id, user_id) で一人一票
type ActivityVote struct {
	EventID    string    `gorm:"primaryKey;type:varchar(36)" json:"event_id"`
	ActivityID string    `gorm:"primaryKey;type:varchar(36)" json:"activity_id"`
	UserID     string    `gorm:"primaryKey;type:varchar(36)" json:"user_id"`
	Vote       VoteType  `gorm:"not null;type:varchar(20)" json:"vote"`
	VotedAt    time.Time `json:"voted_at"`
}

// DateOption はイベントの候補日を表す
type DateOption struct {
	ID      string `gorm:"primaryKey;type:varchar(36)" json:"id"`
	EventID string `gorm:"not null;type:varchar(36);index" json:"event_id"`

	Date      time.Time `gorm:"not null" json:"date"`
	StartTime *string   `gorm:"type:varchar(5)" json:"start_time"` // HH:mm
	EndTime   *string   `gorm:"type:varchar(5)" json:"end_time"`   // HH:mm

	CreatedAt time.Time `json:"created_at"`

	// リレーション
	Responses []DateResponse `gorm:"foreignKey:DateOptionID;constraint:OnDelete:CASCADE" json:"responses"`
}

// DateResponse は参加者の候補日に対する回答を表す。
// (date_option_id, user_id) で一人一回答
type DateResponse struct {
	DateOptionID string           `gorm:"primaryKey;type:varchar(36)" json:"date_option_id"`
	UserID       string           `gorm:"primaryKey;type:varchar(36)" json:"user_id"`
	Response     DateResponseType `gorm:"not null;type:varchar(10)" json:"response"`
	// 本命フラグ。一人につきイベント内で一つだけ
	IsPriority   bool      `gorm:"default:false" json:"is_priority"`
	Contribution float64   `gorm:"default:0" json:"contribution"`
	Note         string    `gorm:"type:varchar(255)" json:"note"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// FeedItem は確定通知のフィード項目を表す（RSS配信用）
type FeedItem struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	EventID     string    `gorm:"not null;type:varchar(36);index" json:"event_id"`
	Title       string    `gorm:"not null;type:varchar(255)" json:"title"`
	Link        string    `gorm:"not null;type:varchar(255)" json:"link"`
	Description string    `gorm:"not null;type:text" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}
