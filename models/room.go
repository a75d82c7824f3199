package models

import (
	"time"
)

// RoomRole はルーム内での役割を表す
type RoomRole string

const (
	RoleOwner  RoomRole = "owner"
	RoleMember RoomRole = "member"
)

// Room はイベントを企画するグループを表す
type Room struct {
	ID          string `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Name        string `gorm:"not null;type:varchar(255)" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	// 招待コード。これを知っているユーザーだけが参加できる
	InviteCode      string    `gorm:"uniqueIndex;type:varchar(12)" json:"invite_code"`
	CreatedByUserID string    `gorm:"type:varchar(36)" json:"created_by_user_id"`
	CreatedAt       time.Time `json:"created_at"`

	// リレーション
	Members []RoomMember `gorm:"foreignKey:RoomID;constraint:OnDelete:CASCADE" json:"members"`
	Events  []Event      `gorm:"foreignKey:RoomID" json:"events,omitempty"`
}

// RoomMember はルームのメンバーを表す
type RoomMember struct {
	RoomID   string    `gorm:"primaryKey;type:varchar(36)" json:"room_id"`
	UserID   string    `gorm:"primaryKey;type:varchar(36)" json:"user_id"`
	Role     RoomRole  `gorm:"type:varchar(20);default:member" json:"role"`
	JoinedAt time.Time `json:"joined_at"`
}

// User はサービスの利用者を表す
type User struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Email     string    `gorm:"uniqueIndex;not null;type:varchar(255)" json:"email"`
	Name      string    `gorm:"not null;type:varchar(100)" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Activity は提案可能なアクティビティを表す
type Activity struct {
	ID                string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Title             string    `gorm:"not null;type:varchar(255)" json:"title"`
	Category          string    `gorm:"type:varchar(50)" json:"category"`
	Region            string    `gorm:"type:varchar(50)" json:"region"`
	City              string    `gorm:"type:varchar(100)" json:"city"`
	EstPricePerPerson float64   `json:"est_price_per_person"`
	ShortDescription  string    `gorm:"type:text" json:"short_description"`
	CreatedAt         time.Time `json:"created_at"`
}
