package notify

import (
	"fmt"
	"log"
	"os"
	"time"

	"enkai-backend/models"

	"gorm.io/gorm"
)

// EventNotifier は確定シグナルをフィード項目とメールに変換する。
// エンジンからは投げっぱなしで呼ばれ、失敗してもイベントの状態には影響しない
type EventNotifier struct {
	db          *gorm.DB
	mailer      *Mailer // nilならメールなし
	frontendURL string
}

func NewEventNotifier(db *gorm.DB, mailer *Mailer) *EventNotifier {
	frontendURL := os.Getenv("FRONTEND_URL")
	if frontendURL == "" {
		frontendURL = "http://localhost:3000"
	}
	return &EventNotifier{db: db, mailer: mailer, frontendURL: frontendURL}
}

// ActivityChosen はアクティビティ確定（投票フェーズ終了）の通知
func (n *EventNotifier) ActivityChosen(ev *models.Event) error {
	item := models.FeedItem{
		EventID:     ev.ID,
		Title:       ev.Name,
		Link:        n.eventLink(ev),
		Description: fmt.Sprintf("【%s】アクティビティが決定しました。日程調整を始めましょう。", ev.Name),
		CreatedAt:   time.Now(),
	}
	if err := n.db.Create(&item).Error; err != nil {
		return fmt.Errorf("create feed item: %w", err)
	}
	return nil
}

// DateFinalized は日程確定の通知。フィードに加えて参加者へメールを送る
func (n *EventNotifier) DateFinalized(ev *models.Event) error {
	dateText := "未定"
	if ev.FinalDateOptionID != nil {
		for _, opt := range ev.DateOptions {
			if opt.ID == *ev.FinalDateOptionID {
				dateText = opt.Date.Format("2006年01月02日")
				if opt.StartTime != nil {
					dateText += " " + *opt.StartTime
				}
				break
			}
		}
	}

	item := models.FeedItem{
		EventID:     ev.ID,
		Title:       ev.Name,
		Link:        n.eventLink(ev),
		Description: fmt.Sprintf("【%s】開催日が決定しました。\n開催日: %s", ev.Name, dateText),
		CreatedAt:   time.Now(),
	}
	if err := n.db.Create(&item).Error; err != nil {
		return fmt.Errorf("create feed item: %w", err)
	}

	if n.mailer != nil {
		emails, err := n.participantEmails(ev)
		if err != nil {
			return err
		}
		if len(emails) > 0 {
			subject := fmt.Sprintf("【%s】開催日が決定しました", ev.Name)
			body := fmt.Sprintf(
				"<p>【%s】の開催日が決定しました。</p><p>開催日: %s</p><p><a href=%q>イベントページを見る</a></p>",
				ev.Name, dateText, n.eventLink(ev),
			)
			if err := n.mailer.Send(emails, subject, body); err != nil {
				// メール失敗は確定処理に波及させない
				log.Println("Failed to send finalize mail:", err)
			}
		}
	}
	return nil
}

func (n *EventNotifier) eventLink(ev *models.Event) string {
	return fmt.Sprintf("%s/events/%s", n.frontendURL, ev.ShortCode)
}

func (n *EventNotifier) participantEmails(ev *models.Event) ([]string, error) {
	userIDs := make([]string, 0, len(ev.Participants))
	for _, p := range ev.Participants {
		userIDs = append(userIDs, p.UserID)
	}
	if len(userIDs) == 0 {
		return nil, nil
	}

	var emails []string
	err := n.db.Model(&models.User{}).Where("id IN ?", userIDs).Pluck("email", &emails).Error
	if err != nil {
		return nil, fmt.Errorf("load participant emails: %w", err)
	}
	return emails, nil
}
