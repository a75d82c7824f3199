package notify

import (
	"fmt"
	"log"
	"os"

	"github.com/resend/resend-go/v2"
)

// Mailer はResend経由で通知メールを送る
type Mailer struct {
	client *resend.Client
	from   string
}

// NewMailerFromEnv はRESEND_API_KEYが設定されていればMailerを返す。
// 未設定ならnil（メール通知なしで動作する）
func NewMailerFromEnv() *Mailer {
	apiKey := os.Getenv("RESEND_API_KEY")
	if apiKey == "" {
		log.Println("RESEND_API_KEY not set, mail notifications disabled")
		return nil
	}
	from := os.Getenv("MAIL_FROM")
	if from == "" {
		from = "enkai <noreply@enkai.example.com>"
	}
	return &Mailer{client: resend.NewClient(apiKey), from: from}
}

func (m *Mailer) Send(to []string, subject, html string) error {
	params := &resend.SendEmailRequest{
		From:    m.from,
		To:      to,
		Subject: subject,
		Html:    html,
	}
	sent, err := m.client.Emails.Send(params)
	if err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	log.Println("Sent finalize mail:", sent.Id)
	return nil
}
