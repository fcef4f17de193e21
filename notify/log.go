package notify

import (
	"context"
	"log"
	"time"

	"rea_scraper/config"
	"rea_scraper/models"
)

// LogNotifier writes the report to the process log. Used when SMTP is not configured.
type LogNotifier struct {
	env string
}

func NewLogNotifier(env string) *LogNotifier {
	return &LogNotifier{env: env}
}

func (n *LogNotifier) Send(_ context.Context, report models.Report) error {
	log.Printf("%s\n%s", Title(report, time.Now()), Body(report, n.env))
	return nil
}

// New picks the email notifier when SMTP is configured.
func New(smtp config.SMTPConfig, env string) Notifier {
	if smtp.Enabled() {
		return NewEmailNotifier(smtp, env)
	}
	return NewLogNotifier(env)
}
