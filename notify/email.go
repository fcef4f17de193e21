package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/wneessen/go-mail"

	"rea_scraper/config"
	"rea_scraper/models"
)

// EmailNotifier sends the plain-text report over authenticated SMTP.
type EmailNotifier struct {
	cfg config.SMTPConfig
	env string
	now func() time.Time
}

func NewEmailNotifier(cfg config.SMTPConfig, env string) *EmailNotifier {
	return &EmailNotifier{cfg: cfg, env: env, now: time.Now}
}

func (n *EmailNotifier) message(report models.Report) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.From(n.cfg.From); err != nil {
		return nil, fmt.Errorf("set sender: %w", err)
	}
	if err := m.To(recipients(n.cfg.To)...); err != nil {
		return nil, fmt.Errorf("set recipients: %w", err)
	}
	m.Subject(Title(report, n.now()))
	m.SetBodyString(mail.TypeTextPlain, Body(report, n.env))
	return m, nil
}

func (n *EmailNotifier) Send(ctx context.Context, report models.Report) error {
	m, err := n.message(report)
	if err != nil {
		return err
	}

	client, err := mail.NewClient(n.cfg.Address,
		mail.WithPort(n.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(n.cfg.Username),
		mail.WithPassword(n.cfg.Password),
		mail.WithTLSPortPolicy(mail.TLSOpportunistic),
	)
	if err != nil {
		return fmt.Errorf("create smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("send report email: %w", err)
	}
	return nil
}

func recipients(to string) []string {
	var out []string
	for _, r := range strings.Split(to, ",") {
		if r = strings.TrimSpace(r); r != "" {
			out = append(out, r)
		}
	}
	return out
}
