// Package email holds the transports behind
// notification.Sender.
package email

import (
	"fmt"
	"strings"

	"member-tracker-go/internal/config"
	"member-tracker-go/internal/domain/notification"
	"member-tracker-go/pkg/logger"
)

const (
	ProviderConsole  = "console"
	ProviderSMTP     = "smtp"
	ProviderSendgrid = "sendgrid"
)

// NewSender picks the transport named by EMAIL_PROVIDER.
func NewSender(cfg config.EmailConfig, log logger.Logger) (notification.Sender, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case ProviderConsole, "":
		return NewConsole(cfg.FromName, log), nil
	case ProviderSMTP:
		if !cfg.HasSMTP() {
			return nil, fmt.Errorf("EMAIL_SMTP_HOST is required for the smtp provider")
		}
		return NewSMTP(SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			User:     cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			FromName: cfg.FromName,
		}), nil
	case ProviderSendgrid:
		if cfg.SendgridAPIKey == "" {
			return nil, fmt.Errorf("EMAIL_SENDGRID_API_KEY is required for the sendgrid provider")
		}
		return NewSendgrid(cfg.SendgridAPIKey, cfg.FromName), nil
	default:
		return nil, fmt.Errorf("unknown email provider %q", cfg.Provider)
	}
}

func formatAddress(name, address string) string {
	if name == "" {
		return address
	}
	return fmt.Sprintf("%s <%s>", name, address)
}
