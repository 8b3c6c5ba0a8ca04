package email

import (
	"context"
	"sync"

	"member-tracker-go/pkg/logger"
)

type ConsoleMessage struct {
	From    string
	To      string
	Subject string
	Body    string
}

// Console logs messages instead of sending them. Used in development.
type Console struct {
	fromName string
	log      logger.Logger

	mu   sync.Mutex
	sent []ConsoleMessage
}

func NewConsole(fromName string, log logger.Logger) *Console {
	return &Console{fromName: fromName, log: log}
}

func (c *Console) Send(ctx context.Context, from, to, subject, htmlBody string) error {
	msg := ConsoleMessage{From: formatAddress(c.fromName, from), To: to, Subject: subject, Body: htmlBody}

	c.mu.Lock()
	c.sent = append(c.sent, msg)
	c.mu.Unlock()

	c.log.Info("email: console delivery", "from", msg.From, "to", to, "subject", subject, "bytes", len(htmlBody))
	c.log.Debug("email: console body", "to", to, "body", htmlBody)
	return nil
}

func (c *Console) Sent() []ConsoleMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]ConsoleMessage(nil), c.sent...)
}
