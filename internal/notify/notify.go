package notify

import (
	"context"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Message is one email addressed to every entry in To.
type Message struct {
	Subject string
	Text    string
	HTML    string
	To      []string
}

// Notifier delivers messages. Callers treat errors as non-fatal.
type Notifier interface {
	Send(ctx context.Context, msg Message) error
}

// LogNotifier writes messages to the log instead of delivering them.
// It is used when no SMTP host is configured.
type LogNotifier struct {
	logger *log.Logger
}

func NewLogNotifier(logger *log.Logger) *LogNotifier {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Send(ctx context.Context, msg Message) error {
	n.logger.WithFields(log.Fields{
		"subject": msg.Subject,
		"to":      strings.Join(msg.To, ","),
	}).Info("📧 Email (not delivered, SMTP disabled)")
	n.logger.Debug(msg.Text)
	return nil
}
