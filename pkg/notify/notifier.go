package notify

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"shore-hockey/pkg/apperrors"
	"shore-hockey/pkg/clients/resend"
)

const (
	ProviderResend = "resend"
	ProviderNone   = "none"
)

// Message is a lead notification.
type Message struct {
	Subject string
	Text    string
	HTML    string
}

// Notifier sends lead notifications.
type Notifier interface {
	Notify(ctx context.Context, msg Message) error
}

// Settings selects the provider and its credentials.
type Settings struct {
	Provider string
	APIKey   string
	To       string
	From     string
}

type emailNotifier struct {
	settings Settings
	client   resend.Client
}

// NewEmailNotifier returns a Notifier driven by settings. Configuration is
// checked on every call, so a misconfigured deployment still accepts and
// stores leads and reports CONFIG_ERROR at notification time.
func NewEmailNotifier(settings Settings, client resend.Client) Notifier {
	return &emailNotifier{settings: settings, client: client}
}

func (n *emailNotifier) Notify(ctx context.Context, msg Message) error {
	switch n.settings.Provider {
	case ProviderNone:
		return nil
	case ProviderResend:
	default:
		log.Error().Str("provider", n.settings.Provider).Msg("unsupported email provider")
		return apperrors.Config("Email configuration is invalid.")
	}

	if n.settings.APIKey == "" || n.settings.To == "" || n.settings.From == "" {
		return apperrors.Config("Resend email configuration is missing.")
	}

	err := n.client.SendEmail(ctx, resend.Email{
		From:    n.settings.From,
		To:      []string{n.settings.To},
		Subject: msg.Subject,
		HTML:    msg.HTML,
		Text:    msg.Text,
	})
	if err == nil {
		return nil
	}

	message := "Failed to send notification email."
	var apiErr *resend.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		message = apiErr.Message
	}
	return apperrors.Email(message, err)
}

// Check reports the configuration problem Notify would hit, if any.
func (s Settings) Check() error {
	switch s.Provider {
	case ProviderNone:
		return nil
	case ProviderResend:
		if s.APIKey == "" || s.To == "" || s.From == "" {
			return errors.New("RESEND_API_KEY, NOTIFICATION_EMAIL_TO and NOTIFICATION_EMAIL_FROM are required")
		}
		return nil
	default:
		return errors.New("unsupported email provider: " + s.Provider)
	}
}
