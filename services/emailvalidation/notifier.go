package emailvalidation

import (
	"embed"
	"fmt"

	"github.com/tech-arch1tect/mailcheck/services/logging"
	"go.uber.org/zap"
)

// Keys of the data passed to NotificationSender.Send.
const (
	DataUser    = "user"
	DataLinkURL = "linkUrl"
)

//go:embed templates/*.html templates/*.txt
var DefaultTemplates embed.FS

// DefaultTemplatesDir is the directory of DefaultTemplates holding the
// validate_email templates.
const DefaultTemplatesDir = "templates"

// NotificationSender renders and dispatches the validation message. Transport
// failures are reported as errors wrapping ErrDeliveryFailed.
type NotificationSender interface {
	Send(data map[string]any) error
}

type MailService interface {
	SendTemplate(templateName string, to []string, subject string, data map[string]any) error
}

type MailNotifier struct {
	mail         MailService
	templateName string
	subject      string
	appName      string
	logger       *logging.Service
}

func NewMailNotifier(mail MailService, templateName, subject, appName string, logger *logging.Service) *MailNotifier {
	return &MailNotifier{
		mail:         mail,
		templateName: templateName,
		subject:      subject,
		appName:      appName,
		logger:       logger,
	}
}

func (n *MailNotifier) Send(data map[string]any) error {
	user, ok := data[DataUser].(*User)
	if !ok || user == nil {
		return fmt.Errorf("%w: notification is missing the user", ErrInvalidArgument)
	}
	if user.Email == "" {
		return fmt.Errorf("%w: user %s has no email address", ErrInvalidArgument, user.ID)
	}

	linkURL, _ := data[DataLinkURL].(string)
	if linkURL == "" {
		return fmt.Errorf("%w: notification is missing the link", ErrInvalidArgument)
	}

	if n.mail == nil {
		n.logger.Warn("mail service is not configured")
		return fmt.Errorf("%w: mail service is not configured", ErrDeliveryFailed)
	}

	templateData := map[string]any{
		DataUser:    user,
		DataLinkURL: linkURL,
		"AppName":   n.appName,
	}

	n.logger.Debug("sending email validation message",
		zap.String("user_id", user.ID.String()),
		zap.String("template", n.templateName))

	if err := n.mail.SendTemplate(n.templateName, []string{user.Email}, n.subject, templateData); err != nil {
		n.logger.Error("failed to send email validation message", zap.Error(err), zap.String("user_id", user.ID.String()))
		return fmt.Errorf("%w: %w", ErrDeliveryFailed, err)
	}

	return nil
}
