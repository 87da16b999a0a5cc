package emailvalidation

import (
	"fmt"

	"github.com/tech-arch1tect/mailcheck/config"
	"github.com/tech-arch1tect/mailcheck/services/logging"
	"github.com/tech-arch1tect/mailcheck/services/mail"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

func ProvideTokenStore(db *gorm.DB) TokenStore {
	return NewGormStore(db)
}

func ProvideUserLookup(cfg *config.Config, db *gorm.DB) UserLookup {
	return NewGormUserLookup(db, cfg.Validation.UsersTable)
}

// ProvideNotificationSender registers the built-in validate_email templates
// with the mail service and returns a mail-backed sender.
func ProvideNotificationSender(cfg *config.Config, mailService *mail.Service, logger *logging.Service) (NotificationSender, error) {
	if err := mailService.AddTemplatesFS(DefaultTemplates, DefaultTemplatesDir); err != nil {
		return nil, fmt.Errorf("failed to register email validation templates: %w", err)
	}

	return NewMailNotifier(
		mailService,
		cfg.Validation.TemplateName,
		cfg.Validation.Subject,
		cfg.App.Name,
		logger.Named("emailvalidation"),
	), nil
}

func ProvideService(cfg *config.Config, store TokenStore, users UserLookup, sender NotificationSender, logger *logging.Service) *Service {
	service := NewService(store, users, sender, logger.Named("emailvalidation"))
	service.SetDefaultLinkTemplate(ResolveLinkTemplate(cfg.App.URL, cfg.Validation.LinkTemplate))
	return service
}

var Module = fx.Options(
	fx.Provide(
		ProvideTokenStore,
		ProvideUserLookup,
		ProvideNotificationSender,
		ProvideService,
	),
)
