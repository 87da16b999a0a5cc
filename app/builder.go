package app

import (
	"fmt"

	"github.com/tech-arch1tect/mailcheck/config"
	"github.com/tech-arch1tect/mailcheck/database"
	"github.com/tech-arch1tect/mailcheck/services/emailvalidation"
	"github.com/tech-arch1tect/mailcheck/services/logging"
	"github.com/tech-arch1tect/mailcheck/services/mail"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

type AppBuilder struct {
	config     *config.Config
	services   map[string]bool
	models     []any
	fxOptions  []fx.Option
	errors     []error
	mailClient mail.MailClient
}

func NewApp() *AppBuilder {
	return &AppBuilder{
		services:  make(map[string]bool),
		models:    make([]any, 0),
		fxOptions: make([]fx.Option, 0),
		errors:    make([]error, 0),
	}
}

func (b *AppBuilder) WithConfig(cfg *config.Config) *AppBuilder {
	if cfg == nil {
		b.addError("config cannot be nil")
		return b
	}
	b.config = cfg
	return b
}

func (b *AppBuilder) WithAutoConfig() *AppBuilder {
	cfg := &config.Config{}
	if err := config.LoadConfig(cfg); err != nil {
		b.addError(fmt.Sprintf("failed to load config: %v", err))
		return b
	}
	b.config = cfg
	return b
}

func (b *AppBuilder) WithDatabase(models ...any) *AppBuilder {
	b.services["database"] = true
	b.models = append(b.models, models...)
	return b
}

func (b *AppBuilder) WithMail() *AppBuilder {
	b.services["mail"] = true
	return b
}

// WithMailClient enables mail and delivers through client instead of the
// SMTP client built from config.
func (b *AppBuilder) WithMailClient(client mail.MailClient) *AppBuilder {
	if client == nil {
		b.addError("mail client cannot be nil")
		return b
	}
	b.services["mail"] = true
	b.mailClient = client
	return b
}

func (b *AppBuilder) WithEmailValidation() *AppBuilder {
	b.services["email_validation"] = true
	return b
}

func (b *AppBuilder) WithFxOptions(opts ...fx.Option) *AppBuilder {
	b.fxOptions = append(b.fxOptions, opts...)
	return b
}

func (b *AppBuilder) Build() (*App, error) {

	if err := b.validate(); err != nil {
		return nil, err
	}

	if b.config == nil {
		if err := b.WithAutoConfig().validate(); err != nil {
			return nil, err
		}
	}

	logger, err := b.createLogger()
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	app := &App{
		config: b.config,
		logger: logger,
	}

	fxOptions := b.buildFxOptions(app, logger)

	fxApp := fx.New(fxOptions...)
	if err := fxApp.Err(); err != nil {
		return nil, fmt.Errorf("failed to build application: %w", err)
	}
	app.fx = fxApp

	return app, nil
}

func (b *AppBuilder) addError(msg string) {
	b.errors = append(b.errors, fmt.Errorf("%s", msg))
}

func (b *AppBuilder) validate() error {

	if len(b.errors) > 0 {
		return fmt.Errorf("configuration errors: %v", b.errors)
	}

	if b.services["email_validation"] && !b.services["database"] {
		b.services["database"] = true
	}

	if b.services["email_validation"] && !b.services["mail"] {
		b.services["mail"] = true
	}

	return nil
}

func (b *AppBuilder) createLogger() (*logging.Service, error) {
	if b.config == nil {
		return nil, fmt.Errorf("config required for logger creation")
	}

	return logging.NewService(logging.Config{
		Level:      logging.LogLevel(b.config.Log.Level),
		Format:     b.config.Log.Format,
		OutputPath: b.config.Log.Output,
	})
}

func (b *AppBuilder) migrationModels() []any {
	models := append([]any{}, b.models...)
	if b.services["email_validation"] {
		models = append(models, &emailvalidation.Token{})
	}
	return models
}

func (b *AppBuilder) buildFxOptions(app *App, logger *logging.Service) []fx.Option {
	var options []fx.Option

	options = append(options,
		fx.Supply(b.config),
		fx.Supply(logger),
		fx.NopLogger,
	)

	if b.services["database"] {
		options = append(options,
			fx.Supply(database.WithModels(b.migrationModels()...)),
			database.Module,
			fx.Invoke(func(db *gorm.DB) {
				app.db = db
			}),
		)
	}

	if b.services["mail"] {
		if b.mailClient != nil {
			client := b.mailClient
			options = append(options, fx.Provide(func(cfg *config.Config, logger *logging.Service) (*mail.Service, error) {
				return mail.NewServiceWithClient(&cfg.Mail, logger.Named("mail"), client)
			}))
		} else {
			options = append(options, mail.Module)
		}
		options = append(options, fx.Invoke(func(svc *mail.Service) {
			app.mail = svc
		}))
	}

	if b.services["email_validation"] {
		options = append(options,
			emailvalidation.Module,
			fx.Invoke(func(svc *emailvalidation.Service) {
				app.validation = svc
			}),
		)
	}

	options = append(options, b.fxOptions...)

	return options
}
