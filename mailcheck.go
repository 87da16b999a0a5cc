package mailcheck

import (
	"github.com/tech-arch1tect/mailcheck/app"
	"github.com/tech-arch1tect/mailcheck/config"
)

type App = app.App

// New builds an application with email validation enabled. A nil cfg is
// loaded from the environment.
func New(cfg *config.Config) (*App, error) {
	builder := app.NewApp()
	if cfg != nil {
		builder.WithConfig(cfg)
	}
	return builder.WithEmailValidation().Build()
}
