package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	App        AppConfig        `envPrefix:"APP_"`
	Log        LogConfig        `envPrefix:"LOG_"`
	Database   DatabaseConfig   `envPrefix:"DATABASE_"`
	Mail       MailConfig       `envPrefix:"MAIL_"`
	Validation ValidationConfig `envPrefix:"VALIDATION_"`
}

type AppConfig struct {
	Name string `env:"NAME" envDefault:"mailcheck"`
	URL  string `env:"URL" envDefault:"http://localhost:8080"`
}

type LogConfig struct {
	Level  string `env:"LEVEL" envDefault:"info"`
	Format string `env:"FORMAT" envDefault:"json"`
	Output string `env:"OUTPUT" envDefault:"stdout"`
}

type DatabaseConfig struct {
	Driver      string `env:"DRIVER" envDefault:"sqlite"`
	DSN         string `env:"DSN" envDefault:"app.db"`
	AutoMigrate bool   `env:"AUTO_MIGRATE" envDefault:"true"`
}

type MailConfig struct {
	Host         string `env:"HOST" envDefault:"localhost"`
	Port         int    `env:"PORT" envDefault:"587"`
	Username     string `env:"USERNAME"`
	Password     string `env:"PASSWORD"`
	Encryption   string `env:"ENCRYPTION" envDefault:"tls"`
	FromAddress  string `env:"FROM_ADDRESS"`
	FromName     string `env:"FROM_NAME"`
	TemplatesDir string `env:"TEMPLATES_DIR"`
}

// ValidationConfig controls how validation emails are built. {0} in
// LinkTemplate marks where the token id is substituted; a template starting
// with "/" is resolved against App.URL.
type ValidationConfig struct {
	LinkTemplate string `env:"LINK_TEMPLATE" envDefault:"/auth/validate-email?token={0}"`
	TemplateName string `env:"TEMPLATE_NAME" envDefault:"validate_email"`
	Subject      string `env:"SUBJECT" envDefault:"Please validate your email address"`
	UsersTable   string `env:"USERS_TABLE" envDefault:"users"`
}

func LoadConfig(cfg any) error {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found: %v", err)
	}

	if err := env.Parse(cfg); err != nil {
		return err
	}

	if c, ok := cfg.(*Config); ok {
		if err := validateMailConfig(&c.Mail); err != nil {
			return fmt.Errorf("invalid mail config: %w", err)
		}
		if err := validateValidationConfig(&c.Validation); err != nil {
			return fmt.Errorf("invalid validation config: %w", err)
		}
	}

	return nil
}

func validateMailConfig(cfg *MailConfig) error {
	switch cfg.Encryption {
	case "tls", "starttls", "ssl", "none":
	default:
		return fmt.Errorf("unsupported mail encryption %q (supported: tls, starttls, ssl, none)", cfg.Encryption)
	}

	if cfg.Port <= 0 || cfg.Port > 65535 {
		return fmt.Errorf("mail port %d out of range", cfg.Port)
	}

	return nil
}

func validateValidationConfig(cfg *ValidationConfig) error {
	if cfg.TemplateName == "" {
		return fmt.Errorf("template name must not be empty")
	}

	if cfg.UsersTable == "" {
		return fmt.Errorf("users table must not be empty")
	}

	if cfg.LinkTemplate != "" && strings.Count(cfg.LinkTemplate, "{0}") != 1 {
		return fmt.Errorf("link template must contain exactly one {0} placeholder")
	}

	return nil
}
