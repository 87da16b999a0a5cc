package testutils

import (
	"github.com/google/uuid"
	"github.com/tech-arch1tect/mailcheck/config"
)

func GetTestConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{
			Name: "Test App",
			URL:  "http://localhost:8080",
		},
		Log: config.LogConfig{
			Level:  "error",
			Format: "json",
			Output: "stdout",
		},
		Database: config.DatabaseConfig{
			Driver:      "sqlite",
			DSN:         ":memory:",
			AutoMigrate: true,
		},
		Mail: config.MailConfig{
			Host:        "localhost",
			Port:        587,
			Encryption:  "tls",
			FromAddress: "noreply@example.com",
			FromName:    "Test App",
		},
		Validation: config.ValidationConfig{
			LinkTemplate: "/auth/validate-email?token={0}",
			TemplateName: "validate_email",
			Subject:      "Please validate your email address",
			UsersTable:   "users",
		},
	}
}

const TestLinkTemplate = "https://cms.example.com/validate?token={0}"

var TestUsers = struct {
	Alice struct {
		ID    uuid.UUID
		Email string
		Name  string
	}
	Bob struct {
		ID    uuid.UUID
		Email string
		Name  string
	}
}{
	Alice: struct {
		ID    uuid.UUID
		Email string
		Name  string
	}{
		ID:    uuid.MustParse("6f1f3c2e-8a4b-4c1d-9e2f-0a1b2c3d4e5f"),
		Email: "alice@example.com",
		Name:  "Alice",
	},
	Bob: struct {
		ID    uuid.UUID
		Email string
		Name  string
	}{
		ID:    uuid.MustParse("7a2b4d3f-9b5c-4d2e-8f3a-1b2c3d4e5f60"),
		Email: "bob@example.com",
		Name:  "Bob",
	},
}
