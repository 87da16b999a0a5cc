package app

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tech-arch1tect/mailcheck/config"
	"github.com/tech-arch1tect/mailcheck/services/emailvalidation"
	"github.com/tech-arch1tect/mailcheck/services/logging"
	"github.com/tech-arch1tect/mailcheck/services/mail"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	fx         *fx.App
	config     *config.Config
	logger     *logging.Service
	db         *gorm.DB
	mail       *mail.Service
	validation *emailvalidation.Service
}

func (a *App) Start() error {
	ctx := context.Background()
	if err := a.fx.Start(ctx); err != nil {
		return err
	}
	a.logger.Info("application started", zap.String("name", a.config.App.Name))
	return nil
}

func (a *App) StartTest() error {
	return a.fx.Start(context.Background())
}

func (a *App) Run() {
	if err := a.Start(); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	if a.logger != nil {
		a.logger.Info("received shutdown signal, stopping gracefully", zap.String("signal", sig.String()))
	} else {
		log.Printf("Received signal %v, shutting down gracefully...", sig)
	}

	a.Stop()
}

func (a *App) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := a.fx.Stop(ctx); err != nil {
		if a.logger != nil {
			a.logger.Error("failed to stop application gracefully", zap.Error(err))
		} else {
			log.Printf("Failed to stop application gracefully: %v", err)
		}
	}
	_ = a.logger.Sync()
}

func (a *App) StopTest() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := a.fx.Stop(ctx); err != nil {
		if a.logger != nil {
			a.logger.Error("failed to stop test application", zap.Error(err))
		} else {
			log.Printf("Failed to stop test application: %v", err)
		}
	}
}

func (a *App) Database() *gorm.DB {
	return a.db
}

func (a *App) DB() *gorm.DB {
	return a.db
}

func (a *App) Logger() *logging.Service {
	return a.logger
}

func (a *App) Config() *config.Config {
	return a.config
}

func (a *App) Mail() *mail.Service {
	return a.mail
}

// EmailValidation returns nil unless the app was built WithEmailValidation.
func (a *App) EmailValidation() *emailvalidation.Service {
	return a.validation
}
