package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/MediSynth-io/contactbook/internal/api"
	"github.com/MediSynth-io/contactbook/internal/auth"
	"github.com/MediSynth-io/contactbook/internal/config"
	"github.com/MediSynth-io/contactbook/internal/contacts"
	"github.com/MediSynth-io/contactbook/internal/logging"
	"github.com/MediSynth-io/contactbook/internal/mail"
	"github.com/MediSynth-io/contactbook/internal/storage"
	"github.com/MediSynth-io/contactbook/internal/store/backend"
)

const version = "0.1.0"

type app struct {
	api     *api.Api
	backend *backend.Backend
	log     *zap.Logger
}

func initializeAPI(ctx context.Context, configPath string) (*app, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		return nil, err
	}

	db, err := backend.Open(ctx, cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	photos, err := storage.New(ctx, cfg.Storage, logger)
	if err != nil {
		db.Close(ctx)
		return nil, fmt.Errorf("init photo storage: %w", err)
	}

	authSvc := auth.NewService(auth.NewConfig(cfg), db.Users, db.Sessions, mail.NewSMTPSender(cfg.SMTP, logger), logger)
	contactSvc := contacts.NewService(db.Contacts, photos, logger)

	a, err := api.NewApi(*cfg, api.Deps{Auth: authSvc, Contacts: contactSvc, Logger: logger})
	if err != nil {
		db.Close(ctx)
		return nil, err
	}
	return &app{api: a, backend: db, log: logger}, nil
}

func main() {
	configPath := flag.String("config", "", "Path to configuration file (environment only when empty)")
	flag.Parse()

	log.Printf("Starting contactbook API v%s", version)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := initializeAPI(ctx, *configPath)
	if err != nil {
		log.Fatal(err)
	}
	defer a.log.Sync()

	if err := a.api.Serve(ctx); err != nil {
		a.log.Error("server stopped", zap.Error(err))
	}

	closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.backend.Close(closeCtx); err != nil {
		a.log.Error("error closing database", zap.Error(err))
	}
}
