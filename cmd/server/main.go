package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/smerino/gestion/internal/audit"
	"github.com/smerino/gestion/internal/config"
	"github.com/smerino/gestion/internal/events"
	"github.com/smerino/gestion/internal/httpserver"
	"github.com/smerino/gestion/internal/logging"
	"github.com/smerino/gestion/internal/mailer"
	authmw "github.com/smerino/gestion/internal/middleware/auth"
	loggingmw "github.com/smerino/gestion/internal/middleware/logging"
	"github.com/smerino/gestion/internal/repo"
	"github.com/smerino/gestion/internal/service"
	"github.com/smerino/gestion/internal/tenantstore"
)

func main() {
	cfg := config.Load()
	config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	config.MustNonEmpty(cfg.AccessSecret, "JWT_SECRET")
	config.MustNonEmpty(cfg.RefreshSecret, "JWT_REFRESH_SECRET")

	logger := logging.New(cfg.LogLevel)

	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := config.OpenDB(initCtx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}

	stores := tenantstore.NewManager(cfg.TenantDataDir)
	defer stores.Close()

	var mail mailer.Sender
	if cfg.SMTPHost != "" {
		mail = mailer.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom, cfg.SMTPUser, cfg.SMTPPass)
	}

	var producer *events.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer = events.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer producer.Close()
	}

	var recorder *audit.Recorder
	if cfg.ESURL != "" {
		recorder, err = audit.NewRecorder([]string{cfg.ESURL}, cfg.ESUser, cfg.ESPassword, "gestion-audit")
		if err != nil {
			log.Fatalf("audit init error: %v", err)
		}
	}

	svc := &service.SessionService{
		Repo:          repo.GormRepo{DB: db},
		Stores:        stores,
		Mail:          mail,
		Events:        producer,
		Audit:         recorder,
		AccessSecret:  cfg.AccessSecret,
		RefreshSecret: cfg.RefreshSecret,
		AccessTTL:     cfg.AccessTTL,
		RefreshTTL:    cfg.RefreshTTL,
		ResetTTL:      cfg.ResetTTL,
		ResetBaseURL:  cfg.ResetBaseURL,
	}

	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second
	e.Use(loggingmw.RequestLogger(logger))

	httpserver.Register(e, &httpserver.Deps{
		Auth:      &httpserver.AuthHTTP{Svc: svc},
		Admin:     &httpserver.AdminHTTP{Svc: svc},
		Productos: &httpserver.ProductosHTTP{},
		AuthMw:    authmw.NewMiddleware(cfg.AccessSecret, stores),
	})

	go func() {
		addr := fmt.Sprintf(":%d", cfg.ServerPort)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("echo start: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("echo shutdown: %v", err)
	}
}
