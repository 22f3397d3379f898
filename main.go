package main

import (
	"context"
	"os"
	"primor/account"
	"primor/client/es"
	"primor/client/s3"
	"primor/common"
	"primor/config"
	"primor/infra/tracing"
	"primor/notify"
	"primor/persistence"
	"primor/persistence/migration"
	"primor/seeding"
	"primor/servehttp"
	"primor/webhook"

	"github.com/sirupsen/logrus"
)

func main() {
	cfg := config.LoadConfig()
	common.ConfigureLogger(cfg.LogFormat, cfg.LogLevel)
	logrus.Info("service start")

	closer := tracing.InitTracer(common.ServiceName, cfg.JaegerEnabled)
	defer closer.Close()

	dbConfig, err := persistence.ParseDatabaseConfig(cfg.DatabaseURL)
	if err != nil {
		logrus.Fatalf("parse database config failed %v", err)
	}

	// create database (no conflict)
	if dbConfig.DriverType == persistence.DriverMysql {
		if err := persistence.PrepareMysqlDatabase(dbConfig.DriverArgs); err != nil {
			logrus.Fatalf("failed to prepare database %v", err)
		}
	}

	ds := &persistence.DataSourceManager{DatabaseConfig: dbConfig}
	if err := ds.Start(); err != nil {
		logrus.Fatalf("database connection failed %v", err)
	}
	defer ds.Stop()
	persistence.ActiveDataSourceManager = ds

	if err := migration.Migrate(ds.GormDB(context.Background())); err != nil {
		logrus.Fatalf("database migration failed %v", err)
	}

	if len(os.Args) > 1 {
		runCommand(os.Args[1], cfg)
		return
	}

	if err := account.BootstrapAdmin(context.Background(), cfg.AdminEmail, cfg.AdminName, cfg.AdminPassword); err != nil {
		logrus.Fatalf("failed to bootstrap admin account %v", err)
	}

	if cfg.ElasticsearchURL != "" {
		if _, err := es.CreateClient(cfg.ElasticsearchURL); err != nil {
			logrus.Fatalf("failed to create elasticsearch client %v", err)
		}
	}
	if err := s3.Bootstrap(cfg.OSS); err != nil {
		logrus.Fatalf("failed to create object storage bucket %v", err)
	}
	servehttp.RegisterActivityHandlers(es.Enabled())

	transport := notify.NewTransport(cfg)
	receiver := &webhook.Receiver{VerifyToken: cfg.WhatsApp.VerifyToken, AppSecret: cfg.WhatsApp.AppSecret}
	if marker, ok := transport.(notify.ReadMarker); ok {
		receiver.Marker = marker
	}
	logrus.WithFields(logrus.Fields{
		"transport": transport.Name(),
		"search":    es.Enabled(),
		"storage":   s3.Enabled(),
	}).Info("integrations configured")

	engine := servehttp.NewEngine(servehttp.Options{
		Notifier:         notify.NewDispatcher(transport, cfg.BaseURL, cfg.Notify.CountryCode),
		Receiver:         receiver,
		ConfirmRateLimit: cfg.ConfirmRateLimit,
		ConfirmRateBurst: cfg.ConfirmRateBurst,
	})
	servehttp.StartHTTPServer(engine, cfg.Port)
	logrus.Info("service exiting")
}

func runCommand(command string, cfg *config.Config) {
	switch command {
	case "seed":
		report, err := seeding.Seed(context.Background(), cfg.BaseURL)
		if err != nil {
			logrus.Fatalf("seed failed %v", err)
		}
		logrus.WithFields(logrus.Fields{"workers": report.Workers, "events": report.Events, "assignments": report.Assignments}).
			Info("seed finished")
		for _, link := range report.Links {
			logrus.Info("confirmation link: ", link)
		}
	case "reset":
		report, err := seeding.Reset(context.Background())
		if err != nil {
			logrus.Fatalf("reset failed %v", err)
		}
		logrus.WithFields(logrus.Fields{"workers": report.Workers, "events": report.Events}).Info("reset finished")
	default:
		logrus.Fatalf("unknown command %q, expected seed or reset", command)
	}
}
