package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fungarium/internal/api"
	"fungarium/internal/config"
	"fungarium/internal/docstore"
	"fungarium/internal/logger"
	"fungarium/internal/mongostore"
	"fungarium/internal/pg"
	"fungarium/internal/reference"
	"fungarium/internal/registry"
	"fungarium/internal/specimen"
	"fungarium/internal/sqlitestore"

	"github.com/sirupsen/logrus"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		log.Fatalf("Ошибка конфигурации: %v", err)
	}

	l, err := logger.New(cfg.Logger())
	if err != nil {
		log.Fatalf("Ошибка логгера: %v", err)
	}
	appLog := logger.Component(l, "server")

	// 1. Хранилище
	store, err := openStore(ctx, cfg, l)
	if err != nil {
		appLog.WithError(err).Fatal("store init failed")
	}
	defer store.Close()
	appLog.WithField("driver", cfg.StoreDriver).Info("store ready")

	// 2. Справочники и стартовые поля
	enums, err := reference.LoadEnumCatalog(cfg.EnumsDir)
	if err != nil {
		appLog.WithError(err).Fatal("enum catalog load failed")
	}
	seeds, err := reference.LoadFieldSeeds(cfg.FieldSeedsDir, enums)
	if err != nil {
		appLog.WithError(err).Fatal("field seeds load failed")
	}

	// 3. Реестр полей и сервис записей
	fields := registry.New(store, logger.Component(l, "registry")).WithFixed(specimen.IsFixed)
	if _, err := fields.Seed(ctx, seeds); err != nil {
		appLog.WithError(err).Fatal("field seeding failed")
	}
	if issues, err := fields.Lint(ctx); err == nil {
		for _, it := range issues {
			appLog.WithFields(logrus.Fields{"key": it.Key, "code": it.Code}).Warn(it.Message)
		}
	}
	specimens := specimen.NewService(store, fields, logger.Component(l, "specimen"))

	// 4. REST API
	srv := api.NewServer(fields, specimens, api.Seeds{FieldsDir: cfg.FieldSeedsDir, EnumsDir: cfg.EnumsDir},
		enums, logger.Component(l, "http"))
	if err := api.RunServer(ctx, ":"+cfg.Port, srv); err != nil {
		appLog.WithError(err).Fatal("http server stopped")
	}
	appLog.Info("bye")
}

func openStore(ctx context.Context, cfg config.Config, l *logrus.Logger) (docstore.Store, error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		db, err := pg.Open(ctx, cfg.DBURL, pg.Pool{
			MaxOpenConns:    cfg.DBMaxOpenConns,
			MaxIdleConns:    cfg.DBMaxIdleConns,
			ConnMaxLifetime: time.Duration(cfg.DBConnMaxLifetimeMins) * time.Minute,
		})
		if err != nil {
			return nil, err
		}
		st, err := pg.NewStore(ctx, db, cfg.Table, cfg.AutoMigrate, logger.Component(l, "pg"))
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		return st, nil
	case config.DriverSQLite:
		st, err := sqlitestore.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return st, nil
	case config.DriverMongo:
		st, err := mongostore.Open(ctx, cfg.MongoURI, cfg.MongoDatabase, logger.Component(l, "mongo"))
		if err != nil {
			return nil, err
		}
		return st, nil
	case config.DriverMemory:
		return docstore.NewMemory(), nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}
