package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"medicare-pms/internal/config"
	"medicare-pms/internal/seed"
	"medicare-pms/internal/store"
	"medicare-pms/pkg/utils"

	firebase "firebase.google.com/go"
	"github.com/rs/zerolog"
)

// app is everything both subcommands share.
type app struct {
	cfg      *config.Config
	logger   zerolog.Logger
	loc      *time.Location
	store    store.Store
	notifier utils.Notifier
	closers  []io.Closer
}

func newLogger(cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var out io.Writer = os.Stderr
	if cfg.IsDev() {
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	}
	return zerolog.New(out).Level(level).With().Timestamp().Str("service", "medicare-pms").Logger()
}

func bootstrap(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, logger: newLogger(cfg), notifier: utils.NopNotifier{}}
	if a.loc, err = cfg.Location(); err != nil {
		return nil, err
	}

	var fb *firebase.App
	if cfg.UsesFirebase() {
		if fb, err = config.NewFirebaseApp(ctx, cfg); err != nil {
			return nil, err
		}
	}

	// 2. Pilih penyimpanan data pasien
	switch cfg.StoreDriver {
	case config.DriverMySQL:
		db, err := config.ConnectDB(cfg, a.logger)
		if err != nil {
			return nil, err
		}
		gs := store.NewGormStore(db, a.logger)
		if err := gs.Migrate(ctx); err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
		if sqlDB, err := db.DB(); err == nil {
			a.closers = append(a.closers, sqlDB)
		}
		a.store = gs

	case config.DriverFirestore:
		client, err := fb.Firestore(ctx)
		if err != nil {
			return nil, fmt.Errorf("firestore client: %w", err)
		}
		a.closers = append(a.closers, client)
		a.store = store.NewFirestoreStore(client, cfg.FirestoreCollection, a.logger)

	default:
		a.store = store.NewMemoryStore(a.logger)
	}

	// 3. Notifikasi FCM ke apotek (opsional)
	if cfg.FCMTopic != "" {
		msg, err := fb.Messaging(ctx)
		if err != nil {
			return nil, fmt.Errorf("fcm client: %w", err)
		}
		a.notifier = utils.NewFCMNotifier(msg, cfg.FCMTopic, a.logger)
		a.logger.Info().Str("topic", cfg.FCMTopic).Msg("Firebase Cloud Messaging Ready!")
	}

	if cfg.SeedDemoData {
		if err := seed.Load(ctx, a.store, time.Now(), a.logger); err != nil {
			return nil, err
		}
	}

	a.logger.Info().Str("store", cfg.StoreDriver).Str("env", cfg.Env).Msg("bootstrap complete")
	return a, nil
}

func (a *app) Close() {
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			a.logger.Warn().Err(err).Msg("close")
		}
	}
}
