package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/harilal/tradetoggle/internal/adapters/notify"
	"github.com/harilal/tradetoggle/internal/adapters/session"
	"github.com/harilal/tradetoggle/internal/adapters/tradetron"
	"github.com/harilal/tradetoggle/internal/config"
	"github.com/harilal/tradetoggle/internal/ports"
)

type app struct {
	cfg        config.Config
	notifier   ports.Notifier
	httpClient *http.Client
	clock      ports.Clock
}

func wireApp() (*app, error) {
	setupLogging()

	cfg, err := config.Load(viper.New())
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	notifier := ports.Notifier(notify.Discard{})
	if cfg.TelegramToken != "" && cfg.TelegramChatID != 0 {
		telegram, err := notify.NewTelegram(cfg.TelegramToken, cfg.TelegramChatID)
		if err != nil {
			return nil, fmt.Errorf("wire telegram notifier: %w", err)
		}
		notifier = telegram
	} else {
		log.Warn().Msg("telegram credentials not configured, reports go to logs only")
	}

	return &app{
		cfg:        cfg,
		notifier:   notifier,
		httpClient: &http.Client{},
		clock:      ports.SystemClock{},
	}, nil
}

func setupLogging() {
	level := zerolog.InfoLevel
	if parsed, err := zerolog.ParseLevel(strings.ToLower(os.Getenv("LOG_LEVEL"))); err == nil && parsed != zerolog.NoLevel {
		level = parsed
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).Level(level)
}

// strategyClient creates a validated session for the wallet and binds
// the API client to it. Any error here is a fatal precondition failure.
func (a *app) strategyClient(ctx context.Context, wallet config.Wallet) (*tradetron.Client, error) {
	blob, err := a.cfg.CookieBlob(wallet)
	if err != nil {
		return nil, err
	}

	client, err := a.clientFromBlob(ctx, blob)
	if err != nil {
		return nil, fmt.Errorf("create session for wallet %s: %w", wallet.Name, err)
	}
	return client, nil
}

func (a *app) clientFromBlob(ctx context.Context, blob string) (*tradetron.Client, error) {
	store := session.Store{BaseURL: a.cfg.BaseURL, HTTPClient: a.httpClient}
	sess, err := store.Create(ctx, blob)
	if err != nil {
		return nil, err
	}

	return &tradetron.Client{
		Session:     sess,
		Clock:       a.clock,
		MaxAttempts: a.cfg.Retries,
		BackoffBase: a.cfg.Backoff,
	}, nil
}

// notify delivers a report and only logs on failure: a broken notifier
// must never turn a finished run into a crash.
func (a *app) notify(ctx context.Context, text string) {
	if err := a.notifier.Send(ctx, text); err != nil {
		log.Warn().Err(err).Msg("notification delivery failed")
	}
}
