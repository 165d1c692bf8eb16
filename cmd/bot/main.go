package main

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"mcstatbot/internal/api"
	"mcstatbot/internal/bot"
	"mcstatbot/internal/config"
	"mcstatbot/internal/database"
	"mcstatbot/internal/events"
	"mcstatbot/internal/journal"
	"mcstatbot/internal/logging"
	"mcstatbot/internal/mcstatus"
	"mcstatbot/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, loadErr := loadConfigAndLogger()
	if loadErr != nil {
		return loadErr
	}
	if closer != nil {
		defer (func(c io.Closer) { _ = c.Close() })(closer)
	}

	if err := prepareDirectories(cfg, &logger); err != nil {
		return err
	}

	db, err := database.NewDB(cfg.Database.Path, &logger)
	if err != nil {
		logger.Error().Err(err).Msg("Ошибка инициализации базы данных")
		return err
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	eventBus := events.NewEventBus()
	if cfg.Journal.Enabled {
		msgJournal, err := journal.Open(cfg.Journal.Path)
		if err != nil {
			logger.Error().Err(err).Str("path", cfg.Journal.Path).Msg("Ошибка открытия журнала сообщений")
			return err
		}
		defer msgJournal.Close()
		subscribeJournal(eventBus, msgJournal, &logger)
	}

	if cfg.Backup.Enabled {
		backupService := database.NewBackupService(cfg.Database.Path, cfg.Backup, &logger)
		go backupService.Start(ctx)
	}

	if cfg.Monitoring.PrometheusEnabled {
		monitoring := api.NewMonitoringServer(cfg.Monitoring, db, &logger)
		go func() {
			if err := monitoring.Start(); err != nil {
				logger.Error().Err(err).Msg("Monitoring server error")
			}
		}()
		defer func() {
			_ = monitoring.Shutdown(context.Background())
		}()
	}

	fetcher := mcstatus.NewClient(cfg.StatusAPI, &logger)
	profiles := service.NewProfileService(db, cfg.Bot.MaxFavServers, &logger)
	metrics := bot.NewMetrics()

	return startBot(ctx, cfg, profiles, fetcher, eventBus, metrics, &logger)
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, err
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, err
	}
	logger := baseLogger.With().Str("component", "bot-main").Logger()

	return cfg, logger, closer, nil
}

func prepareDirectories(cfg *config.Config, logger *zerolog.Logger) error {
	if cfg == nil {
		return os.ErrInvalid
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		logger.Error().Err(err).Msg("Ошибка создания директории для базы данных")
		return err
	}
	if cfg.Backup.Enabled {
		if err := os.MkdirAll(cfg.Backup.StoragePath, 0o755); err != nil {
			logger.Error().Err(err).Msg("Ошибка создания директории для резервных копий")
			return err
		}
	}
	return nil
}

// subscribeJournal переносит события о входящих сообщениях в текстовый
// журнал: строка на сообщение, инлайн-запросы помечаются отдельно.
func subscribeJournal(bus *events.EventBus, msgJournal *journal.Journal, logger *zerolog.Logger) {
	handler := func(ev *events.Event) error {
		var payload events.MessageEventPayload
		if err := json.Unmarshal(ev.Payload, &payload); err != nil {
			logger.Error().Err(err).Str("event", ev.Type).Msg("event bus: decode payload")
			return nil
		}

		line := payload.UserLabel + ": " + payload.Text
		if payload.Inline {
			line = payload.UserLabel + " (inline): " + payload.Text
		}

		if err := msgJournal.Append(line); err != nil {
			logger.Error().Err(err).Msg("event bus: append journal")
		}
		return nil
	}

	bus.Subscribe(events.EventMessageReceived, handler)
	bus.Subscribe(events.EventInlineReceived, handler)
}

func startBot(
	ctx context.Context,
	cfg *config.Config,
	profiles *service.ProfileService,
	fetcher *mcstatus.Client,
	eventBus *events.EventBus,
	metrics *bot.Metrics,
	logger *zerolog.Logger,
) error {
	botAPI, err := tgbotapi.NewBotAPI(cfg.Telegram.BotToken)
	if err != nil {
		logger.Error().Err(err).Msg("Ошибка создания BotAPI")
		return err
	}
	botAPI.Debug = cfg.Telegram.Debug

	telegramBot, err := bot.NewBot(bot.NewBotWrapper(botAPI), cfg, profiles, fetcher, eventBus, metrics, logger)
	if err != nil {
		logger.Error().Err(err).Msg("Ошибка создания бота")
		return err
	}

	logger.Info().Msg("Бот запущен...")
	telegramBot.Start(ctx)

	logger.Info().Msg("Shutdown complete.")
	return nil
}
