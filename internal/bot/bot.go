package bot

import (
	"context"
	"os"
	"time"

	"mcstatbot/internal/config"
	"mcstatbot/internal/domain"
	"mcstatbot/internal/events"
	"mcstatbot/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type Bot struct {
	tg       domain.TelegramService
	config   *config.Config
	profiles domain.ProfileService
	fetcher  domain.ServerInfoProvider
	eventBus domain.EventPublisher
	metrics  *Metrics
	logger   *zerolog.Logger
}

func NewBot(
	tg domain.TelegramService,
	config *config.Config,
	profiles domain.ProfileService,
	fetcher domain.ServerInfoProvider,
	eventBus domain.EventPublisher,
	metrics *Metrics,
	logger *zerolog.Logger,
) (*Bot, error) {
	if eventBus == nil {
		eventBus = events.NewEventBus()
	}

	if logger == nil {
		l := zerolog.New(os.Stdout).With().Timestamp().Logger()
		logger = &l
	}

	return &Bot{
		tg:       tg,
		config:   config,
		profiles: profiles,
		fetcher:  fetcher,
		eventBus: eventBus,
		metrics:  metrics,
		logger:   logger,
	}, nil
}

func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.tg.GetUpdatesChan(u)

	b.logger.Info().Str("username", b.tg.GetSelf().UserName).Msg("Authorized on account")

	for {
		select {
		case <-ctx.Done():
			b.logger.Info().Msg("Bot stopping...")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.processUpdate(ctx, update)
		}
	}
}

func (b *Bot) processUpdate(ctx context.Context, update tgbotapi.Update) {
	start := time.Now()
	defer func() {
		if b.metrics != nil {
			b.metrics.UpdateProcessingTime.Observe(time.Since(start).Seconds())
		}
	}()

	// Создаем контекст для обработки каждого обновления
	updateCtx, cancel := context.WithTimeout(ctx, models.UpdateTimeoutSeconds*time.Second)
	defer cancel()

	requestID := uuid.New().String()
	l := b.logger.With().Str("request_id", requestID).Logger()
	updateCtx = l.WithContext(updateCtx)

	b.withRecovery(func() {
		switch {
		case update.InlineQuery != nil:
			b.handleInlineQuery(updateCtx, update.InlineQuery)

		case update.Message != nil && update.Message.From != nil:
			b.handleMessage(updateCtx, update.Message)
		}
	})
}

func (b *Bot) withRecovery(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error().Interface("panic", r).Msg("Recovered from panic in update handler")
			if b.metrics != nil {
				b.metrics.ErrorsTotal.Inc()
			}
		}
	}()
	fn()
}
