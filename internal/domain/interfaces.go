package domain

import (
	"context"

	"mcstatbot/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramService абстракция над Telegram API для подмены в тестах.
type TelegramService interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	GetSelf() tgbotapi.User
	StopReceivingUpdates()
}

// ServerInfoProvider получает статус Minecraft-сервера по адресу.
type ServerInfoProvider interface {
	FetchServerInfo(ctx context.Context, address string) (*models.ServerInfo, error)
}

// ProfileService операции над профилем пользователя: регистрация,
// счётчик запросов и избранные сервера.
type ProfileService interface {
	Register(ctx context.Context, userID int64) error
	AddRequest(ctx context.Context, userID int64) error
	Favorites(ctx context.Context, userID int64) (map[string]string, error)
	AddFavorite(ctx context.Context, userID int64, name, address string) error
	RemoveFavorite(ctx context.Context, userID int64, name string) error
}

// ProfileRepository хранилище профилей (sqlite в боевой сборке).
type ProfileRepository interface {
	RegisterUser(ctx context.Context, userID int64) error
	IncrementRequestCount(ctx context.Context, userID int64) error
	GetUser(ctx context.Context, userID int64) (*models.User, error)
	GetFavorites(ctx context.Context, userID int64) (map[string]string, error)
	SetFavorites(ctx context.Context, userID int64, favorites map[string]string) error
	CountUsers(ctx context.Context) (int64, error)
}

// EventPublisher публикует доменные события (журнал, метрики).
type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}
