package bot

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"mcstatbot/internal/command"
	"mcstatbot/internal/events"
	"mcstatbot/internal/format"
	"mcstatbot/internal/models"
	"mcstatbot/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	logger := zerolog.Ctx(ctx)
	userID := message.From.ID

	if b.metrics != nil {
		b.metrics.MessagesProcessed.Inc()
	}

	// Регистрируем до разбора: профиль нужен любой ветке диспетчера
	if err := b.profiles.Register(ctx, userID); err != nil {
		logger.Error().Err(err).Int64("user_id", userID).Msg("Не удалось зарегистрировать пользователя")
	}

	if err := b.eventBus.PublishJSON(events.EventMessageReceived, events.MessageEventPayload{
		UserID:    userID,
		UserLabel: userLabel(message.From),
		Text:      message.Text,
	}); err != nil {
		logger.Warn().Err(err).Msg("Не удалось опубликовать событие сообщения")
	}

	cmd, err := command.Parse(message.Text)
	switch {
	case errors.Is(err, command.ErrMissingAddress):
		b.replyHTML(ctx, message, missingAddressText, nil)
		return
	case err != nil:
		b.reply(ctx, message, invalidCommandText, nil)
		return
	}

	switch cmd.Kind {
	case command.KindStart:
		b.replyText(ctx, message.Chat.ID, welcomeText(message.From.FirstName), b.favoritesKeyboard(ctx, userID))

	case command.KindHelp:
		b.replyHTML(ctx, message, helpText, b.favoritesKeyboard(ctx, userID))

	case command.KindFavList:
		favorites, err := b.profiles.Favorites(ctx, userID)
		if err != nil {
			logger.Error().Err(err).Int64("user_id", userID).Msg("Не удалось получить избранные сервера")
			b.reply(ctx, message, "Не удалось получить избранные сервера", nil)
			return
		}
		b.replyHTML(ctx, message, "Ваши избранные сервера:\n"+format.Favorites(favorites), b.favoritesKeyboard(ctx, userID))

	case command.KindFavAdd:
		b.handleFavAdd(ctx, message, cmd)

	case command.KindFavDel:
		b.handleFavDel(ctx, message, cmd)

	case command.KindStats:
		b.replyServerInfo(ctx, message, cmd.Address)

	case command.KindQuery:
		b.handleQuery(ctx, message, cmd.Text)
	}
}

func (b *Bot) handleFavAdd(ctx context.Context, message *tgbotapi.Message, cmd command.Command) {
	logger := zerolog.Ctx(ctx)
	userID := message.From.ID

	err := b.profiles.AddFavorite(ctx, userID, cmd.Name, cmd.Address)
	switch {
	case errors.Is(err, service.ErrFavoritesLimit):
		b.reply(ctx, message, fmt.Sprintf("Не удалось добавить сервер в избранные\n"+
			"Максимальное количество избранных серверов: %d", b.config.Bot.MaxFavServers), nil)
		return
	case err != nil:
		logger.Error().Err(err).Int64("user_id", userID).Msg("Не удалось добавить избранный сервер")
		b.reply(ctx, message, "Не удалось добавить сервер в избранные", nil)
		return
	}

	b.reply(ctx, message, "Добавили сервер", b.favoritesKeyboard(ctx, userID))
}

func (b *Bot) handleFavDel(ctx context.Context, message *tgbotapi.Message, cmd command.Command) {
	logger := zerolog.Ctx(ctx)
	userID := message.From.ID

	err := b.profiles.RemoveFavorite(ctx, userID, cmd.Name)
	switch {
	case errors.Is(err, service.ErrFavoriteNotFound):
		b.reply(ctx, message, "Сервер не найден", nil)
		return
	case err != nil:
		logger.Error().Err(err).Int64("user_id", userID).Msg("Не удалось удалить избранный сервер")
		b.reply(ctx, message, "Не удалось удалить сервер из избранных", nil)
		return
	}

	b.reply(ctx, message, "Удалил сервер", b.favoritesKeyboard(ctx, userID))
}

// handleQuery обрабатывает свободный текст: сначала ищем точное совпадение
// с именем избранного, иначе первое слово считается адресом сервера.
func (b *Bot) handleQuery(ctx context.Context, message *tgbotapi.Message, text string) {
	if text == "" {
		return
	}

	logger := zerolog.Ctx(ctx)
	userID := message.From.ID

	favorites, err := b.profiles.Favorites(ctx, userID)
	if err != nil {
		logger.Warn().Err(err).Int64("user_id", userID).Msg("Не удалось получить избранные сервера")
	}

	if address, ok := favorites[text]; ok {
		b.replyServerInfo(ctx, message, address)
		return
	}

	b.replyServerInfo(ctx, message, firstField(text))
}

// replyServerInfo запрашивает статус сервера и отвечает карточкой либо
// ошибкой. Счётчик запросов увеличивается только при успешном запросе.
func (b *Bot) replyServerInfo(ctx context.Context, message *tgbotapi.Message, address string) {
	logger := zerolog.Ctx(ctx)
	userID := message.From.ID

	start := time.Now()
	info, err := b.fetcher.FetchServerInfo(ctx, address)
	if b.metrics != nil {
		b.metrics.FetchDuration.Observe(time.Since(start).Seconds())
	}

	if err != nil {
		logger.Warn().Err(err).Str("address", address).Msg("Не удалось получить статус сервера")
		if b.metrics != nil {
			b.metrics.StatsQueries.WithLabelValues("error").Inc()
		}
		b.replyHTML(ctx, message, format.FetchError(err), nil)
		return
	}

	b.replyHTML(ctx, message, format.ServerInfo(address, info), b.favoritesKeyboard(ctx, userID))

	if err := b.profiles.AddRequest(ctx, userID); err != nil {
		logger.Warn().Err(err).Int64("user_id", userID).Msg("Не удалось увеличить счётчик запросов")
	}

	if err := b.eventBus.PublishJSON(events.EventStatsQueried, events.StatsEventPayload{
		UserID:  userID,
		Address: address,
	}); err != nil {
		logger.Warn().Err(err).Msg("Не удалось опубликовать событие запроса статуса")
	}

	if b.metrics != nil {
		b.metrics.StatsQueries.WithLabelValues("ok").Inc()
	}
}

// favoritesKeyboard строит reply-клавиатуру из имён избранных серверов.
// Возвращает nil, если избранных нет, тогда клавиатура не отправляется.
func (b *Bot) favoritesKeyboard(ctx context.Context, userID int64) *tgbotapi.ReplyKeyboardMarkup {
	favorites, err := b.profiles.Favorites(ctx, userID)
	if err != nil || len(favorites) == 0 {
		return nil
	}

	names := make([]string, 0, len(favorites))
	for name := range favorites {
		names = append(names, name)
	}
	sort.Strings(names)

	rows := make([][]tgbotapi.KeyboardButton, 0, len(names))
	for _, name := range names {
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(name)))
	}

	keyboard := tgbotapi.NewReplyKeyboard(rows...)
	keyboard.ResizeKeyboard = true
	return &keyboard
}

func (b *Bot) reply(ctx context.Context, message *tgbotapi.Message, text string, keyboard *tgbotapi.ReplyKeyboardMarkup) {
	msg := tgbotapi.NewMessage(message.Chat.ID, text)
	msg.ReplyToMessageID = message.MessageID
	if keyboard != nil {
		msg.ReplyMarkup = *keyboard
	}
	b.send(ctx, msg)
}

func (b *Bot) replyHTML(ctx context.Context, message *tgbotapi.Message, text string, keyboard *tgbotapi.ReplyKeyboardMarkup) {
	msg := tgbotapi.NewMessage(message.Chat.ID, text)
	msg.ReplyToMessageID = message.MessageID
	msg.ParseMode = models.ParseModeHTML
	if keyboard != nil {
		msg.ReplyMarkup = *keyboard
	}
	b.send(ctx, msg)
}

func (b *Bot) replyText(ctx context.Context, chatID int64, text string, keyboard *tgbotapi.ReplyKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	if keyboard != nil {
		msg.ReplyMarkup = *keyboard
	}
	b.send(ctx, msg)
}

func (b *Bot) send(ctx context.Context, msg tgbotapi.MessageConfig) {
	if _, err := b.tg.Send(msg); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Int64("chat_id", msg.ChatID).Msg("Не удалось отправить сообщение")
		if b.metrics != nil {
			b.metrics.ErrorsTotal.Inc()
		}
	}
}

func firstField(text string) string {
	for i, r := range text {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			return text[:i]
		}
	}
	return text
}
