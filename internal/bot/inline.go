package bot

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"mcstatbot/internal/events"
	"mcstatbot/internal/format"
	"mcstatbot/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

func (b *Bot) handleInlineQuery(ctx context.Context, query *tgbotapi.InlineQuery) {
	logger := zerolog.Ctx(ctx)
	userID := query.From.ID

	if b.metrics != nil {
		b.metrics.InlineQueries.Inc()
	}

	// Инлайн нельзя оставить без ответа: на панику отвечаем заглушкой
	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Msg("Паника при обработке инлайн-запроса")
			if b.metrics != nil {
				b.metrics.ErrorsTotal.Inc()
			}
			fallback := tgbotapi.NewInlineQueryResultArticle(uuid.NewString(),
				"Ошибка",
				"Произошла ошибка при обработке запроса. Попробуйте позже")
			fallback.Description = "Произошла ошибка при обработке запроса"
			b.answerInline(ctx, query.ID, []interface{}{fallback})
		}
	}()

	if err := b.profiles.Register(ctx, userID); err != nil {
		logger.Error().Err(err).Int64("user_id", userID).Msg("Не удалось зарегистрировать пользователя")
	}

	if err := b.eventBus.PublishJSON(events.EventInlineReceived, events.MessageEventPayload{
		UserID:    userID,
		UserLabel: userLabel(query.From),
		Text:      query.Query,
		Inline:    true,
	}); err != nil {
		logger.Warn().Err(err).Msg("Не удалось опубликовать событие инлайн-запроса")
	}

	favorites, err := b.profiles.Favorites(ctx, userID)
	if err != nil {
		logger.Warn().Err(err).Int64("user_id", userID).Msg("Не удалось получить избранные сервера")
	}

	text := strings.TrimSpace(query.Query)
	if text == "" {
		b.answerInline(ctx, query.ID, b.inlineHint(ctx, favorites))
		return
	}

	results := make([]interface{}, 0, 1+len(favorites))

	info, err := b.fetcher.FetchServerInfo(ctx, text)
	if err != nil {
		logger.Warn().Err(err).Str("address", text).Msg("Не удалось получить статус сервера")
		if b.metrics != nil {
			b.metrics.StatsQueries.WithLabelValues("error").Inc()
		}

		errResult := tgbotapi.NewInlineQueryResultArticle(uuid.NewString(),
			"❌Произошла ошибка",
			format.FetchErrorText(err))
		errResult.Description = format.FetchErrorText(err)
		results = append(results, errResult)
	} else {
		title := format.GlyphOffline + " " + text
		if info.IsOnline {
			title = format.GlyphOnline + " " + text
		}

		card := tgbotapi.NewInlineQueryResultArticleHTML(uuid.NewString(),
			title,
			format.ServerInfo(text, info))
		card.Description = "Информация о сервере"
		results = append(results, card)

		if err := b.profiles.AddRequest(ctx, userID); err != nil {
			logger.Warn().Err(err).Int64("user_id", userID).Msg("Не удалось увеличить счётчик запросов")
		}

		if err := b.eventBus.PublishJSON(events.EventStatsQueried, events.StatsEventPayload{
			UserID:  userID,
			Address: text,
		}); err != nil {
			logger.Warn().Err(err).Msg("Не удалось опубликовать событие запроса статуса")
		}

		if b.metrics != nil {
			b.metrics.StatsQueries.WithLabelValues("ok").Inc()
		}
	}

	// Следом показываем избранные, чьё имя или адрес содержит запрос
	for _, name := range sortedNames(favorites) {
		address := favorites[name]
		if !strings.Contains(name, text) && !strings.Contains(address, text) {
			continue
		}
		results = append(results, b.inlinePreview(ctx, name, address))
	}

	b.answerInline(ctx, query.ID, results)
}

// inlineHint ответ на пустой инлайн-запрос: подсказка и превью избранных.
func (b *Bot) inlineHint(ctx context.Context, favorites map[string]string) []interface{} {
	hint := tgbotapi.NewInlineQueryResultArticle(uuid.NewString(),
		"Введите IP-адрес Minecraft сервера",
		"Получить информацию о сервере можно так:\n@"+b.tg.GetSelf().UserName+" 2b2t.org")
	hint.Description = "Для получения информации о нём"

	results := []interface{}{hint}
	for _, name := range sortedNames(favorites) {
		results = append(results, b.inlinePreview(ctx, name, favorites[name]))
	}
	return results
}

// inlinePreview превью одного избранного сервера. Статус запрашивается
// прямо здесь: инлайн-панель показывает живой онлайн по каждому серверу.
func (b *Bot) inlinePreview(ctx context.Context, name, address string) tgbotapi.InlineQueryResultArticle {
	info, err := b.fetcher.FetchServerInfo(ctx, address)
	if err != nil {
		result := tgbotapi.NewInlineQueryResultArticle(uuid.NewString(),
			"🔴 "+address+" • "+name,
			"По серверу "+address+" нет данных")
		result.Description = format.FetchErrorText(err)
		return result
	}

	glyph := format.GlyphOffline
	if info.IsOnline {
		glyph = format.GlyphOnline
	}

	result := tgbotapi.NewInlineQueryResultArticleHTML(uuid.NewString(),
		glyph+" "+name+" • "+address,
		format.ServerInfo(address, info))
	result.Description = "Игроков онлайн: " + onlineLabel(info)
	return result
}

func (b *Bot) answerInline(ctx context.Context, queryID string, results []interface{}) {
	inline := tgbotapi.InlineConfig{
		InlineQueryID: queryID,
		Results:       results,
		CacheTime:     models.InlineCacheTime,
	}

	if _, err := b.tg.Request(inline); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("inline_query_id", queryID).Msg("Не удалось ответить на инлайн-запрос")
		if b.metrics != nil {
			b.metrics.ErrorsTotal.Inc()
		}
	}
}

func sortedNames(favorites map[string]string) []string {
	names := make([]string, 0, len(favorites))
	for name := range favorites {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func onlineLabel(info *models.ServerInfo) string {
	if !info.IsOnline {
		return "сервер оффлайн"
	}
	return strconv.FormatInt(info.OnlineCount, 10) + " / " + strconv.FormatInt(info.MaxCount, 10)
}
