// Package format отвечает за текст ответов в HTML-разметке Telegram.
// Все пользовательские подстроки (адреса, имена) экранируются.
package format

import (
	"errors"
	"fmt"
	"html"
	"sort"
	"strings"

	"mcstatbot/internal/mcstatus"
	"mcstatbot/internal/models"
)

const (
	GlyphOnline  = "🟢"
	GlyphOffline = "⚫"
)

// Bold оборачивает текст в <b> с экранированием.
func Bold(s string) string {
	return "<b>" + html.EscapeString(s) + "</b>"
}

// Code оборачивает текст в <code> с экранированием.
func Code(s string) string {
	return "<code>" + html.EscapeString(s) + "</code>"
}

// Pre оборачивает текст в преформатированный блок с пометкой языка.
func Pre(s, language string) string {
	return fmt.Sprintf(`<pre><code class="language-%s">%s</code></pre>`, language, html.EscapeString(s))
}

// ServerInfo рендерит карточку сервера: фиксированный порядок строк,
// глиф онлайна, список игроков только когда он непуст.
func ServerInfo(address string, info *models.ServerInfo) string {
	glyph := GlyphOffline
	if info.IsOnline {
		glyph = GlyphOnline
	}

	var playerList string
	if len(info.PlayerNames) > 0 {
		quoted := make([]string, 0, len(info.PlayerNames))
		for _, name := range info.PlayerNames {
			quoted = append(quoted, Code(name))
		}
		playerList = "\n• Список игроков: " + strings.Join(quoted, ", ")
	}

	return fmt.Sprintf(`%s %s %s

• Запрос: %s
• Цифровой IP: %s
• Описание:
%s
• Версия: %s
• Онлайн игроков: %d / %d%s`,
		glyph, Bold("Сервер"), Code(address),
		Code(address),
		Code(info.Address),
		Pre(strings.Join(info.MOTD, "\n"), "motd"),
		Code(info.Version),
		info.OnlineCount, info.MaxCount, playerList,
	)
}

// FetchErrorText человекочитаемое описание ошибки получения статуса.
func FetchErrorText(err error) string {
	address := ""
	var fetchErr *mcstatus.FetchError
	if errors.As(err, &fetchErr) {
		address = fetchErr.Address
	}

	switch {
	case errors.Is(err, mcstatus.ErrTimeout):
		return fmt.Sprintf("Превышено время ожидания ответа от сервера %q", address)
	case errors.Is(err, mcstatus.ErrUnreachable):
		return fmt.Sprintf("Произошла ошибка. Нет ответа от сервера %q", address)
	case errors.Is(err, mcstatus.ErrParse):
		return "Некорректный ответ API"
	default:
		return "Ошибка подключения!"
	}
}

// FetchError рендерит ошибку получения статуса для ответа пользователю.
func FetchError(err error) string {
	return Bold("Ошибка:") + " " + html.EscapeString(FetchErrorText(err))
}

// Favorites рендерит список избранных: `имя - адрес` построчно,
// либо заглушку для пустого списка. Порядок — по имени, для стабильности.
func Favorites(favorites map[string]string) string {
	if len(favorites) == 0 {
		return "отсутствуют"
	}

	names := make([]string, 0, len(favorites))
	for name := range favorites {
		names = append(names, name)
	}
	sort.Strings(names)

	var out strings.Builder
	for _, name := range names {
		out.WriteString(Code(name))
		out.WriteString(" - ")
		out.WriteString(Code(favorites[name]))
		out.WriteString("\n")
	}
	return out.String()
}
