// Package command разбирает текст входящего сообщения в структурированную
// команду до каких-либо побочных эффектов. Исполнение — забота диспетчера.
package command

import (
	"errors"
	"strings"
)

var (
	// ErrUsage неверное использование команды
	ErrUsage = errors.New("invalid command usage")
	// ErrMissingAddress не указан адрес сервера для /stats и /info
	ErrMissingAddress = errors.New("server address is missing")
)

type Kind int

const (
	// KindQuery свободный текст: имя избранного либо адрес сервера
	KindQuery Kind = iota
	KindStart
	KindHelp
	KindFavList
	KindFavAdd
	KindFavDel
	KindStats
)

// Command размеченный вариант разобранной команды.
// Заполненность полей зависит от Kind.
type Command struct {
	Kind    Kind
	Address string // KindFavAdd, KindStats
	Name    string // KindFavAdd, KindFavDel
	Text    string // KindQuery: исходный текст без краевых пробелов
}

// Parse разбирает текст сообщения. Побочных эффектов нет.
func Parse(text string) (Command, error) {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "/") {
		return Command{Kind: KindQuery, Text: trimmed}, nil
	}

	fields := strings.Fields(trimmed)
	// В группах команда приходит как /stats@MyBot
	name := fields[0]
	if at := strings.Index(name, "@"); at != -1 {
		name = name[:at]
	}

	switch name {
	case "/start":
		return Command{Kind: KindStart}, nil

	case "/help":
		return Command{Kind: KindHelp}, nil

	case "/fav":
		return parseFav(fields)

	case "/stats", "/info":
		if len(fields) < 2 {
			return Command{}, ErrMissingAddress
		}
		return Command{Kind: KindStats, Address: fields[1]}, nil

	default:
		return Command{}, ErrUsage
	}
}

func parseFav(fields []string) (Command, error) {
	switch len(fields) {
	case 1:
		return Command{Kind: KindFavList}, nil

	case 3:
		switch fields[1] {
		case "add", "a", "+":
			// Имя в избранных совпадает с адресом
			return Command{Kind: KindFavAdd, Address: fields[2], Name: fields[2]}, nil
		case "del", "remove", "-":
			return Command{Kind: KindFavDel, Name: fields[2]}, nil
		}
		return Command{}, ErrUsage

	case 4:
		switch fields[1] {
		case "add", "a", "+":
			return Command{Kind: KindFavAdd, Address: fields[2], Name: fields[3]}, nil
		}
		return Command{}, ErrUsage
	}

	return Command{}, ErrUsage
}
