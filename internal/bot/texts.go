package bot

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const helpText = `<b>Get Minecraft Servers Information Bot</b>

Я бот, который позволяет получать информацию о серверах Minecraft
Просто напиши мне адрес (IP) сервера и я напишу тебе информацию о нём (онлайн, описание, и проч.)

Доступные команды:
• /stats ADDRESS - получение информации о сервере с адресом ADDRESS
• /help - получение справки
• /fav - изменение и просмотр избранных серверов:
    • /fav - просмотр ваших избранных серверов
    • /fav add 2b2t.org - добавить сервер с адресом 2b2t.org в избранные сервера (имя в избранных совпадает с адресом)
    • /fav add 2b2t.org bestServer - добавить сервер с адресом 2b2t.org в избранные под именем bestServer
    • /fav del 2b2t.org - удаляет сервер с именем 2b2t.org из избранного`

const invalidCommandText = "Неверное использование команды\nДля получения справки: /help"

const missingAddressText = "<b>Ошибка:</b> Не указан IP-адрес сервера!\nПример использования: <code>/stats 2b2t.org</code>"

func welcomeText(firstName string) string {
	return fmt.Sprintf("Добро пожаловать, %s!\n\n"+
		"Я бот, который позволяет получать различную информацию о Minecraft серверах\n"+
		"Для получения справки: /help", firstName)
}

// userLabel собирает подпись пользователя для журнала:
// "Имя Фамилия (@username, id)", необязательные части опускаются.
func userLabel(from *tgbotapi.User) string {
	if from == nil {
		return "unknown"
	}

	name := from.FirstName
	if from.LastName != "" {
		name += " " + from.LastName
	}

	if from.UserName != "" {
		return fmt.Sprintf("%s (@%s, %d)", name, from.UserName, from.ID)
	}
	return fmt.Sprintf("%s (%d)", name, from.ID)
}
