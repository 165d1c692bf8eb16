package models

import (
	"time"
)

// User профиль пользователя бота, одна строка на Telegram ID.
// Создаётся при первом обращении и никогда не удаляется.
type User struct {
	ID            int64             // Telegram ID, первичный ключ
	FirstUse      time.Time         // Время первой регистрации, не обновляется
	RequestsCount int64             // Счётчик успешных запросов статистики
	FavServers    map[string]string // Избранные сервера: имя -> адрес
}
