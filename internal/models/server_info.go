package models

// ServerInfo нормализованный ответ статус-API для одного сервера.
// Не сохраняется: живёт только в рамках запроса, который его породил.
type ServerInfo struct {
	Address     string   // Разрешённый адрес host:port из ответа API
	IsOnline    bool     // Флаг online из ответа API
	MOTD        []string // Описание сервера (motd.clean), построчно
	Version     string   // Версия сервера
	OnlineCount int64    // Игроков онлайн
	MaxCount    int64    // Максимум игроков
	PlayerNames []string // Список имён игроков, может быть пустым
}
