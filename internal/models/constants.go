package models

const (
	ParseModeHTML = "HTML"
)

const (
	// MaxFavServers максимальное количество избранных серверов у пользователя
	MaxFavServers = 10

	// FetchTimeoutSeconds таймаут запроса к статус-API
	FetchTimeoutSeconds = 15

	// InlineCacheTime cache_time для ответов на inline-запросы
	InlineCacheTime = 1

	// UpdateTimeoutSeconds таймаут обработки одного обновления
	UpdateTimeoutSeconds = 30
)
