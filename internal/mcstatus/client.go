package mcstatus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"mcstatbot/internal/config"
	"mcstatbot/internal/models"

	"github.com/rs/zerolog"
)

// Client обращается к статус-API (api.mcsrvstat.us) за информацией о сервере.
// Ответы не кэшируются: каждый вызов — свежий запрос.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *zerolog.Logger
}

func NewClient(cfg config.StatusAPIConfig, logger *zerolog.Logger) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = models.FetchTimeoutSeconds * time.Second
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    cfg.BaseURL,
		logger:     logger,
	}
}

// statusResponse сырой ответ статус-API, версия 3.
type statusResponse struct {
	Online bool `json:"online"`
	Debug  struct {
		Ping bool `json:"ping"`
	} `json:"debug"`
	Motd struct {
		Clean []string `json:"clean"`
	} `json:"motd"`
	Version string `json:"version"`
	Players struct {
		Online int64 `json:"online"`
		Max    int64 `json:"max"`
		List   []struct {
			Name string `json:"name"`
		} `json:"list"`
	} `json:"players"`
	IP   string      `json:"ip"`
	Port json.Number `json:"port"`
}

// FetchServerInfo запрашивает и нормализует статус сервера по адресу.
// Возвращает *FetchError с одним из сентинелов пакета при любом сбое;
// при ping=false — ErrUnreachable, частично заполненный результат не отдаётся.
func (c *Client) FetchServerInfo(ctx context.Context, address string) (*models.ServerInfo, error) {
	reqURL := fmt.Sprintf("%s/3/%s", c.baseURL, url.PathEscape(address))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, newFetchError(address, ErrConnection, err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			c.logger.Warn().Str("address", address).Dur("elapsed", time.Since(start)).Msg("Таймаут запроса к статус-API")
			return nil, newFetchError(address, ErrTimeout, err)
		}
		c.logger.Warn().Err(err).Str("address", address).Msg("Ошибка запроса к статус-API")
		return nil, newFetchError(address, ErrConnection, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newFetchError(address, ErrConnection, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var data statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		c.logger.Error().Err(err).Str("address", address).Msg("Некорректный JSON от статус-API")
		return nil, newFetchError(address, ErrParse, err)
	}

	if !data.Debug.Ping {
		return nil, newFetchError(address, ErrUnreachable, nil)
	}

	return normalize(&data), nil
}

func normalize(data *statusResponse) *models.ServerInfo {
	motd := data.Motd.Clean
	if len(motd) == 0 {
		motd = []string{"Нет описания"}
	}

	version := data.Version
	if version == "" {
		version = "Неизвестно"
	}

	var players []string
	for _, p := range data.Players.List {
		players = append(players, p.Name)
	}

	return &models.ServerInfo{
		Address:     data.IP + ":" + formatPort(data.Port),
		IsOnline:    data.Online,
		MOTD:        motd,
		Version:     version,
		OnlineCount: data.Players.Online,
		MaxCount:    data.Players.Max,
		PlayerNames: players,
	}
}

// formatPort переводит номер порта в строку; отсутствующий порт — пустая строка.
func formatPort(port json.Number) string {
	if port.String() == "" {
		return ""
	}
	if n, err := port.Int64(); err == nil {
		return strconv.FormatInt(n, 10)
	}
	return port.String()
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
