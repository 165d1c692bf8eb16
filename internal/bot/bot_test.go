package bot

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"mcstatbot/internal/config"
	"mcstatbot/internal/domain"
	"mcstatbot/internal/mcstatus"
	"mcstatbot/internal/models"
	"mcstatbot/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

type mockTelegramService struct {
	domain.TelegramService
	updatesChan  chan tgbotapi.Update
	sentMessages []tgbotapi.Chattable
	requests     []tgbotapi.Chattable
}

func (m *mockTelegramService) GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return m.updatesChan
}

func (m *mockTelegramService) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	m.sentMessages = append(m.sentMessages, c)
	return tgbotapi.Message{}, nil
}

func (m *mockTelegramService) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	m.requests = append(m.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (m *mockTelegramService) GetSelf() tgbotapi.User {
	return tgbotapi.User{UserName: "test_bot"}
}

func (m *mockTelegramService) lastMessage(t *testing.T) tgbotapi.MessageConfig {
	t.Helper()
	if len(m.sentMessages) == 0 {
		t.Fatal("no messages sent")
	}
	msg, ok := m.sentMessages[len(m.sentMessages)-1].(tgbotapi.MessageConfig)
	if !ok {
		t.Fatalf("last sent is %T, not MessageConfig", m.sentMessages[len(m.sentMessages)-1])
	}
	return msg
}

type mockProfiles struct {
	registered map[int64]bool
	requests   map[int64]int
	favorites  map[int64]map[string]string
	addFavErr  error
	delFavErr  error
}

func newMockProfiles() *mockProfiles {
	return &mockProfiles{
		registered: make(map[int64]bool),
		requests:   make(map[int64]int),
		favorites:  make(map[int64]map[string]string),
	}
}

func (m *mockProfiles) Register(ctx context.Context, userID int64) error {
	m.registered[userID] = true
	return nil
}

func (m *mockProfiles) AddRequest(ctx context.Context, userID int64) error {
	m.requests[userID]++
	return nil
}

func (m *mockProfiles) Favorites(ctx context.Context, userID int64) (map[string]string, error) {
	return m.favorites[userID], nil
}

func (m *mockProfiles) AddFavorite(ctx context.Context, userID int64, name, address string) error {
	if m.addFavErr != nil {
		return m.addFavErr
	}
	if m.favorites[userID] == nil {
		m.favorites[userID] = make(map[string]string)
	}
	m.favorites[userID][name] = address
	return nil
}

func (m *mockProfiles) RemoveFavorite(ctx context.Context, userID int64, name string) error {
	if m.delFavErr != nil {
		return m.delFavErr
	}
	delete(m.favorites[userID], name)
	return nil
}

type mockFetcher struct {
	info      *models.ServerInfo
	err       error
	addresses []string
}

func (m *mockFetcher) FetchServerInfo(ctx context.Context, address string) (*models.ServerInfo, error) {
	m.addresses = append(m.addresses, address)
	if m.err != nil {
		return nil, m.err
	}
	info := *m.info
	return &info, nil
}

func onlineInfo() *models.ServerInfo {
	return &models.ServerInfo{
		Address:     "123.45.67.89:25565",
		IsOnline:    true,
		MOTD:        []string{"2b2t"},
		Version:     "1.20",
		OnlineCount: 300,
		MaxCount:    1000,
	}
}

func newTestBot(t *testing.T, profiles domain.ProfileService, fetcher domain.ServerInfoProvider) (*Bot, *mockTelegramService) {
	t.Helper()

	tg := &mockTelegramService{updatesChan: make(chan tgbotapi.Update, 1)}
	logger := zerolog.New(io.Discard)
	cfg := &config.Config{
		Telegram: config.TelegramConfig{BotToken: "test"},
		Bot:      config.BotConfig{MaxFavServers: models.MaxFavServers},
	}

	b, err := NewBot(tg, cfg, profiles, fetcher, nil, nil, &logger)
	if err != nil {
		t.Fatalf("NewBot: %v", err)
	}
	return b, tg
}

func message(text string) *tgbotapi.Message {
	return &tgbotapi.Message{
		MessageID: 7,
		From:      &tgbotapi.User{ID: 123, UserName: "testuser", FirstName: "Test"},
		Chat:      &tgbotapi.Chat{ID: 123},
		Text:      text,
	}
}

func TestBotStart(t *testing.T) {
	profiles := newMockProfiles()
	b, tg := newTestBot(t, profiles, &mockFetcher{info: onlineInfo()})

	ctx, cancel := context.WithCancel(context.Background())

	go b.Start(ctx)

	tg.updatesChan <- tgbotapi.Update{Message: message("/start")}

	time.Sleep(100 * time.Millisecond)
	cancel()

	if !profiles.registered[123] {
		t.Error("expected /start to register the user")
	}
	if len(tg.sentMessages) == 0 {
		t.Error("expected at least one message sent")
	}
}

func TestHandleMessageStats(t *testing.T) {
	profiles := newMockProfiles()
	fetcher := &mockFetcher{info: onlineInfo()}
	b, tg := newTestBot(t, profiles, fetcher)

	b.handleMessage(context.Background(), message("/stats 2b2t.org"))

	if got := fetcher.addresses; len(got) != 1 || got[0] != "2b2t.org" {
		t.Fatalf("fetched addresses = %v, want [2b2t.org]", got)
	}
	if profiles.requests[123] != 1 {
		t.Errorf("requests count = %d, want 1", profiles.requests[123])
	}

	msg := tg.lastMessage(t)
	if msg.ParseMode != models.ParseModeHTML {
		t.Errorf("parse mode = %q, want HTML", msg.ParseMode)
	}
	if !strings.Contains(msg.Text, "2b2t.org") || !strings.Contains(msg.Text, "300 / 1000") {
		t.Errorf("unexpected card text: %q", msg.Text)
	}
}

func TestHandleMessageStatsMissingAddress(t *testing.T) {
	fetcher := &mockFetcher{info: onlineInfo()}
	b, tg := newTestBot(t, newMockProfiles(), fetcher)

	b.handleMessage(context.Background(), message("/stats"))

	if len(fetcher.addresses) != 0 {
		t.Errorf("expected no fetch for /stats without address, got %v", fetcher.addresses)
	}
	if msg := tg.lastMessage(t); msg.Text != missingAddressText {
		t.Errorf("reply = %q, want missing address error", msg.Text)
	}
}

func TestHandleMessageFetchError(t *testing.T) {
	profiles := newMockProfiles()
	fetcher := &mockFetcher{err: mcstatus.ErrTimeout}
	b, tg := newTestBot(t, profiles, fetcher)

	b.handleMessage(context.Background(), message("/stats 2b2t.org"))

	if profiles.requests[123] != 0 {
		t.Errorf("requests count = %d, want 0 after failed fetch", profiles.requests[123])
	}
	if msg := tg.lastMessage(t); !strings.Contains(msg.Text, "Ошибка") {
		t.Errorf("reply = %q, want error text", msg.Text)
	}
}

func TestHandleMessageUnknownCommand(t *testing.T) {
	b, tg := newTestBot(t, newMockProfiles(), &mockFetcher{info: onlineInfo()})

	b.handleMessage(context.Background(), message("/frobnicate"))

	if msg := tg.lastMessage(t); msg.Text != invalidCommandText {
		t.Errorf("reply = %q, want invalid command text", msg.Text)
	}
}

func TestHandleMessageFavorites(t *testing.T) {
	profiles := newMockProfiles()
	b, tg := newTestBot(t, profiles, &mockFetcher{info: onlineInfo()})
	ctx := context.Background()

	b.handleMessage(ctx, message("/fav add 2b2t.org best"))
	if profiles.favorites[123]["best"] != "2b2t.org" {
		t.Fatalf("favorites = %v, want best -> 2b2t.org", profiles.favorites[123])
	}

	b.handleMessage(ctx, message("/fav"))
	if msg := tg.lastMessage(t); !strings.Contains(msg.Text, "best") {
		t.Errorf("list reply = %q, want favorite name", msg.Text)
	}

	b.handleMessage(ctx, message("/fav del best"))
	if _, ok := profiles.favorites[123]["best"]; ok {
		t.Error("favorite was not removed")
	}
	if msg := tg.lastMessage(t); msg.Text != "Удалил сервер" {
		t.Errorf("delete reply = %q", msg.Text)
	}
}

func TestHandleMessageFavoritesLimit(t *testing.T) {
	profiles := newMockProfiles()
	profiles.addFavErr = service.ErrFavoritesLimit
	b, tg := newTestBot(t, profiles, &mockFetcher{info: onlineInfo()})

	b.handleMessage(context.Background(), message("/fav add 2b2t.org"))

	msg := tg.lastMessage(t)
	if !strings.Contains(msg.Text, "Максимальное количество избранных серверов: 10") {
		t.Errorf("reply = %q, want limit error", msg.Text)
	}
}

func TestHandleQueryFavoriteName(t *testing.T) {
	profiles := newMockProfiles()
	profiles.favorites[123] = map[string]string{"best": "2b2t.org"}
	fetcher := &mockFetcher{info: onlineInfo()}
	b, _ := newTestBot(t, profiles, fetcher)

	b.handleMessage(context.Background(), message("best"))

	if got := fetcher.addresses; len(got) != 1 || got[0] != "2b2t.org" {
		t.Errorf("fetched addresses = %v, want favorite resolved to 2b2t.org", got)
	}
}

func TestHandleQueryRawAddress(t *testing.T) {
	fetcher := &mockFetcher{info: onlineInfo()}
	b, _ := newTestBot(t, newMockProfiles(), fetcher)

	b.handleMessage(context.Background(), message("mc.example.com и ещё текст"))

	if got := fetcher.addresses; len(got) != 1 || got[0] != "mc.example.com" {
		t.Errorf("fetched addresses = %v, want first token only", got)
	}
}

func TestFavoritesKeyboardSorted(t *testing.T) {
	profiles := newMockProfiles()
	profiles.favorites[123] = map[string]string{"b": "b.org", "a": "a.org"}
	b, _ := newTestBot(t, profiles, &mockFetcher{info: onlineInfo()})

	keyboard := b.favoritesKeyboard(context.Background(), 123)
	if keyboard == nil {
		t.Fatal("expected keyboard for user with favorites")
	}
	if len(keyboard.Keyboard) != 2 || keyboard.Keyboard[0][0].Text != "a" {
		t.Errorf("keyboard rows = %v, want sorted by name", keyboard.Keyboard)
	}

	if b.favoritesKeyboard(context.Background(), 999) != nil {
		t.Error("expected nil keyboard for user without favorites")
	}
}

func TestUserLabel(t *testing.T) {
	full := &tgbotapi.User{ID: 1, FirstName: "Иван", LastName: "Иванов", UserName: "ivan"}
	if got := userLabel(full); got != "Иван Иванов (@ivan, 1)" {
		t.Errorf("userLabel = %q", got)
	}

	bare := &tgbotapi.User{ID: 2, FirstName: "Анон"}
	if got := userLabel(bare); got != "Анон (2)" {
		t.Errorf("userLabel = %q", got)
	}
}
