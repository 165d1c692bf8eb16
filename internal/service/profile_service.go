package service

import (
	"context"
	"errors"

	"mcstatbot/internal/database"
	"mcstatbot/internal/domain"

	"github.com/rs/zerolog"
)

var (
	// ErrFavoriteNotFound в избранных нет сервера с таким именем
	ErrFavoriteNotFound = errors.New("favorite server not found")
	// ErrFavoritesLimit превышен лимит избранных серверов
	ErrFavoritesLimit = errors.New("favorites limit exceeded")
)

// ProfileService бизнес-операции над профилем: регистрация, счётчик,
// избранные сервера с лимитом. Отсутствие профиля при записи — мягкий
// сбой: логируется и не отдаётся вызывающему.
type ProfileService struct {
	repo          domain.ProfileRepository
	maxFavServers int
	logger        *zerolog.Logger
}

func NewProfileService(repo domain.ProfileRepository, maxFavServers int, logger *zerolog.Logger) *ProfileService {
	return &ProfileService{
		repo:          repo,
		maxFavServers: maxFavServers,
		logger:        logger,
	}
}

// Register регистрирует пользователя; повторный вызов — no-op.
func (s *ProfileService) Register(ctx context.Context, userID int64) error {
	return s.repo.RegisterUser(ctx, userID)
}

// AddRequest фиксирует успешный запрос статистики в профиле.
func (s *ProfileService) AddRequest(ctx context.Context, userID int64) error {
	err := s.repo.IncrementRequestCount(ctx, userID)
	if errors.Is(err, database.ErrUserNotFound) {
		s.logger.Warn().Int64("user_id", userID).Msg("Счётчик запросов не обновлён: профиль отсутствует")
		return nil
	}
	return err
}

// Favorites возвращает избранные сервера пользователя.
func (s *ProfileService) Favorites(ctx context.Context, userID int64) (map[string]string, error) {
	return s.repo.GetFavorites(ctx, userID)
}

// AddFavorite добавляет сервер в избранные под указанным именем.
// Существующее имя перезаписывается. Проверка лимита повторяет
// исторический вариант `len > max` до вставки, поэтому фактически
// допускает max+1 записей; поведение закреплено тестами.
func (s *ProfileService) AddFavorite(ctx context.Context, userID int64, name, address string) error {
	favorites, err := s.repo.GetFavorites(ctx, userID)
	if err != nil {
		return err
	}

	if len(favorites) > s.maxFavServers {
		return ErrFavoritesLimit
	}

	favorites[name] = address
	return s.setFavorites(ctx, userID, favorites)
}

// RemoveFavorite удаляет сервер из избранных по имени.
func (s *ProfileService) RemoveFavorite(ctx context.Context, userID int64, name string) error {
	favorites, err := s.repo.GetFavorites(ctx, userID)
	if err != nil {
		return err
	}

	if _, ok := favorites[name]; !ok {
		return ErrFavoriteNotFound
	}

	delete(favorites, name)
	return s.setFavorites(ctx, userID, favorites)
}

func (s *ProfileService) setFavorites(ctx context.Context, userID int64, favorites map[string]string) error {
	err := s.repo.SetFavorites(ctx, userID, favorites)
	if errors.Is(err, database.ErrUserNotFound) {
		s.logger.Warn().Int64("user_id", userID).Msg("Избранные не сохранены: профиль отсутствует")
		return nil
	}
	return err
}
