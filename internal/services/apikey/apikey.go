// Package apikey реализует выпуск, проверку и отзыв API-ключей
// корпоративных клиентов.
package apikey

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/leafcare-backend/internal/models"
)

// ErrInvalidKey возвращается при неизвестном, отозванном или истёкшем ключе.
var ErrInvalidKey = errors.New("invalid api key")

// ErrNotEnterprise возвращается, когда план владельца ключа не даёт доступа к API.
var ErrNotEnterprise = errors.New("plan does not include api access")

// keyTTL задаёт срок действия выпускаемых ключей.
const keyTTL = 365 * 24 * time.Hour

// Repository определяет методы хранилища, необходимые сервису ключей.
type Repository interface {
	CreateAPIKey(ctx context.Context, key models.APIKey) (int, error)
	FindActiveAPIKeyByHash(ctx context.Context, keyHash string) (*models.APIKey, error)
	ListAPIKeys(ctx context.Context, userUID string) ([]*models.APIKey, error)
	RevokeAPIKey(ctx context.Context, id int, userUID string) (int, error)
	GetActiveSubscription(ctx context.Context, userUID string) (*models.Subscription, error)
	GetPlan(ctx context.Context, id int) (*models.Plan, error)
	GetUser(ctx context.Context, userUID string) (*models.User, error)
}

// Service реализует работу с API-ключами.
type Service struct {
	repo Repository
	log  *slog.Logger
}

func New(repo Repository, log *slog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log,
	}
}

// Create выпускает новый ключ вида ent_<64 hex>. Открытый текст возвращается
// один раз; в хранилище попадает только sha256-хэш и префикс для отображения.
func (s *Service) Create(ctx context.Context, userUID string, req models.DummyAPIKeyCreate) (plaintext string, key *models.APIKey, err error) {
	if err := s.requireAPIAccess(ctx, userUID); err != nil {
		return "", nil, err
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", nil, err
	}
	plaintext = "ent_" + hex.EncodeToString(raw)
	hash := sha256.Sum256([]byte(plaintext))

	record := models.APIKey{
		UserUID:   userUID,
		Name:      req.Name,
		KeyPrefix: plaintext[:12],
		KeyHash:   hex.EncodeToString(hash[:]),
		IsActive:  true,
		ExpiresAt: time.Now().UTC().Add(keyTTL),
	}
	id, err := s.repo.CreateAPIKey(ctx, record)
	if err != nil {
		return "", nil, err
	}
	record.ID = id

	s.log.Info("api key created",
		slog.Int("key_id", id),
		slog.String("prefix", record.KeyPrefix))
	return plaintext, &record, nil
}

// Authenticate проверяет ключ по хэшу, обновляет статистику использования
// и возвращает владельца. Ключ действует только на enterprise-плане.
func (s *Service) Authenticate(ctx context.Context, plaintext string) (*models.User, error) {
	hash := sha256.Sum256([]byte(plaintext))
	key, err := s.repo.FindActiveAPIKeyByHash(ctx, hex.EncodeToString(hash[:]))
	if err != nil {
		return nil, ErrInvalidKey
	}

	if err := s.requireAPIAccess(ctx, key.UserUID); err != nil {
		return nil, err
	}

	user, err := s.repo.GetUser(ctx, key.UserUID)
	if err != nil {
		return nil, fmt.Errorf("apikey.Authenticate: %w", err)
	}
	return user, nil
}

// List возвращает ключи пользователя без хэшей.
func (s *Service) List(ctx context.Context, userUID string) ([]*models.APIKey, error) {
	keys, err := s.repo.ListAPIKeys(ctx, userUID)
	if err != nil {
		return nil, err
	}
	for _, key := range keys {
		key.KeyHash = ""
	}
	return keys, nil
}

// Revoke деактивирует ключ пользователя.
func (s *Service) Revoke(ctx context.Context, id int, userUID string) error {
	count, err := s.repo.RevokeAPIKey(ctx, id, userUID)
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrInvalidKey
	}
	return nil
}

func (s *Service) requireAPIAccess(ctx context.Context, userUID string) error {
	sub, err := s.repo.GetActiveSubscription(ctx, userUID)
	if err != nil {
		return ErrNotEnterprise
	}
	plan, err := s.repo.GetPlan(ctx, sub.PlanID)
	if err != nil {
		return err
	}
	if !plan.HasAPIAccess {
		return ErrNotEnterprise
	}
	return nil
}
