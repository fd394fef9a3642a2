// Package auth реализует бизнес-логику регистрации, входа и проверки токенов.
package auth

import (
	"context"
	"errors"

	"github.com/magabrotheeeer/leafcare-backend/internal/lib/jwt"
	"github.com/magabrotheeeer/leafcare-backend/internal/lib/password"
	"github.com/magabrotheeeer/leafcare-backend/internal/models"
)

// ErrInvalidCredentials возвращается при неверной паре логин-пароль.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrUserDisabled возвращается при попытке входа в отключённую учётную запись.
var ErrUserDisabled = errors.New("user account is disabled")

// Интерфейс репозитория пользователей.
type UserRepository interface {
	RegisterUser(ctx context.Context, user models.User) (string, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUser(ctx context.Context, userUID string) (*models.User, error)
}

// Service реализует бизнес-логику авторизации и аутентификации.
type Service struct {
	users    UserRepository
	jwtMaker jwt.Maker
}

func New(users UserRepository, jwtMaker jwt.Maker) *Service {
	return &Service{
		users:    users,
		jwtMaker: jwtMaker,
	}
}

// Register создаёт нового пользователя с хэшированием пароля и ролью "user".
// Возвращает UID созданного пользователя.
func (s *Service) Register(ctx context.Context, req models.DummyRegister) (string, error) {
	hashed, err := password.GetHash(req.Password)
	if err != nil {
		return "", err
	}
	user := models.User{
		Email:        req.Email,
		Username:     req.Username,
		PasswordHash: hashed,
		Role:         "user",
		IsActive:     true,
	}
	return s.users.RegisterUser(ctx, user)
}

// Login проверяет пароль и возвращает JWT вместе с ролью пользователя.
func (s *Service) Login(ctx context.Context, req models.DummyLogin) (token, role string, err error) {
	user, err := s.users.GetUserByUsername(ctx, req.Username)
	if err != nil {
		return "", "", ErrInvalidCredentials
	}
	if !user.IsActive {
		return "", "", ErrUserDisabled
	}
	if err := password.CompareHash(user.PasswordHash, req.Password); err != nil {
		return "", "", ErrInvalidCredentials
	}
	token, err = s.jwtMaker.GenerateToken(user.Username, user.Role, user.UID)
	if err != nil {
		return "", "", err
	}
	return token, user.Role, nil
}

// ValidateToken проверяет JWT и возвращает данные пользователя из claims.
func (s *Service) ValidateToken(_ context.Context, token string) (*models.User, error) {
	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		return nil, err
	}
	return &models.User{
		UID:      claims.UserUID,
		Username: claims.Username,
		Role:     claims.Role,
	}, nil
}

// Me возвращает профиль пользователя по его UID.
func (s *Service) Me(ctx context.Context, userUID string) (*models.User, error) {
	return s.users.GetUser(ctx, userUID)
}
