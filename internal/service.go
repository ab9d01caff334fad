package internal

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/DrGermanius/Glonni/internal/model"
)

const tokenTTL = 72 * time.Hour

// IService is the identity provider: it registers and logs in users and
// issues the session token.
type IService interface {
	Register(context.Context, string, string) (string, error)
	Login(context.Context, string, string) (string, error)
	GetJWTToken(string, model.Role) (string, error)
	ParseToken(string) (model.Session, error)
}

func NewService(repository IRepository, secret string, logger *zap.SugaredLogger) *Service {
	return &Service{Repository: repository, secret: []byte(secret), logger: logger}
}

type Service struct {
	Repository IRepository
	secret     []byte
	logger     *zap.SugaredLogger
}

// Register creates the user and returns its identity.
func (s Service) Register(ctx context.Context, login, password string) (string, error) {
	exist, err := s.Repository.IsUserExist(ctx, login)
	if err != nil {
		return "", err
	}

	if exist {
		return "", ErrLoginIsAlreadyTaken
	}

	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	id, err := s.Repository.Register(ctx, login, string(h))
	if err != nil {
		return "", err
	}

	s.logger.Infof("user %d registered", id)
	return strconv.Itoa(id), nil
}

// Login checks the credentials and returns the user's identity.
func (s Service) Login(ctx context.Context, login, password string) (string, error) {
	id, h, err := s.Repository.GetCredentials(ctx, login)
	if err != nil {
		return "", err
	}

	if err = bcrypt.CompareHashAndPassword([]byte(h), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	return strconv.Itoa(id), nil
}

func (s Service) GetJWTToken(identity string, role model.Role) (string, error) {
	claims := jwt.MapClaims{
		"id":  identity,
		"exp": time.Now().Add(tokenTTL).Unix(),
	}
	if role != "" {
		claims["role"] = string(role)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	t, err := token.SignedString(s.secret)
	if err != nil {
		return "", err
	}

	return t, nil
}

func (s Service) ParseToken(tokenString string) (model.Session, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil {
		return model.Session{}, ErrNotAuthenticated
	}

	id, ok := claims["id"].(string)
	if !ok || id == "" {
		return model.Session{}, ErrNotAuthenticated
	}

	role, _ := claims["role"].(string)
	return model.Session{Identity: id, RoleClaim: role}, nil
}
