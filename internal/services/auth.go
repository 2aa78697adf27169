package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"tabungan/internal/core"
	applog "tabungan/internal/log"
	"tabungan/internal/storage"
)

const minPasswordLength = 6

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrWeakPassword       = errors.New("password must be at least 6 characters")
	ErrNameRequired       = errors.New("name is required")
	ErrInvalidToken       = errors.New("invalid token")
)

type SignUpInput struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Country   string `json:"country"`
	Bio       string `json:"bio"`
	Birthdate string `json:"birthdate"`
	Username  string `json:"username"`
	Password  string `json:"password"`
}

type ProfileInput struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Country   string `json:"country"`
	Bio       string `json:"bio"`
	Birthdate string `json:"birthdate"`
}

// Claims are the session token claims.
type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

type AuthService struct {
	users     storage.UserStore
	jwtSecret []byte
	jwtExpiry time.Duration
	logger    *applog.Logger
	now       func() time.Time
	newID     func() string
}

func NewAuthService(users storage.UserStore, jwtSecret string, jwtExpiry time.Duration) *AuthService {
	return &AuthService{
		users:     users,
		jwtSecret: []byte(jwtSecret),
		jwtExpiry: jwtExpiry,
		logger:    applog.WithComponent(applog.ComponentAuth),
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

func (s *AuthService) SignUp(ctx context.Context, in SignUpInput) (core.User, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" {
		return core.User{}, core.ErrEmptyUsername
	}
	if strings.TrimSpace(in.Name) == "" {
		return core.User{}, ErrNameRequired
	}
	if len(in.Password) < minPasswordLength {
		return core.User{}, ErrWeakPassword
	}

	hash, err := s.HashPassword(in.Password)
	if err != nil {
		return core.User{}, fmt.Errorf("hash password: %w", err)
	}

	u := core.User{
		ID:           s.newID(),
		Name:         strings.TrimSpace(in.Name),
		Email:        strings.TrimSpace(in.Email),
		Country:      strings.TrimSpace(in.Country),
		Bio:          strings.TrimSpace(in.Bio),
		Birthdate:    strings.TrimSpace(in.Birthdate),
		CreatedAt:    s.now().UTC(),
		Username:     username,
		PasswordHash: hash,
	}
	if err := s.users.CreateUser(ctx, u); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return core.User{}, ErrUsernameTaken
		}
		return core.User{}, fmt.Errorf("create user: %w", err)
	}

	s.logger.InfoContext(ctx, "user signed up", applog.FieldUserID, u.ID)
	return u, nil
}

// Login checks the credentials and issues a session token.
func (s *AuthService) Login(ctx context.Context, username, password string) (core.User, string, error) {
	u, err := s.users.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return core.User{}, "", ErrInvalidCredentials
		}
		return core.User{}, "", fmt.Errorf("get user: %w", err)
	}
	if err := s.ComparePassword(password, u.PasswordHash); err != nil {
		return core.User{}, "", ErrInvalidCredentials
	}

	token, err := s.GenerateJWT(u.ID)
	if err != nil {
		return core.User{}, "", fmt.Errorf("generate token: %w", err)
	}
	return u, token, nil
}

func (s *AuthService) HashPassword(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

func (s *AuthService) ComparePassword(password, hash string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

func (s *AuthService) GenerateJWT(userID string) (string, error) {
	now := s.now()
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// VerifyToken validates a session token and returns its user id.
func (s *AuthService) VerifyToken(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		return s.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == "" {
		return "", ErrInvalidToken
	}
	return claims.UserID, nil
}

func (s *AuthService) Profile(ctx context.Context, userID string) (core.User, error) {
	u, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return core.User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *AuthService) UpdateProfile(ctx context.Context, userID string, in ProfileInput) (core.User, error) {
	u, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return core.User{}, fmt.Errorf("get user: %w", err)
	}
	if strings.TrimSpace(in.Name) == "" {
		return core.User{}, ErrNameRequired
	}
	u.Name = strings.TrimSpace(in.Name)
	u.Email = strings.TrimSpace(in.Email)
	u.Country = strings.TrimSpace(in.Country)
	u.Bio = strings.TrimSpace(in.Bio)
	u.Birthdate = strings.TrimSpace(in.Birthdate)

	if err := s.users.UpdateUser(ctx, u); err != nil {
		return core.User{}, fmt.Errorf("update user: %w", err)
	}
	return u, nil
}

// Users lists every account, newest first.
func (s *AuthService) Users(ctx context.Context) ([]core.User, error) {
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}
