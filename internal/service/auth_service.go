package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/Sumiattri/task-manager/internal/apperr"
	"github.com/Sumiattri/task-manager/internal/ctxutil"
	"github.com/Sumiattri/task-manager/internal/logger"
	"github.com/Sumiattri/task-manager/internal/model"
	"github.com/Sumiattri/task-manager/internal/repository"
)

const minPasswordLength = 6

// Claims is the JWT payload issued at login.
type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// RegisterInput carries a signup request.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	Role     string
}

// AuthService registers users and issues and verifies access tokens.
type AuthService struct {
	users            *repository.UserRepository
	secret           []byte
	ttl              time.Duration
	allowAdminSignup bool
	log              *logger.Logger
	now              Clock
}

func NewAuthService(users *repository.UserRepository, secret string, ttl time.Duration, allowAdminSignup bool, log *logger.Logger) *AuthService {
	return &AuthService{
		users:            users,
		secret:           []byte(secret),
		ttl:              ttl,
		allowAdminSignup: allowAdminSignup,
		log:              log.With("service", "AuthService"),
		now:              utcNow,
	}
}

// Register creates an account. The admin role is only granted when admin
// signup is enabled.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if username == "" {
		return nil, apperr.Validation("username is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, apperr.Validation("a valid email is required")
	}
	if len(in.Password) < minPasswordLength {
		return nil, apperr.Validation("password must be at least %d characters", minPasswordLength)
	}

	role := model.RoleUser
	switch strings.TrimSpace(in.Role) {
	case "", model.RoleUser:
	case model.RoleAdmin:
		if !s.allowAdminSignup {
			return nil, apperr.Forbidden("admin signup is disabled")
		}
		role = model.RoleAdmin
	default:
		return nil, apperr.Validation("role must be user or admin")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.New(apperr.ErrValidation, "password cannot be hashed", err)
	}

	user := model.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
	}
	if err := s.users.Create(ctx, &user); err != nil {
		return nil, err
	}
	s.log.Info("user registered", "user_id", user.ID.String(), "role", role)
	return &user, nil
}

// Login checks the credentials and returns a signed access token.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *model.User, error) {
	user, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return "", nil, apperr.Unauthorized("invalid credentials")
		}
		return "", nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, apperr.Unauthorized("invalid credentials")
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return "", nil, err
	}
	s.log.Info("user logged in", "user_id", user.ID.String())
	return token, user, nil
}

// IssueToken signs an HS256 token whose subject is the user id.
func (s *AuthService) IssueToken(user *model.User) (string, error) {
	now := s.now()
	claims := Claims{
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", apperr.New(apperr.ErrUnauthorized, "token cannot be signed", err)
	}
	return signed, nil
}

// Authenticate verifies a bearer token and returns the caller it names.
func (s *AuthService) Authenticate(raw string) (*ctxutil.Actor, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, apperr.Unauthorized("invalid or expired token")
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, apperr.Unauthorized("invalid token subject")
	}
	return &ctxutil.Actor{UserID: id, Username: claims.Username, Role: claims.Role}, nil
}
