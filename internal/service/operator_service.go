package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"microwave/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// AuthSettings configures token signing.
type AuthSettings struct {
	SigningKey string
	TokenTTL   time.Duration
}

var (
	ErrInvalidUsername    = errors.New("username must be 3-32 characters of a-z, 0-9, '.', '_' or '-'")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrOperatorExists     = repository.ErrOperatorExists
)

const minPasswordLen = 8

var usernamePattern = regexp.MustCompile(`^[a-z0-9._-]{3,32}$`)

// Operator identifies whoever pressed a button. The zero value means the
// oven itself (timer callbacks).
type Operator struct {
	ID   int    `json:"id"`
	Name string `json:"username"`
}

type operatorKey struct{}

// WithOperator attaches the calling operator to ctx. Oven commands issued
// with that context are attributed to op in the event log.
func WithOperator(ctx context.Context, op Operator) context.Context {
	return context.WithValue(ctx, operatorKey{}, op)
}

// OperatorFrom returns the operator attached by WithOperator.
func OperatorFrom(ctx context.Context) (Operator, bool) {
	op, ok := ctx.Value(operatorKey{}).(Operator)
	return op, ok
}

// OperatorService registers operators and issues the bearer tokens that
// carry their identity into oven commands.
type OperatorService struct {
	repo     repository.OperatorRepo
	settings AuthSettings
	now      func() time.Time
}

func NewOperatorService(repo repository.OperatorRepo, settings AuthSettings) *OperatorService {
	return &OperatorService{repo: repo, settings: settings, now: time.Now}
}

// Claims carries the operator id; the username travels in Subject.
type Claims struct {
	jwt.RegisteredClaims
	OperatorID int `json:"operator_id"`
}

// Register validates and stores a new operator. Usernames are case-insensitive.
func (s *OperatorService) Register(ctx context.Context, username, password string) (int, error) {
	username = normalizeUsername(username)
	if !usernamePattern.MatchString(username) {
		return 0, ErrInvalidUsername
	}
	if len(password) < minPasswordLen || strings.TrimSpace(password) == "" {
		return 0, ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return 0, fmt.Errorf("hash password: %w", err)
	}
	return s.repo.Create(ctx, username, string(hash))
}

// Login checks credentials and returns a signed token. Unknown usernames and
// wrong passwords are indistinguishable to the caller.
func (s *OperatorService) Login(ctx context.Context, username, password string) (string, error) {
	op, err := s.repo.GetByUsername(ctx, normalizeUsername(username))
	if err != nil {
		return "", err
	}
	if op == nil {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(op.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}
	return s.issueToken(Operator{ID: op.ID, Name: op.Username})
}

// Authenticate verifies a bearer token and returns the operator it names.
func (s *OperatorService) Authenticate(accessToken string) (Operator, error) {
	token, err := jwt.ParseWithClaims(accessToken, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.settings.SigningKey), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return Operator{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.OperatorID <= 0 || claims.Subject == "" {
		return Operator{}, ErrInvalidToken
	}
	return Operator{ID: claims.OperatorID, Name: claims.Subject}, nil
}

func (s *OperatorService) issueToken(op Operator) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   op.Name,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.settings.TokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		OperatorID: op.ID,
	})
	return token.SignedString([]byte(s.settings.SigningKey))
}

func normalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}
