package identity

import (
	"context"
	"strconv"
	"time"

	"github.com/IVANFROL/reklama-oleg/pkg/config"
	"github.com/IVANFROL/reklama-oleg/pkg/errutil"
	"github.com/IVANFROL/reklama-oleg/pkg/middleware"
	"github.com/IVANFROL/reklama-oleg/pkg/repository"

	"github.com/bwmarrin/snowflake"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type Service struct {
	db   *gorm.DB
	node *snowflake.Node

	users repository.Repository[User]

	jwtSecret []byte
	tokenTTL  time.Duration
}

type ServiceParams struct {
	fx.In
	DB     *gorm.DB
	Node   *snowflake.Node
	Config *config.Config
}

func NewService(p ServiceParams) *Service {
	return &Service{
		db:        p.DB,
		node:      p.Node,
		users:     repository.ProvideStore[User](p.DB),
		jwtSecret: []byte(p.Config.Auth.JWTSecret),
		tokenTTL:  p.Config.Auth.TokenTTL,
	}
}

type RegisterInput struct {
	Email    string
	Username string
	Password string
}

// Register creates a user with a zero balance. Duplicate usernames and
// duplicate emails are rejected with distinct messages, matching the legacy
// surface.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*User, error) {
	existing, err := s.users.FindOne(ctx, &User{Username: in.Username})
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, errutil.BadRequest("Username already registered",
			errutil.WithDetails(errutil.Detail{Field: "username", Message: "already registered"}))
	}

	existing, err = s.users.FindOne(ctx, &User{Email: in.Email})
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, errutil.BadRequest("Email already registered",
			errutil.WithDetails(errutil.Detail{Field: "email", Message: "already registered"}))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &User{
		ID:           s.node.Generate().Int64(),
		Email:        in.Email,
		Username:     in.Username,
		PasswordHash: string(hash),
		Balance:      0,
		Role:         RoleUser,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	zap.L().Info("user registered", zap.Int64("user_id", user.ID), zap.String("username", user.Username))
	return user, nil
}

// Authenticate verifies a username/password pair.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*User, error) {
	user, err := s.users.FindOne(ctx, &User{Username: username})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errutil.Unauthorized("Incorrect username or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, errutil.Unauthorized("Incorrect username or password")
	}

	return user, nil
}

type tokenClaims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// IssueToken signs a bearer token for the user, expiring after the
// configured TTL.
func (s *Service) IssueToken(user *User) (string, error) {
	now := time.Now()
	claims := tokenClaims{
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(user.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// ValidateToken resolves a bearer token to the principal it was issued for.
// Expired and malformed tokens fail; jwt/v5 enforces exp during parsing.
func (s *Service) ValidateToken(token string) (*middleware.Principal, error) {
	parsed, err := jwt.ParseWithClaims(token, &tokenClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errutil.Unauthorized("unexpected signing method")
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, errutil.Unauthorized("Could not validate credentials", errutil.WithErr(err))
	}

	claims, ok := parsed.Claims.(*tokenClaims)
	if !ok || !parsed.Valid {
		return nil, errutil.Unauthorized("Could not validate credentials")
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return nil, errutil.Unauthorized("Could not validate credentials", errutil.WithErr(err))
	}

	return &middleware.Principal{
		UserID:   userID,
		Username: claims.Username,
		Role:     claims.Role,
	}, nil
}

// GetUser loads a user by id.
func (s *Service) GetUser(ctx context.Context, id int64) (*User, error) {
	user, err := s.users.FindOne(ctx, &User{ID: id})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errutil.NotFound("User not found")
	}
	return user, nil
}
