package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Dan9191/money-marathon/internal/auth"
	"github.com/Dan9191/money-marathon/internal/config"
	apperr "github.com/Dan9191/money-marathon/internal/errors"
	"github.com/Dan9191/money-marathon/internal/models"
	"github.com/Dan9191/money-marathon/internal/repository"
	"github.com/Dan9191/money-marathon/internal/tokenstore"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// Notifier delivers plan status notices to the plan owner
type Notifier interface {
	SendPlanCompleted(to, name string, plan models.Plan, stats models.PlanStats) error
	SendPlanStopped(to, name string, plan models.Plan, day int) error
}

// Service handles business logic
type Service struct {
	repo       repository.Store
	log        *logrus.Logger
	config     *config.Config
	jwt        auth.JWT
	tokens     tokenstore.Store
	notifier   Notifier
	bcryptCost int
}

// NewService initializes a new service. notifier may be nil.
func NewService(repo repository.Store, log *logrus.Logger, cfg *config.Config, tokens tokenstore.Store, notifier Notifier) *Service {
	return &Service{
		repo:       repo,
		log:        log,
		config:     cfg,
		jwt:        auth.JWT{Secret: []byte(cfg.JWTSecret), TokenTTL: cfg.TokenTTL},
		tokens:     tokens,
		notifier:   notifier,
		bcryptCost: bcrypt.DefaultCost,
	}
}

// Session is the result of a successful registration or login
type Session struct {
	User      models.Principal `json:"user"`
	Token     string           `json:"token"`
	ExpiresAt time.Time        `json:"expires_at"`
}

// Register creates a new user with hashed password and signs them in
func (s *Service) Register(ctx context.Context, name, email, password string) (*Session, error) {
	name, email, err := validateRegistration(name, email, password)
	if err != nil {
		return nil, err
	}

	// Hash password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hashedPassword),
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	s.log.Infof("User registered: %s", user.Email)
	return s.newSession(user)
}

// Login authenticates a user and returns a JWT token
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	email, err := validateLogin(email, password)
	if err != nil {
		return nil, err
	}
	user, err := s.repo.FindUserByEmail(ctx, email)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, fmt.Errorf("invalid credentials: %w", apperr.ErrUnauthorized)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	// Verify password
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, fmt.Errorf("invalid credentials: %w", apperr.ErrUnauthorized)
	}

	s.log.Infof("User logged in: %s", user.Email)
	return s.newSession(user)
}

// Logout revokes the caller's token for the rest of its lifetime
func (s *Service) Logout(ctx context.Context, claims auth.Claims) error {
	if err := s.tokens.Revoke(ctx, claims.ID, claims.TTL(time.Now())); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	s.log.Infof("User logged out: %s", claims.Email)
	return nil
}

func (s *Service) newSession(user *models.User) (*Session, error) {
	token, expiresAt, err := s.jwt.Sign(user.Principal())
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &Session{User: user.Principal(), Token: token, ExpiresAt: expiresAt}, nil
}
