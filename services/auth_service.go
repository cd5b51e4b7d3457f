package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/agentdouble/kpix/config"
	"github.com/agentdouble/kpix/database"
	"github.com/agentdouble/kpix/engine"
	"github.com/agentdouble/kpix/models"
	repository "github.com/agentdouble/kpix/repositories"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Claims is the JWT payload. Subject carries the user id.
type Claims struct {
	OrganizationID string      `json:"org"`
	Role           models.Role `json:"role"`
	Type           string      `json:"type"`
	jwt.RegisteredClaims
}

type TokenResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	TokenType    string       `json:"token_type"`
	ExpiresAt    time.Time    `json:"expires_at"`
	User         *models.User `json:"user"`
}

type AuthService interface {
	Signup(ctx context.Context, req *models.SignupRequest) (*TokenResponse, error)
	Login(ctx context.Context, req *models.LoginRequest) (*TokenResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenResponse, error)
	Me(ctx context.Context, p models.Principal) (*models.User, error)
	Organization(ctx context.Context, p models.Principal) (*models.Organization, error)
	ListUsers(ctx context.Context, p models.Principal) ([]models.User, error)
	CreateUser(ctx context.Context, p models.Principal, req *models.CreateUserRequest) (*models.User, error)
}

type authService struct {
	orgs   repository.OrganizationRepository
	users  repository.UserRepository
	tx     database.Transactor
	cfg    config.AuthConfig
	clock  engine.Clock
	logger *zap.Logger
}

func NewAuthService(
	orgs repository.OrganizationRepository,
	users repository.UserRepository,
	tx database.Transactor,
	cfg config.AuthConfig,
	clock engine.Clock,
	logger *zap.Logger,
) AuthService {
	return &authService{orgs: orgs, users: users, tx: tx, cfg: cfg, clock: clock, logger: logger}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Signup creates an organization together with its first administrator.
func (s *authService) Signup(ctx context.Context, req *models.SignupRequest) (*TokenResponse, error) {
	hash, err := s.hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	org := &models.Organization{Name: strings.TrimSpace(req.OrganizationName), CreatedAt: now}
	user := &models.User{
		Email:        normalizeEmail(req.Email),
		FullName:     req.FullName,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
		IsActive:     true,
		CreatedAt:    now,
	}

	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.orgs.Create(ctx, org); err != nil {
			return err
		}
		user.OrganizationID = org.ID
		return s.users.Create(ctx, user)
	})
	if err != nil {
		var conflict *engine.ConflictError
		if errors.As(err, &conflict) {
			return nil, &engine.ConflictError{Resource: "user", Message: "email already registered"}
		}
		return nil, err
	}

	s.logger.Info("organization_signed_up",
		zap.String("organization_id", org.ID.Hex()),
		zap.String("user_id", user.ID.Hex()),
	)
	return s.issueTokens(user)
}

func (s *authService) Login(ctx context.Context, req *models.LoginRequest) (*TokenResponse, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		var nf *engine.NotFoundError
		if errors.As(err, &nf) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrUnauthorized
	}
	if !user.IsActive {
		return nil, fmt.Errorf("user is disabled: %w", ErrForbidden)
	}

	s.logger.Info("user_logged_in", zap.String("user_id", user.ID.Hex()))
	return s.issueTokens(user)
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	claims, err := ParseToken(s.cfg.JWTSecret, refreshToken, TokenTypeRefresh)
	if err != nil {
		return nil, err
	}
	p, err := claims.Principal()
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, p.OrganizationID, p.UserID)
	if err != nil || !user.IsActive {
		return nil, ErrUnauthorized
	}
	return s.issueTokens(user)
}

func (s *authService) Me(ctx context.Context, p models.Principal) (*models.User, error) {
	return s.users.GetByID(ctx, p.OrganizationID, p.UserID)
}

func (s *authService) Organization(ctx context.Context, p models.Principal) (*models.Organization, error) {
	return s.orgs.GetByID(ctx, p.OrganizationID)
}

func (s *authService) ListUsers(ctx context.Context, p models.Principal) ([]models.User, error) {
	return s.users.List(ctx, p.OrganizationID)
}

func (s *authService) CreateUser(ctx context.Context, p models.Principal, req *models.CreateUserRequest) (*models.User, error) {
	if !p.IsAdmin() {
		return nil, ErrForbidden
	}
	hash, err := s.hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	role := req.Role
	if role == "" {
		role = models.RoleUser
	}
	user := &models.User{
		OrganizationID: p.OrganizationID,
		Email:          normalizeEmail(req.Email),
		FullName:       req.FullName,
		PasswordHash:   hash,
		Role:           role,
		IsActive:       true,
		CreatedAt:      s.clock.Now(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		var conflict *engine.ConflictError
		if errors.As(err, &conflict) {
			return nil, &engine.ConflictError{Resource: "user", Message: "email already registered"}
		}
		return nil, err
	}

	s.logger.Info("user_created",
		zap.String("organization_id", p.OrganizationID.Hex()),
		zap.String("user_id", user.ID.Hex()),
	)
	return user, nil
}

func (s *authService) hashPassword(password string) (string, error) {
	cost := s.cfg.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

func (s *authService) issueTokens(user *models.User) (*TokenResponse, error) {
	now := s.clock.Now()
	access, expiresAt, err := s.signToken(user, TokenTypeAccess, now, s.cfg.TokenTTL)
	if err != nil {
		return nil, err
	}
	refresh, _, err := s.signToken(user, TokenTypeRefresh, now, s.cfg.RefreshTTL)
	if err != nil {
		return nil, err
	}

	return &TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
		ExpiresAt:    expiresAt,
		User:         user,
	}, nil
}

func (s *authService) signToken(user *models.User, tokenType string, now time.Time, ttl time.Duration) (string, time.Time, error) {
	expiresAt := now.Add(ttl)
	claims := Claims{
		OrganizationID: user.OrganizationID.Hex(),
		Role:           user.Role,
		Type:           tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID.Hex(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// ParseToken verifies an HS256 token and checks that it is of the expected type.
// Every failure is reported as ErrUnauthorized.
func ParseToken(secret, tokenString, expectedType string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, ErrUnauthorized
	}
	if claims.Type != expectedType {
		return nil, ErrUnauthorized
	}
	return claims, nil
}

func (c *Claims) Principal() (models.Principal, error) {
	userID, err := primitive.ObjectIDFromHex(c.Subject)
	if err != nil {
		return models.Principal{}, ErrUnauthorized
	}
	orgID, err := primitive.ObjectIDFromHex(c.OrganizationID)
	if err != nil {
		return models.Principal{}, ErrUnauthorized
	}
	return models.Principal{UserID: userID, OrganizationID: orgID, Role: c.Role}, nil
}
