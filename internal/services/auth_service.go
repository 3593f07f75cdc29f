package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/appliance-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/appliance-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/appliance-backend/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired refresh token")
	ErrUserNotFound       = errors.New("user not found")
)

// uniqueViolation is the PostgreSQL SQLSTATE for duplicate keys.
const uniqueViolation = "23505"

// AuthService issues and rotates the bearer tokens that identify callers.
// Appliance code never looks at tokens; it only receives the resolved user id.
type AuthService struct {
	db  *gorm.DB
	cfg *config.Config
	now func() time.Time
}

func NewAuthService(db *gorm.DB, cfg *config.Config) *AuthService {
	return &AuthService{db: db, cfg: cfg, now: time.Now}
}

func (s *AuthService) Signup(ctx context.Context, req *dto.SignupRequest) (*dto.AuthResponse, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	var existing models.User
	if err := s.db.WithContext(ctx).Where("email = ?", req.Email).Take(&existing).Error; err == nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = strings.SplitN(req.Email, "@", 2)[0]
	}

	user := models.User{
		ID:       uuid.New(),
		Email:    req.Email,
		Name:     name,
		Password: string(hash),
		Role:     "user",
	}

	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return s.generateTokenPair(ctx, &user)
}

func (s *AuthService) Signin(ctx context.Context, req *dto.SigninRequest) (*dto.AuthResponse, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	var user models.User
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if err := s.db.WithContext(ctx).Where("email = ?", email).Take(&user).Error; err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.generateTokenPair(ctx, &user)
}

// Refresh exchanges a refresh token for a new pair. The presented token is
// revoked whether or not the exchange succeeds.
func (s *AuthService) Refresh(ctx context.Context, req *dto.RefreshRequest) (*dto.AuthResponse, error) {
	if req.RefreshToken == "" {
		return nil, ErrInvalidToken
	}
	tokenHash := hashToken(req.RefreshToken)
	db := s.db.WithContext(ctx)

	var stored models.RefreshToken
	if err := db.Where("token_hash = ? AND revoked = ?", tokenHash, false).Take(&stored).Error; err != nil {
		return nil, ErrInvalidToken
	}

	// Only the request that flips revoked may rotate the token.
	res := db.Model(&models.RefreshToken{}).
		Where("id = ? AND revoked = ?", stored.ID, false).
		Update("revoked", true)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to revoke refresh token: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrInvalidToken
	}
	if s.now().After(stored.ExpiresAt) {
		return nil, ErrInvalidToken
	}

	var user models.User
	if err := db.Where("id = ?", stored.UserID).Take(&user).Error; err != nil {
		return nil, ErrInvalidToken
	}

	return s.generateTokenPair(ctx, &user)
}

// Signout revokes one refresh token, or every token of the user when none is
// given.
func (s *AuthService) Signout(ctx context.Context, userID uuid.UUID, req *dto.SignoutRequest) error {
	q := s.db.WithContext(ctx).Model(&models.RefreshToken{}).Where("user_id = ?", userID)
	if req != nil && req.RefreshToken != "" {
		q = q.Where("token_hash = ?", hashToken(req.RefreshToken))
	}
	return q.Update("revoked", true).Error
}

func (s *AuthService) GetUser(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("id = ?", userID).Take(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &dto.UserResponse{ID: user.ID, Email: user.Email, Name: user.Name}, nil
}

func (s *AuthService) generateTokenPair(ctx context.Context, user *models.User) (*dto.AuthResponse, error) {
	accessToken, expiresAt, err := s.generateAccessToken(user)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.generateRefreshToken(ctx, user)
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    expiresAt.Unix(),
		User: dto.UserResponse{
			ID:    user.ID,
			Email: user.Email,
			Name:  user.Name,
		},
	}, nil
}

func (s *AuthService) generateAccessToken(user *models.User) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.cfg.JWTAccessExpiry)
	claims := jwt.MapClaims{
		"sub":   user.ID.String(),
		"email": user.Email,
		"name":  user.Name,
		"iat":   now.Unix(),
		"exp":   expiresAt.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

func (s *AuthService) generateRefreshToken(ctx context.Context, user *models.User) (string, error) {
	rawBytes := make([]byte, 32)
	if _, err := rand.Read(rawBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	rawToken := base64.URLEncoding.EncodeToString(rawBytes)

	record := models.RefreshToken{
		ID:        uuid.New(),
		UserID:    user.ID,
		TokenHash: hashToken(rawToken),
		ExpiresAt: s.now().Add(s.cfg.JWTRefreshExpiry),
	}

	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return "", fmt.Errorf("failed to store refresh token: %w", err)
	}

	return rawToken, nil
}

func hashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return fmt.Sprintf("%x", h)
}
