package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/pageza/forkful/backend/internal/logging"
	"github.com/pageza/forkful/backend/internal/metrics"
	"github.com/pageza/forkful/backend/internal/models"
	"github.com/pageza/forkful/backend/internal/types"
	"github.com/pageza/forkful/backend/internal/validation"
)

const minPasswordLength = 8

type AuthService struct {
	db         *gorm.DB
	jwtSecret  []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewAuthService(db *gorm.DB, jwtSecret string, accessTTL, refreshTTL time.Duration) *AuthService {
	return &AuthService{
		db:         db,
		jwtSecret:  []byte(jwtSecret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// Register validates req and creates the account
func (s *AuthService) Register(ctx context.Context, req *types.RegisterRequest) (*models.User, error) {
	db := s.db.WithContext(ctx)
	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(req.Email)

	verr := &ValidationError{}
	if err := validation.Var(username, "required,max=150,username"); err != nil {
		verr.Add("username", usernameMessage(username))
	} else if taken, err := exists(db.Model(&models.User{}).Where("username = ?", username)); err != nil {
		return nil, err
	} else if taken {
		verr.Add("username", "A user with that username already exists.")
	}

	if err := validation.Var(email, "required,email,max=254"); err != nil {
		verr.Add("email", "Enter a valid email address.")
	} else if taken, err := exists(db.Model(&models.User{}).Where("LOWER(email) = LOWER(?)", email)); err != nil {
		return nil, err
	} else if taken {
		verr.Add("email", "A user with this email already exists.")
	}

	for _, msg := range passwordProblems(req.Password, username) {
		verr.Add("password", msg)
	}
	if req.Password != req.Password2 {
		verr.Add("password", "Password fields didn't match.")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hashedPassword),
		Bio:          req.Bio,
	}
	if err := db.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fieldError("username", "A user with that username already exists.")
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	metrics.UsersRegistered.Inc()
	logging.Ctx(ctx).Info().Str("user_id", user.ID.String()).Msg("user registered")
	return user, nil
}

// Login checks credentials by username or email and issues an access/refresh pair
func (s *AuthService) Login(ctx context.Context, identifier, password string) (*types.TokenPair, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, fieldError("username", "This field is required.")
	}

	var user models.User
	err := s.db.WithContext(ctx).
		Where("username = ? OR LOWER(email) = LOWER(?)", identifier, identifier).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, authFailed("No active account found with the given credentials")
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, authFailed("No active account found with the given credentials")
	}

	access, err := s.GenerateToken(&user, types.AccessToken)
	if err != nil {
		return nil, err
	}
	refresh, err := s.GenerateToken(&user, types.RefreshToken)
	if err != nil {
		return nil, err
	}

	return &types.TokenPair{
		Access:  access,
		Refresh: refresh,
		User: types.UserSummary{
			ID:       user.ID,
			Username: user.Username,
			Email:    user.Email,
			Bio:      user.Bio,
		},
	}, nil
}

// Refresh exchanges a refresh token for a new access token
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.ValidateToken(refreshToken)
	if err != nil || claims.TokenType != types.RefreshToken {
		return "", authFailed("Token is invalid or expired")
	}

	user, err := s.GetUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", authFailed("User not found")
		}
		return "", err
	}

	return s.GenerateToken(user, types.AccessToken)
}

// GenerateToken signs a token of the given type for user
func (s *AuthService) GenerateToken(user *models.User, tokenType string) (string, error) {
	ttl := s.accessTTL
	if tokenType == types.RefreshToken {
		ttl = s.refreshTTL
	}

	now := time.Now()
	claims := &types.TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID:    user.ID,
		Username:  user.Username,
		Email:     user.Email,
		TokenType: tokenType,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses and verifies a token of either type
func (s *AuthService) ValidateToken(tokenString string) (*types.TokenClaims, error) {
	claims := &types.TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.UserID == uuid.Nil {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

// UserExists reports whether the account behind a token is still present
func (s *AuthService) UserExists(ctx context.Context, userID uuid.UUID) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to look up user: %w", err)
	}
	return count > 0, nil
}

func (s *AuthService) GetUserByID(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("User not found.")
		}
		return nil, err
	}
	return &user, nil
}

func usernameMessage(username string) string {
	switch {
	case username == "":
		return "This field is required."
	case len(username) > 150:
		return "Ensure this field has no more than 150 characters."
	default:
		return "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters."
	}
}

func passwordProblems(password, username string) []string {
	var out []string
	if len(password) < minPasswordLength {
		out = append(out, fmt.Sprintf("This password is too short. It must contain at least %d characters.", minPasswordLength))
	}
	if password != "" && strings.IndexFunc(password, func(r rune) bool { return !unicode.IsDigit(r) }) == -1 {
		out = append(out, "This password is entirely numeric.")
	}
	if username != "" && strings.EqualFold(password, username) {
		out = append(out, "The password is too similar to the username.")
	}
	return out
}

func exists(q *gorm.DB) (bool, error) {
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
