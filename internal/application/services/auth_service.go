package services

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/foodcart/core/internal/domain/entities"
	"github.com/foodcart/core/internal/infrastructure/config"
	"github.com/foodcart/core/internal/infrastructure/logger"
	"github.com/foodcart/core/internal/ports"
)

// AuthService handles registration, login and token validation
type AuthService struct {
	userRepo   ports.UserRepository
	cartRepo   ports.CartRepository
	jwtConfig  config.JWTConfig
	bcryptCost int
	logger     *logger.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo ports.UserRepository, cartRepo ports.CartRepository, jwtConfig config.JWTConfig, bcryptCost int, logger *logger.Logger) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		cartRepo:   cartRepo,
		jwtConfig:  jwtConfig,
		bcryptCost: bcryptCost,
		logger:     logger.WithComponent("auth_service"),
	}
}

// Register creates a new user account with an empty cart. The user and
// cart documents are written separately; a failure between the two leaves
// the user without a stored cart, which reads as empty.
func (s *AuthService) Register(ctx context.Context, req ports.RegisterRequest) error {
	hashedPassword, err := bcrypt.GenerateFromPassword(prehash(req.Password), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user := &entities.User{
		Username: req.Username,
		Password: string(hashedPassword),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	if _, err := s.cartRepo.Replace(ctx, user.Username, entities.NewCart()); err != nil {
		return fmt.Errorf("failed to create cart: %w", err)
	}

	s.logger.LogUserAction(user.Username, "register", nil)
	return nil
}

// Login authenticates a user and returns a signed access token
func (s *AuthService) Login(ctx context.Context, req ports.LoginRequest) (*ports.AuthResponse, error) {
	user, err := s.userRepo.GetByUsername(ctx, req.Username)
	if errors.Is(err, entities.ErrUserNotFound) {
		s.logger.Warnw("Login attempt with unknown username", "username", req.Username)
		return nil, entities.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if !passwordMatches(user, req.Password) {
		s.logger.Warnw("Login attempt with invalid password", "username", req.Username)
		return nil, entities.ErrInvalidCredentials
	}

	token, err := s.generateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	s.logger.LogUserAction(user.Username, "login", nil)

	return &ports.AuthResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresIn: int64(s.jwtConfig.ExpiresIn.Seconds()),
	}, nil
}

// ValidateToken validates a JWT token and returns claims
func (s *AuthService) ValidateToken(tokenString string) (*ports.Claims, error) {
	claims := &ports.Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtConfig.Secret), nil
	}, jwt.WithIssuer(s.jwtConfig.Issuer))

	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	if !token.Valid || claims.Username == "" {
		return nil, fmt.Errorf("invalid token claims")
	}

	return claims, nil
}

func (s *AuthService) generateAccessToken(user *entities.User) (string, error) {
	now := time.Now()
	claims := &ports.Claims{
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtConfig.ExpiresIn)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    s.jwtConfig.Issuer,
			Subject:   user.Username,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.jwtConfig.Secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// prehash digests the password before bcrypt, which ignores input past 72
// bytes and rejects longer input outright. The base64 SHA-256 digest is 44
// bytes for any password length.
func prehash(password string) []byte {
	sum := sha256.Sum256([]byte(password))
	out := make([]byte, base64.StdEncoding.EncodedLen(len(sum)))
	base64.StdEncoding.Encode(out, sum[:])
	return out
}

// passwordMatches compares against a bcrypt hash, or byte-for-byte for
// legacy records that were stored in plain text.
func passwordMatches(user *entities.User, password string) bool {
	if user.HasHashedPassword() {
		return bcrypt.CompareHashAndPassword([]byte(user.Password), prehash(password)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(user.Password), []byte(password)) == 1
}
