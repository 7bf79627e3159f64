package services

import (
	"errors"
	"time"

	"marketplace/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultTokenTTL is how long an issued bearer token stays valid.
const DefaultTokenTTL = 7 * 24 * time.Hour

type AuthService struct {
	secretKey []byte
	ttl       time.Duration
	now       func() time.Time
	logger    zerolog.Logger
}

// Claims binds a user id and the role it had at issue time. The role is a
// hint only; requests re-read it from the store.
type Claims struct {
	UserID string      `json:"_id"`
	Role   models.Role `json:"role"`
	jwt.RegisteredClaims
}

func NewAuthService(secret string, ttl time.Duration, logger zerolog.Logger) *AuthService {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &AuthService{
		secretKey: []byte(secret),
		ttl:       ttl,
		now:       time.Now,
		logger:    logger,
	}
}

func (s *AuthService) IssueToken(userID primitive.ObjectID, role models.Role) (string, error) {
	now := s.now()
	claims := &Claims{
		UserID: userID.Hex(),
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secretKey)
	if err != nil {
		s.logger.Error().Err(err).Msg("Error generating token")
		return "", err
	}
	return tokenString, nil
}

// ParseToken verifies signature and expiry and returns the bound user id.
func (s *AuthService) ParseToken(tokenString string) (primitive.ObjectID, *Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return s.secretKey, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return primitive.NilObjectID, nil, Auth("Token expired")
		}
		return primitive.NilObjectID, nil, Auth("Request is not authorized")
	}

	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return primitive.NilObjectID, nil, Auth("Request is not authorized")
	}
	return id, claims, nil
}
