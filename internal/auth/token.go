package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/kavya-apps/userhub/internal/models"
)

var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("invalid token")
)

// Claims carries the identity attributes embedded in a signed token.
// Register and login both issue the full set.
type Claims struct {
	jwt.RegisteredClaims
	UserID   string  `json:"userId"`
	Email    string  `json:"email"`
	Username string  `json:"username"`
	Role     string  `json:"role,omitempty"`
	Phone    int64   `json:"phone,omitempty"`
	Image    *string `json:"image,omitempty"`
}

// TokenService issues and verifies signed identity tokens. The signing
// secret and validity window come from configuration at construction.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenService(secret string, ttl time.Duration) *TokenService {
	return &TokenService{secret: []byte(secret), ttl: ttl}
}

// Issue signs a token for the user with an absolute expiry of now + TTL.
func (s *TokenService) Issue(u *models.User) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		UserID:   u.ID.Hex(),
		Email:    u.Email,
		Username: u.Username,
		Role:     u.Role,
		Phone:    u.Phone,
		Image:    u.Image,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify parses the token and returns its claims. Expired tokens yield
// ErrTokenExpired; anything else wrong with the token yields ErrTokenInvalid.
func (s *TokenService) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	if !token.Valid {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
