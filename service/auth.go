package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt"
)

// AdminRole is the role claim required of every token gating the admin
// surface (registry entries, oracle feed registration, statement archival).
const AdminRole = "custody-admin"

const tokenLifetime = 7 * 24 * time.Hour

// Claims is the admin token payload. Tokens without the admin role are
// rejected even when the signature verifies.
type Claims struct {
	Role string `json:"role"`
	jwt.StandardClaims
}

// AuthService issues and validates the bearer tokens that gate the admin
// endpoints.
type AuthService struct {
	JWTSecret []byte
}

func NewAuthService(secret string) *AuthService {
	return &AuthService{
		JWTSecret: []byte(secret),
	}
}

// GenerateToken issues a signed token carrying the admin role.
func (a *AuthService) GenerateToken() (string, error) {
	now := time.Now()
	claims := &Claims{
		Role: AdminRole,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: now.Add(tokenLifetime).Unix(),
			IssuedAt:  now.Unix(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.JWTSecret)
}

// ValidateToken verifies the signature, the expiry, and the admin role.
func (a *AuthService) ValidateToken(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return a.JWTSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("invalid or expired token")
	}
	if claims.Role != AdminRole {
		return nil, errors.New("token lacks the admin role")
	}
	return claims, nil
}

// RefreshToken reissues a token for a still-valid admin token.
func (a *AuthService) RefreshToken(oldToken string) (string, error) {
	if _, err := a.ValidateToken(oldToken); err != nil {
		return "", err
	}
	return a.GenerateToken()
}
