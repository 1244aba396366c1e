package service_test

import (
	"testing"
	"time"

	"github.com/quorumvault/custodian/service"

	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/assert"
)

// signClaims builds an arbitrary token so tests can craft payloads the
// service itself would never issue.
func signClaims(t *testing.T, secret string, claims *service.Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	assert.NoError(t, err)
	return token
}

func TestGenerateTokenCarriesAdminRole(t *testing.T) {
	authService := service.NewAuthService("secret-key-for-testing")

	token, err := authService.GenerateToken()
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := authService.ValidateToken(token)
	assert.NoError(t, err)
	assert.Equal(t, service.AdminRole, claims.Role)
	assert.Greater(t, claims.ExpiresAt, time.Now().Unix())
}

func TestValidateToken(t *testing.T) {
	secret := "test-secret-key"

	future := jwt.StandardClaims{ExpiresAt: time.Now().Add(time.Hour).Unix()}

	testCases := []struct {
		name        string
		setupToken  func() string
		shouldError bool
	}{
		{
			name: "Issued token",
			setupToken: func() string {
				token, _ := service.NewAuthService(secret).GenerateToken()
				return token
			},
		},
		{
			name: "Expired token",
			setupToken: func() string {
				return signClaims(t, secret, &service.Claims{
					Role:           service.AdminRole,
					StandardClaims: jwt.StandardClaims{ExpiresAt: time.Now().Add(-time.Hour).Unix()},
				})
			},
			shouldError: true,
		},
		{
			name: "Well-signed token without the admin role",
			setupToken: func() string {
				return signClaims(t, secret, &service.Claims{StandardClaims: future})
			},
			shouldError: true,
		},
		{
			name: "Well-signed token with a different role",
			setupToken: func() string {
				return signClaims(t, secret, &service.Claims{Role: "auditor", StandardClaims: future})
			},
			shouldError: true,
		},
		{
			name: "Token signed with another secret",
			setupToken: func() string {
				token, _ := service.NewAuthService("wrong-secret-key").GenerateToken()
				return token
			},
			shouldError: true,
		},
		{
			name: "Malformed token",
			setupToken: func() string {
				return "not-a-jwt-token"
			},
			shouldError: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			authService := service.NewAuthService(secret)
			claims, err := authService.ValidateToken(tc.setupToken())

			if tc.shouldError {
				assert.Error(t, err)
				assert.Nil(t, claims)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, service.AdminRole, claims.Role)
			}
		})
	}
}

func TestRefreshToken(t *testing.T) {
	secret := "refresh-secret"
	authService := service.NewAuthService(secret)

	token, err := authService.GenerateToken()
	assert.NoError(t, err)

	refreshed, err := authService.RefreshToken(token)
	assert.NoError(t, err)
	assert.NotEmpty(t, refreshed)

	claims, err := authService.ValidateToken(refreshed)
	assert.NoError(t, err)
	assert.Equal(t, service.AdminRole, claims.Role)

	// a roleless token must not be refreshable into an admin token
	roleless := signClaims(t, secret, &service.Claims{
		StandardClaims: jwt.StandardClaims{ExpiresAt: time.Now().Add(time.Hour).Unix()},
	})
	_, err = authService.RefreshToken(roleless)
	assert.Error(t, err)

	_, err = authService.RefreshToken("garbage")
	assert.Error(t, err)
}
