package auth_test

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/incial/workhub-api/internal/auth"
	"github.com/incial/workhub-api/internal/config"
	"github.com/incial/workhub-api/internal/domain"
)

func newTokenManager(secret, issuer string, ttlHours int) *auth.TokenManager {
	return auth.NewTokenManager(&config.AuthConfig{
		JWTSecret:     secret,
		Issuer:        issuer,
		TokenTTLHours: ttlHours,
	})
}

func TestTokenManager_IssueAndValidate(t *testing.T) {
	m := newTokenManager("test-secret", "workhub-api", 1)
	user := &domain.User{
		BaseModel: domain.BaseModel{ID: uuid.New()},
		Name:      "Alice",
		Email:     "alice@incial.io",
		Role:      domain.RoleExecutive,
	}

	token, err := m.IssueToken(user)
	require.NoError(t, err)

	userCtx, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userCtx.UserID)
	assert.Equal(t, "Alice", userCtx.DisplayName)
	assert.Equal(t, "alice@incial.io", userCtx.Email)
	assert.Equal(t, []domain.UserRoleType{domain.RoleExecutive}, userCtx.Roles)
}

func TestTokenManager_RejectsWrongSecret(t *testing.T) {
	issuer := newTokenManager("secret-a", "workhub-api", 1)
	validator := newTokenManager("secret-b", "workhub-api", 1)

	token, err := issuer.IssueToken(&domain.User{Email: "alice@incial.io", Role: domain.RoleExecutive})
	require.NoError(t, err)

	_, err = validator.ValidateToken(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestTokenManager_RejectsExpiredToken(t *testing.T) {
	m := newTokenManager("test-secret", "workhub-api", -1)

	token, err := m.IssueToken(&domain.User{Email: "alice@incial.io", Role: domain.RoleExecutive})
	require.NoError(t, err)

	_, err = m.ValidateToken(token)
	assert.ErrorIs(t, err, auth.ErrExpiredToken)
}

func TestTokenManager_RejectsWrongIssuer(t *testing.T) {
	issuer := newTokenManager("test-secret", "someone-else", 1)
	validator := newTokenManager("test-secret", "workhub-api", 1)

	token, err := issuer.IssueToken(&domain.User{Email: "alice@incial.io", Role: domain.RoleExecutive})
	require.NoError(t, err)

	_, err = validator.ValidateToken(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestTokenManager_RejectsGarbage(t *testing.T) {
	m := newTokenManager("test-secret", "workhub-api", 1)

	_, err := m.ValidateToken("not.a.token")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestExtractRoles(t *testing.T) {
	tests := []struct {
		name     string
		claims   jwt.MapClaims
		expected []domain.UserRoleType
	}{
		{
			name: "array of roles",
			claims: jwt.MapClaims{
				"roles": []interface{}{"ROLE_ADMIN", "ROLE_EXECUTIVE"},
			},
			expected: []domain.UserRoleType{domain.RoleAdmin, domain.RoleExecutive},
		},
		{
			name: "single role as string",
			claims: jwt.MapClaims{
				"role": "ROLE_ACCOUNTS",
			},
			expected: []domain.UserRoleType{domain.RoleAccounts},
		},
		{
			name:     "no roles",
			claims:   jwt.MapClaims{},
			expected: []domain.UserRoleType{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ElementsMatch(t, tt.expected, auth.ExtractRoles(tt.claims))
		})
	}
}
