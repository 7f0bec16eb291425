package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/incial/workhub-api/internal/auth"
	"github.com/incial/workhub-api/internal/domain"
)

func TestUserContext_RoundTrip(t *testing.T) {
	userCtx := &auth.UserContext{
		DisplayName: "Alice",
		Email:       "alice@incial.io",
		Roles:       []domain.UserRoleType{domain.RoleExecutive},
	}

	ctx := auth.WithUserContext(context.Background(), userCtx)
	found, ok := auth.FromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, userCtx, found)

	_, ok = auth.FromContext(context.Background())
	assert.False(t, ok)
}

func TestUserContext_RoleChecks(t *testing.T) {
	exec := &auth.UserContext{Roles: []domain.UserRoleType{domain.RoleExecutive}}
	admin := &auth.UserContext{Roles: []domain.UserRoleType{domain.RoleAdmin}}
	super := &auth.UserContext{Roles: []domain.UserRoleType{domain.RoleSuperAdmin}}

	assert.True(t, exec.HasRole(domain.RoleExecutive))
	assert.False(t, exec.HasRole(domain.RoleAccounts))
	assert.True(t, exec.HasAnyRole(domain.RoleAccounts, domain.RoleExecutive))
	assert.False(t, exec.IsAdmin())

	assert.True(t, admin.IsAdmin())
	assert.False(t, admin.IsSuperAdmin())

	assert.True(t, super.IsAdmin())
	assert.True(t, super.IsSuperAdmin())
}

func TestUserContext_PrimaryRole(t *testing.T) {
	u := &auth.UserContext{Roles: []domain.UserRoleType{domain.RoleAccounts, domain.RoleEmployee}}
	assert.Equal(t, domain.RoleAccounts, u.PrimaryRole())

	// No roles on the token falls back to the employee role
	empty := &auth.UserContext{}
	assert.Equal(t, domain.RoleEmployee, empty.PrimaryRole())
}

func TestUserContext_GetDisplayNameInitials(t *testing.T) {
	tests := []struct {
		name     string
		expected string
	}{
		{"John Doe", "JD"},
		{"Alice", "A"},
		{"mary ann jacob", "MAJ"},
		{"", ""},
	}

	for _, tt := range tests {
		u := &auth.UserContext{DisplayName: tt.name}
		assert.Equal(t, tt.expected, u.GetDisplayNameInitials())
	}
}
