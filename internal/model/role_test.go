package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoleAllowsMembership(t *testing.T) {
	granted := []string{PermRequestView, PermRequestCreate, PermQuotationView}

	assert.True(t, RoleAllows(RoleRequester, granted, PermRequestCreate))
	assert.False(t, RoleAllows(RoleRequester, granted, PermQuotationFinal))
	assert.False(t, RoleAllows(RoleRequester, nil, PermRequestView))
}

func TestRoleAllowsDeniesUnauthenticated(t *testing.T) {
	assert.False(t, RoleAllows("", []string{PermRequestView}, PermRequestView))
}

func TestRoleAllowsAdminOverride(t *testing.T) {
	// Admin passes even against an explicitly emptied permission set
	assert.True(t, RoleAllows(RoleAdmin, nil, PermSettingsEdit))
	assert.True(t, RoleAllows(RoleAdmin, []string{}, PermQuotationFinal))
}

func TestRequesterDefaultsCannotFinalize(t *testing.T) {
	// Default requester grant, as seeded
	requester := []string{
		PermDashboardView, PermRequestView, PermRequestCreate, PermRequestEdit,
		PermQuotationView, PermCompletedView,
	}
	assert.False(t, RoleAllows(RoleRequester, requester, PermQuotationFinal))
	assert.True(t, RoleAllows(RoleRequester, requester, PermRequestEdit))
}
