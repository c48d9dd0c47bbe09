package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobcard_portal/internal/apperr"
	"jobcard_portal/internal/models"
)

func TestAccessRequire(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		user    *models.User
		min     models.Role
		wantErr error
		role    models.Role
	}{
		{"member reads", f.member, models.RoleMember, nil, models.RoleMember},
		{"member cannot manage", f.member, models.RoleManager, apperr.ErrForbidden, ""},
		{"manager manages", f.manager, models.RoleManager, nil, models.RoleManager},
		{"manager cannot administer", f.manager, models.RoleAdmin, apperr.ErrForbidden, ""},
		{"admin administers", f.admin1, models.RoleAdmin, nil, models.RoleAdmin},
		{"superuser acts as admin", f.super, models.RoleAdmin, nil, models.RoleAdmin},
		{"non-member sees nothing", f.outside, models.RoleMember, apperr.ErrNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			project, role, err := f.access.Require(ctx, tt.user, "P-1042", tt.min)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "P-1042", project.Number)
			assert.Equal(t, tt.role, role)
		})
	}
}

func TestAccessRequireNormalizesNumber(t *testing.T) {
	f := newFixture(t)

	project, _, err := f.access.Require(context.Background(), f.member, " p-1042 ", models.RoleMember)
	require.NoError(t, err)
	assert.Equal(t, "P-1042", project.Number)
}

func TestAccessRequireUnknownProject(t *testing.T) {
	f := newFixture(t)

	_, _, err := f.access.Require(context.Background(), f.super, "P-0000", models.RoleMember)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestRequireSuperuser(t *testing.T) {
	assert.NoError(t, RequireSuperuser(&models.User{IsSuperuser: true}))
	assert.ErrorIs(t, RequireSuperuser(&models.User{}), apperr.ErrForbidden)
	assert.ErrorIs(t, RequireSuperuser(nil), apperr.ErrForbidden)
}
