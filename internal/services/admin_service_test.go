package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobcard_portal/internal/apperr"
	"jobcard_portal/internal/models"
)

func TestSetRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	member, err := f.admin.SetRole(ctx, f.super, SetRoleRequest{ProjectNumber: "p-1042", UserID: f.outside.ID, Role: "manager"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleManager, member.Role)
	assert.Equal(t, "outside@example.com", member.Email)

	role, err := f.access.RoleFor(ctx, f.outside, "P-1042")
	require.NoError(t, err)
	assert.Equal(t, models.RoleManager, role)

	// Changing a role replaces it.
	_, err = f.admin.SetRole(ctx, f.super, SetRoleRequest{ProjectNumber: "P-1042", UserID: f.outside.ID, Role: "member"})
	require.NoError(t, err)
	role, err = f.access.RoleFor(ctx, f.outside, "P-1042")
	require.NoError(t, err)
	assert.Equal(t, models.RoleMember, role)
}

func TestSetRoleNoneRemovesMembership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.admin.SetRole(ctx, f.super, SetRoleRequest{ProjectNumber: "P-1042", UserID: f.member.ID, Role: "none"})
	require.NoError(t, err)

	members, err := f.db.Members().ListByProject(ctx, "P-1042")
	require.NoError(t, err)
	for _, m := range members {
		assert.NotEqual(t, f.member.ID, m.UserID)
	}
	_, _, err = f.access.Require(ctx, f.member, "P-1042", models.RoleMember)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	// Removing an absent membership is a no-op.
	_, err = f.admin.SetRole(ctx, f.super, SetRoleRequest{ProjectNumber: "P-1042", UserID: f.member.ID, Role: "none"})
	assert.NoError(t, err)
}

func TestSetRoleErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		actor   *models.User
		req     SetRoleRequest
		wantErr error
	}{
		{"project admin is not enough", f.admin1, SetRoleRequest{ProjectNumber: "P-1042", UserID: f.outside.ID, Role: "member"}, apperr.ErrForbidden},
		{"unknown role", f.super, SetRoleRequest{ProjectNumber: "P-1042", UserID: f.outside.ID, Role: "owner"}, apperr.ErrValidation},
		{"unknown project", f.super, SetRoleRequest{ProjectNumber: "P-404", UserID: f.outside.ID, Role: "member"}, apperr.ErrNotFound},
		{"unknown user", f.super, SetRoleRequest{ProjectNumber: "P-1042", UserID: uuid.New(), Role: "member"}, apperr.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.admin.SetRole(ctx, tt.actor, tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestMemberships(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.admin.Memberships(ctx, f.admin1)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	matrix, err := f.admin.Memberships(ctx, f.super)
	require.NoError(t, err)
	assert.Len(t, matrix.Users, 5)
	assert.Len(t, matrix.Projects, 1)
	assert.Len(t, matrix.Members, 3)
}

func TestSetSuperuser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.admin.SetSuperuser(ctx, "Member@Example.com", true))
	user, err := f.db.Users().FindByID(ctx, f.member.ID)
	require.NoError(t, err)
	assert.True(t, user.IsSuperuser)

	assert.ErrorIs(t, f.admin.SetSuperuser(ctx, "nobody@example.com", true), apperr.ErrNotFound)

	users, err := f.admin.ListUsers(ctx, f.super)
	require.NoError(t, err)
	assert.Len(t, users, 5)
	_, err = f.admin.ListUsers(ctx, f.member)
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}
