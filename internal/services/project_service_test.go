package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobcard_portal/internal/apperr"
	"jobcard_portal/internal/models"
	"jobcard_portal/internal/testutil"
)

func TestListForUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	testutil.SeedProject(t, f.db, "P-2000", map[*models.User]models.Role{f.manager: models.RoleAdmin})

	mine, err := f.projects.ListForUser(ctx, f.manager)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, models.RoleManager, mine[0].Role)
	assert.Equal(t, models.RoleAdmin, mine[1].Role)

	none, err := f.projects.ListForUser(ctx, f.outside)
	require.NoError(t, err)
	assert.Empty(t, none)

	all, err := f.projects.ListForUser(ctx, f.super)
	require.NoError(t, err)
	require.Len(t, all, 2)
	for _, p := range all {
		assert.Equal(t, models.RoleAdmin, p.Role)
	}
}

func TestOverview(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	root := testutil.SeedNode(t, f.db, f.item, nil, "1")
	testutil.SeedJobcard(t, f.db, root, "a", f.member.ID)
	testutil.SeedJobcard(t, f.db, root, "b", f.member.ID)

	overview, err := f.projects.Overview(ctx, f.member, "P-1042")
	require.NoError(t, err)

	assert.Equal(t, models.RoleMember, overview.Role)
	assert.Len(t, overview.Items, 1)
	assert.Len(t, overview.Members, 3)
	assert.Equal(t, 2, overview.JobcardsByStatus[models.StatusOpen])

	_, err = f.projects.Overview(ctx, f.outside, "P-1042")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestCreateProject(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	project, err := f.projects.Create(ctx, f.super, CreateProjectRequest{Number: " p-7 ", Description: "Tank farm"})
	require.NoError(t, err)
	assert.Equal(t, "P-7", project.Number)

	_, err = f.projects.Create(ctx, f.super, CreateProjectRequest{Number: "P-7"})
	assert.ErrorIs(t, err, apperr.ErrConflict)

	_, err = f.projects.Create(ctx, f.super, CreateProjectRequest{Number: "P 8"})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = f.projects.Create(ctx, f.admin1, CreateProjectRequest{Number: "P-9"})
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestUpdateProjectRequiresAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	desc := "Renamed"

	_, err := f.projects.Update(ctx, f.manager, "P-1042", UpdateProjectRequest{Description: &desc})
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	project, err := f.projects.Update(ctx, f.admin1, "P-1042", UpdateProjectRequest{Description: &desc})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", project.Description)
}

func TestDeleteProjectCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	root := testutil.SeedNode(t, f.db, f.item, nil, "1")
	testutil.SeedJobcard(t, f.db, root, "a", f.member.ID)

	assert.ErrorIs(t, f.projects.Delete(ctx, f.admin1, "P-1042"), apperr.ErrForbidden)
	require.NoError(t, f.projects.Delete(ctx, f.super, "p-1042"))

	_, err := f.projects.Overview(ctx, f.super, "P-1042")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	role, err := f.db.Members().GetRole(ctx, "P-1042", f.member.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleNone, role)
	node, err := f.db.Wbs().Get(ctx, root.ID)
	require.NoError(t, err)
	assert.Nil(t, node)
}

func TestItems(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.projects.CreateItem(ctx, f.member, "P-1042", ItemRequest{Description: "Pumps"})
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	item, err := f.projects.CreateItem(ctx, f.manager, "P-1042", ItemRequest{Description: " Pumps "})
	require.NoError(t, err)
	assert.Equal(t, 2, item.Sequence)
	assert.Equal(t, "Pumps", item.Description)

	_, err = f.projects.CreateItem(ctx, f.manager, "P-1042", ItemRequest{Sequence: 2})
	assert.ErrorIs(t, err, apperr.ErrConflict)

	updated, err := f.projects.UpdateItem(ctx, f.manager, "P-1042", 2, ItemRequest{Description: "Valves"})
	require.NoError(t, err)
	assert.Equal(t, "Valves", updated.Description)

	_, err = f.projects.UpdateItem(ctx, f.manager, "P-1042", 99, ItemRequest{Description: "x"})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	assert.ErrorIs(t, f.projects.DeleteItem(ctx, f.manager, "P-1042", 2), apperr.ErrForbidden)
	assert.NoError(t, f.projects.DeleteItem(ctx, f.admin1, "P-1042", 2))
}
