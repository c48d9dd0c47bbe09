package services

import (
	"context"
	"testing"

	"golang.org/x/oauth2"

	"jobcard_portal/internal/models"
	"jobcard_portal/internal/testutil"
)

// fixture wires every service onto one in-memory dataset.
type fixture struct {
	db       *testutil.DB
	sessions *testutil.Sessions
	access   *AccessService
	projects *ProjectService
	wbs      *WbsService
	jobcards *JobcardService
	hse      *HseService
	admin    *AdminService

	super   *models.User
	admin1  *models.User
	manager *models.User
	member  *models.User
	outside *models.User

	project *models.Project
	item    *models.ProjectItem
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB()

	f := &fixture{db: db, sessions: testutil.NewSessions()}
	f.access = NewAccessService(db.Projects(), db.Members())
	f.projects = NewProjectService(db.Projects(), db.Items(), db.Members(), db.Jobcards(), f.access)
	f.wbs = NewWbsService(db.Items(), db.Wbs(), f.access)
	f.jobcards = NewJobcardService(db.Jobcards(), db.Wbs(), db.Hse(), f.wbs, f.access)
	f.hse = NewHseService(db.Hse(), db.Jobcards(), f.access)
	f.admin = NewAdminService(db.Users(), db.Projects(), db.Members())

	f.super = testutil.SeedUser(t, db, "root@example.com", true)
	f.admin1 = testutil.SeedUser(t, db, "admin@example.com", false)
	f.manager = testutil.SeedUser(t, db, "manager@example.com", false)
	f.member = testutil.SeedUser(t, db, "member@example.com", false)
	f.outside = testutil.SeedUser(t, db, "outside@example.com", false)

	f.project = testutil.SeedProject(t, db, "P-1042", map[*models.User]models.Role{
		f.admin1:  models.RoleAdmin,
		f.manager: models.RoleManager,
		f.member:  models.RoleMember,
	})
	f.item = testutil.SeedItem(t, db, f.project.Number, 1)
	return f
}

// stubIdentity returns a fixed identity for any token.
type stubIdentity struct {
	identity *Identity
	err      error
}

func (s stubIdentity) FetchIdentity(ctx context.Context, token *oauth2.Token) (*Identity, error) {
	return s.identity, s.err
}
