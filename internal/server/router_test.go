package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"jobcard_portal/internal/handlers"
	"jobcard_portal/internal/models"
	"jobcard_portal/internal/routes"
	"jobcard_portal/internal/services"
	"jobcard_portal/internal/testutil"
	"jobcard_portal/internal/utils"
)

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

var (
	testAccessSecret  = []byte("a")
	testRefreshSecret = []byte("r")
)

type apiTest struct {
	t      *testing.T
	router *gin.Engine
	db     *testutil.DB
	auth   *services.AuthService
	tokens map[string]string
	pairs  map[string]*services.TokenPair
	users  map[string]*models.User
}

// newProvider fakes the SSO provider's token and userinfo endpoints. Only
// "good-code" can be exchanged, and it always signs in member@example.com.
func newProvider(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/token":
			if err := r.ParseForm(); err != nil || r.PostForm.Get("code") != "good-code" {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"access_token":"provider-token","token_type":"Bearer","expires_in":3600}`))
		case "/userinfo":
			if r.Header.Get("Authorization") != "Bearer provider-token" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"sub":"sub-member","email":"member@example.com","name":"Site Member"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newAPITest(t *testing.T) *apiTest {
	t.Helper()
	gin.SetMode(gin.TestMode)

	provider := newProvider(t)
	oauthConfig := &oauth2.Config{
		ClientID:     "client",
		ClientSecret: "secret",
		RedirectURL:  "http://localhost/api/v1/auth/sso/callback",
		Endpoint: oauth2.Endpoint{
			AuthURL:   "https://idp.example.com/authorize",
			TokenURL:  provider.URL + "/token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}

	db := testutil.NewDB()
	identity := services.NewOIDCIdentityClient(oauthConfig, provider.URL+"/userinfo")
	auth := services.NewAuthService(db.Users(), testutil.NewSessions(), identity, testAccessSecret, testRefreshSecret, "")
	access := services.NewAccessService(db.Projects(), db.Members())
	wbsService := services.NewWbsService(db.Items(), db.Wbs(), access)

	router := NewRouter(nil, auth, routes.Handlers{
		SSO:     handlers.NewSSOHandler(auth, oauthConfig, false),
		User:    handlers.NewUserHandler(),
		Project: handlers.NewProjectHandler(services.NewProjectService(db.Projects(), db.Items(), db.Members(), db.Jobcards(), access)),
		Wbs:     handlers.NewWbsHandler(wbsService),
		Jobcard: handlers.NewJobcardHandler(services.NewJobcardService(db.Jobcards(), db.Wbs(), db.Hse(), wbsService, access)),
		Hse:     handlers.NewHseHandler(services.NewHseService(db.Hse(), db.Jobcards(), access)),
		Admin:   handlers.NewAdminHandler(services.NewAdminService(db.Users(), db.Projects(), db.Members())),
	})

	a := &apiTest{
		t:      t,
		router: router,
		db:     db,
		auth:   auth,
		tokens: map[string]string{},
		pairs:  map[string]*services.TokenPair{},
		users:  map[string]*models.User{},
	}
	for name, super := range map[string]bool{"root": true, "manager": false, "member": false, "outside": false} {
		user := testutil.SeedUser(t, db, name+"@example.com", super)
		_, pair, err := auth.CompleteSignIn(context.Background(), &services.Identity{Email: user.Email, Name: name})
		require.NoError(t, err)
		a.tokens[name] = pair.AccessToken
		a.pairs[name] = pair
		a.users[name] = user
	}
	testutil.SeedProject(t, db, "P-1042", map[*models.User]models.Role{
		a.users["manager"]: models.RoleManager,
		a.users["member"]:  models.RoleMember,
	})
	testutil.SeedItem(t, db, "P-1042", 1)
	return a
}

// serve runs a hand-built request, for cases the JSON helper cannot express.
func (a *apiTest) serve(req *http.Request) (*httptest.ResponseRecorder, envelope) {
	a.t.Helper()
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		_ = json.Unmarshal(w.Body.Bytes(), &env)
	}
	return w, env
}

func cookieNamed(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func (a *apiTest) do(method, path, as string, body any) (*httptest.ResponseRecorder, envelope) {
	a.t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if as != "" {
		req.Header.Set("Authorization", "Bearer "+a.tokens[as])
	}
	return a.serve(req)
}

func TestHealth(t *testing.T) {
	a := newAPITest(t)
	w, _ := a.do(http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMe(t *testing.T) {
	a := newAPITest(t)

	w, _ := a.do(http.MethodGet, "/api/v1/users/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, env := a.do(http.MethodGet, "/api/v1/users/me", "member", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var me models.User
	require.NoError(t, json.Unmarshal(env.Data, &me))
	assert.Equal(t, "member@example.com", me.Email)
}

func TestProjectVisibility(t *testing.T) {
	a := newAPITest(t)

	w, env := a.do(http.MethodGet, "/api/v1/projects", "member", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []models.ProjectSummary
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list, 1)
	assert.Equal(t, models.RoleMember, list[0].Role)

	w, env = a.do(http.MethodGet, "/api/v1/projects", "outside", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, string(env.Data))

	w, _ = a.do(http.MethodGet, "/api/v1/projects/P-1042", "outside", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = a.do(http.MethodGet, "/api/v1/projects/P-1042", "member", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestProjectCreateIsSuperuserOnly(t *testing.T) {
	a := newAPITest(t)
	body := map[string]string{"number": "P-7", "description": "Tank farm"}

	w, _ := a.do(http.MethodPost, "/api/v1/projects", "manager", body)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = a.do(http.MethodPost, "/api/v1/projects", "root", body)
	assert.Equal(t, http.StatusCreated, w.Code)

	w, _ = a.do(http.MethodPost, "/api/v1/projects", "root", body)
	assert.Equal(t, http.StatusConflict, w.Code)

	w, _ = a.do(http.MethodPost, "/api/v1/projects", "root", `{"number":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestJobcardFlow(t *testing.T) {
	a := newAPITest(t)

	w, _ := a.do(http.MethodPost, "/api/v1/projects/P-1042/items/1/wbs", "member", map[string]any{"code": "1", "name": "Civil"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, env := a.do(http.MethodPost, "/api/v1/projects/P-1042/items/1/wbs", "manager", map[string]any{"code": "1", "name": "Civil"})
	require.Equal(t, http.StatusCreated, w.Code)
	var node models.WbsNode
	require.NoError(t, json.Unmarshal(env.Data, &node))
	assert.Equal(t, "1", node.Path)

	w, env = a.do(http.MethodPost, "/api/v1/projects/P-1042/jobcards", "member", map[string]any{
		"wbs_node_id": node.ID,
		"title":       "Pour slab",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var task models.JobcardTask
	require.NoError(t, json.Unmarshal(env.Data, &task))
	assert.Equal(t, "pour-slab", task.Slug)

	w, _ = a.do(http.MethodGet, "/api/v1/projects/P-1042/jobcards/pour-slab", "member", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, env = a.do(http.MethodGet, "/api/v1/projects/P-1042/jobcards?status=open&item=1", "member", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var entries []services.JobcardEntry
	require.NoError(t, json.Unmarshal(env.Data, &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "1", entries[0].WbsPath)

	w, _ = a.do(http.MethodGet, "/api/v1/projects/P-1042/jobcards?status=paused", "member", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = a.do(http.MethodDelete, "/api/v1/projects/P-1042/wbs/"+node.ID.String(), "manager", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w, _ = a.do(http.MethodDelete, "/api/v1/projects/P-1042/jobcards/pour-slab", "member", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w, _ = a.do(http.MethodDelete, "/api/v1/projects/P-1042/jobcards/pour-slab", "manager", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestBadPathParams(t *testing.T) {
	a := newAPITest(t)

	w, _ := a.do(http.MethodGet, "/api/v1/projects/P-1042/items/abc/wbs", "member", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = a.do(http.MethodPatch, "/api/v1/projects/P-1042/wbs/not-a-uuid", "manager", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHseChecklistFlow(t *testing.T) {
	a := newAPITest(t)
	item, err := a.db.Items().Get(context.Background(), "P-1042", 1)
	require.NoError(t, err)
	node := testutil.SeedNode(t, a.db, item, nil, "1")
	testutil.SeedJobcard(t, a.db, node, "hot-work", a.users["member"].ID)
	_, questions := testutil.SeedTopic(t, a.db, "Permits", "Permit issued?")

	w, env := a.do(http.MethodPut, "/api/v1/projects/P-1042/jobcards/hot-work/hse", "member", map[string]any{
		"answers": []map[string]any{{"question_id": questions[0].ID, "answer": "no"}},
	})
	require.Equal(t, http.StatusOK, w.Code)
	var checklist services.HseChecklist
	require.NoError(t, json.Unmarshal(env.Data, &checklist))
	assert.Equal(t, models.HseSummary{Total: 1, Answered: 1, No: 1}, checklist.Summary)

	w, _ = a.do(http.MethodPut, "/api/v1/projects/P-1042/jobcards/hot-work/hse", "member", map[string]any{"answers": []any{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = a.do(http.MethodGet, "/api/v1/projects/P-1042/jobcards/hot-work/hse", "outside", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminRoutes(t *testing.T) {
	a := newAPITest(t)

	w, _ := a.do(http.MethodGet, "/api/v1/admin/memberships", "manager", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, env := a.do(http.MethodGet, "/api/v1/admin/memberships", "root", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var matrix services.MembershipMatrix
	require.NoError(t, json.Unmarshal(env.Data, &matrix))
	assert.Len(t, matrix.Members, 2)

	w, _ = a.do(http.MethodPut, "/api/v1/admin/memberships", "root", map[string]any{
		"project_number": "P-1042",
		"user_id":        a.users["member"].ID,
		"role":           "none",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = a.do(http.MethodGet, "/api/v1/projects/P-1042", "member", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, env = a.do(http.MethodPost, "/api/v1/admin/hse/topics", "root", map[string]any{"name": "Lifting"})
	require.Equal(t, http.StatusCreated, w.Code)
	var topic models.HseTopic
	require.NoError(t, json.Unmarshal(env.Data, &topic))

	w, _ = a.do(http.MethodPost, "/api/v1/admin/hse/topics/"+topic.ID.String()+"/questions", "root", map[string]any{"prompt": "Lift plan?"})
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestSSOLoginRedirect(t *testing.T) {
	a := newAPITest(t)

	w, _ := a.do(http.MethodGet, "/api/v1/auth/sso/login", "", nil)
	require.Equal(t, http.StatusTemporaryRedirect, w.Code)

	location, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "idp.example.com", location.Host)

	cookie := cookieNamed(w, handlers.StateCookieName)
	require.NotNil(t, cookie)
	state, err := url.QueryUnescape(cookie.Value)
	require.NoError(t, err)
	require.NotEmpty(t, state)
	assert.Equal(t, state, location.Query().Get("state"))
}

func TestSSOLoginThenCallback(t *testing.T) {
	a := newAPITest(t)

	w, _ := a.do(http.MethodGet, "/api/v1/auth/sso/login", "", nil)
	require.Equal(t, http.StatusTemporaryRedirect, w.Code)
	stateCookie := cookieNamed(w, handlers.StateCookieName)
	require.NotNil(t, stateCookie)
	location, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/sso/callback?code=good-code&state="+url.QueryEscape(location.Query().Get("state")), nil)
	req.AddCookie(stateCookie)
	w, env := a.serve(req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var signedIn struct {
		AccessToken string      `json:"access_token"`
		User        models.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &signedIn))
	assert.Equal(t, a.users["member"].ID, signedIn.User.ID)
	assert.Equal(t, "Site Member", signedIn.User.DisplayName)
	require.NotNil(t, cookieNamed(w, handlers.RefreshTokenCookieName))

	req = httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+signedIn.AccessToken)
	w, _ = a.serve(req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSSOCallbackRejectedCode(t *testing.T) {
	a := newAPITest(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/sso/callback?code=stale&state=abc", nil)
	req.AddCookie(&http.Cookie{Name: handlers.StateCookieName, Value: "abc"})
	w, _ := a.serve(req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSSOCallbackStateMismatch(t *testing.T) {
	a := newAPITest(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/sso/callback?state=abc&code=xyz", nil)
	req.AddCookie(&http.Cookie{Name: handlers.StateCookieName, Value: "other"})
	w, _ := a.serve(req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/auth/sso/callback?code=xyz", nil)
	w, _ = a.serve(req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogout(t *testing.T) {
	a := newAPITest(t)

	w, _ := a.do(http.MethodPost, "/api/v1/auth/logout", "member", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = a.do(http.MethodGet, "/api/v1/users/me", "member", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogoutWithExpiredAccessToken(t *testing.T) {
	a := newAPITest(t)
	pair := a.pairs["member"]

	claims := &utils.Claims{RegisteredClaims: jwt.RegisteredClaims{
		ID:        pair.SessionID,
		Subject:   a.users["member"].ID.String(),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
	}}
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testAccessSecret)
	require.NoError(t, err)
	refreshCookie := &http.Cookie{Name: handlers.RefreshTokenCookieName, Value: pair.RefreshToken}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer "+expired)
	req.AddCookie(refreshCookie)
	w, _ := a.serve(req)
	require.Equal(t, http.StatusOK, w.Code)
	cleared := cookieNamed(w, handlers.RefreshTokenCookieName)
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", nil)
	req.AddCookie(refreshCookie)
	w, _ = a.serve(req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogoutWithoutTokens(t *testing.T) {
	a := newAPITest(t)

	w, _ := a.do(http.MethodPost, "/api/v1/auth/logout", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
