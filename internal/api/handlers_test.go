package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/example/dailywhisker/internal/authtoken"
	"github.com/example/dailywhisker/internal/core"
	"github.com/example/dailywhisker/internal/models"
	"github.com/example/dailywhisker/internal/session"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	router    *gin.Engine
	issuer    *authtoken.Issuer
	users     *stubUsers
	cats      *stubCats
	bookmarks *stubBookmarks
	settings  *stubSettings
	survey    *stubSurvey
	auth      *stubAuth
	share     *stubShare
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ts := &testServer{
		issuer:    authtoken.NewIssuer("test-secret", time.Hour),
		users:     &stubUsers{},
		cats:      &stubCats{},
		bookmarks: &stubBookmarks{},
		settings:  &stubSettings{stored: models.DefaultSettings()},
		survey:    &stubSurvey{},
		auth:      &stubAuth{},
		share:     &stubShare{},
	}
	resolver := session.NewResolver(stubFirebase{}, ts.issuer, zap.NewNop())
	ts.router = gin.New()
	SetupRoutes(ts.router, zap.NewNop(), resolver, Services{
		Users:     ts.users,
		Cats:      ts.cats,
		Bookmarks: ts.bookmarks,
		Settings:  ts.settings,
		Survey:    ts.survey,
		Auth:      ts.auth,
		Share:     ts.share,
	})
	return ts
}

func (ts *testServer) bridgeToken(t *testing.T) string {
	t.Helper()
	tok, err := ts.issuer.Mint(authtoken.Identity{ID: "u1", Email: "kit@example.com", Name: "Kit"})
	require.NoError(t, err)
	return tok
}

func (ts *testServer) do(t *testing.T, method, path string, body string, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	ts := newTestServer(t)
	for _, route := range []struct{ method, path string }{
		{http.MethodGet, "/api/v1/cats/daily"},
		{http.MethodGet, "/api/v1/bookmarks"},
		{http.MethodPut, "/api/v1/settings"},
		{http.MethodGet, "/api/v1/survey"},
		{http.MethodPost, "/api/v1/share"},
		{http.MethodPost, "/api/v1/auth/logout"},
	} {
		w := ts.do(t, route.method, route.path, "", "garbage")
		assert.Equal(t, http.StatusUnauthorized, w.Code, route.path)
	}
}

func TestSessionCookieIsAccepted(t *testing.T) {
	ts := newTestServer(t)
	ts.cats.daily = &models.DailyCat{CatID: "c1", Cat: &models.Cat{ID: "c1"}}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cats/daily", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: ts.bridgeToken(t)})
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u1", ts.cats.lastBy)
}

func TestGetDailyCat(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"ok", nil, http.StatusOK},
		{"stale cat", fmt.Errorf("%w: 'gone'", core.ErrCatNotFound), http.StatusNotFound},
		{"empty collection", core.ErrNoCatsAvailable, http.StatusServiceUnavailable},
		{"store down", errors.New("unavailable"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t)
			ts.cats.daily = &models.DailyCat{CatID: "c1", Cat: &models.Cat{ID: "c1", Name: "Mochi"}}
			ts.cats.err = tt.err

			w := ts.do(t, http.MethodGet, "/api/v1/cats/daily", "", "fb-token")
			assert.Equal(t, tt.wantCode, w.Code)
			if tt.wantCode == http.StatusOK {
				got := decode[models.DailyCat](t, w)
				assert.Equal(t, "c1", got.CatID)
				assert.Equal(t, "fb-user", ts.cats.lastBy)
			}
		})
	}
}

func TestGetCatByID(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(t, http.MethodGet, "/api/v1/cats/c42", "", ts.bridgeToken(t))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "c42", decode[models.Cat](t, w).ID)
}

func TestAddBookmark(t *testing.T) {
	ts := newTestServer(t)
	token := ts.bridgeToken(t)

	ts.bookmarks.created = true
	w := ts.do(t, http.MethodPost, "/api/v1/bookmarks", `{"catId":"c1","note":"so fluffy"}`, token)
	require.Equal(t, http.StatusCreated, w.Code)
	resp := decode[BookmarkResponse](t, w)
	assert.True(t, resp.Created)
	assert.Equal(t, "so fluffy", resp.Bookmark.Note)

	ts.bookmarks.created = false
	w = ts.do(t, http.MethodPost, "/api/v1/bookmarks", `{"catId":"c1"}`, token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decode[BookmarkResponse](t, w).Created)

	w = ts.do(t, http.MethodPost, "/api/v1/bookmarks", `{"note":"no cat"}`, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	ts.bookmarks.err = fmt.Errorf("%w: 'c9'", core.ErrCatNotFound)
	w = ts.do(t, http.MethodPost, "/api/v1/bookmarks", `{"catId":"c9"}`, token)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListBookmarks(t *testing.T) {
	ts := newTestServer(t)
	token := ts.bridgeToken(t)

	w := ts.do(t, http.MethodGet, "/api/v1/bookmarks", "", token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.WindowAll, ts.bookmarks.listWindow)
	assert.JSONEq(t, `{"window":"all","bookmarks":[]}`, w.Body.String())

	ts.bookmarks.list = []models.BookmarkWithCat{{Bookmark: models.Bookmark{ID: "b1", CatID: "c1"}}}
	w = ts.do(t, http.MethodGet, "/api/v1/bookmarks?window=week", "", token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.WindowWeek, ts.bookmarks.listWindow)
	assert.Len(t, decode[BookmarkListResponse](t, w).Bookmarks, 1)

	w = ts.do(t, http.MethodGet, "/api/v1/bookmarks?window=year", "", token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSettingsEndpoints(t *testing.T) {
	ts := newTestServer(t)
	token := ts.bridgeToken(t)

	w := ts.do(t, http.MethodGet, "/api/v1/settings", "", token)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[SettingsResponse](t, w)
	assert.False(t, got.Stored)
	assert.Equal(t, models.DefaultSettings(), got.Settings)

	w = ts.do(t, http.MethodPut, "/api/v1/settings", `{"appTheme":"dark"}`, token)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, ts.settings.lastPatch.AppTheme)
	assert.Equal(t, models.ThemeDark, *ts.settings.lastPatch.AppTheme)
	assert.Nil(t, ts.settings.lastPatch.CatBorder)

	ts.settings.err = fmt.Errorf("%w: appTheme 'neon'", core.ErrInvalidSetting)
	w = ts.do(t, http.MethodPut, "/api/v1/settings", `{"appTheme":"neon"}`, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExportSettings(t *testing.T) {
	ts := newTestServer(t)
	ts.settings.stored = models.Settings{CatBorder: models.BorderRainbow, CatBackground: models.BackgroundPaws, AppTheme: models.ThemeGreenPurple, UpdatedAt: 5}
	token := ts.bridgeToken(t)

	w := ts.do(t, http.MethodGet, "/api/v1/settings/export?format=xml", "", token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/xml", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "cat-settings.xml")
	assert.Contains(t, w.Body.String(), "<catBorder>rainbow</catBorder>")

	w = ts.do(t, http.MethodGet, "/api/v1/settings/export", "", token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	w = ts.do(t, http.MethodGet, "/api/v1/settings/export?format=yaml", "", token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestImportSettings(t *testing.T) {
	ts := newTestServer(t)
	token := ts.bridgeToken(t)

	xmlBody := `<settings><catBorder>rainbow</catBorder><appTheme>dark</appTheme></settings>`
	w := ts.do(t, http.MethodPost, "/api/v1/settings/import", xmlBody, token)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[models.Settings](t, w)
	assert.Equal(t, models.BorderRainbow, got.CatBorder)
	assert.Equal(t, models.DefaultCatBackground, got.CatBackground)
	assert.Equal(t, models.ThemeDark, got.AppTheme)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "cat-settings.json")
	require.NoError(t, err)
	_, _ = fw.Write([]byte(`{"catBackground":"fancy"}`))
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, "/api/v1/settings/import?format=json", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, models.BackgroundFancy, decode[models.Settings](t, rec).CatBackground)

	w = ts.do(t, http.MethodPost, "/api/v1/settings/import?format=json", `{not json`, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), core.ErrMalformedSettingsFile.Error())
}

func TestSurveyFlow(t *testing.T) {
	ts := newTestServer(t)
	token := ts.bridgeToken(t)

	w := ts.do(t, http.MethodGet, "/api/v1/survey", "", token)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[SurveyResponse](t, w)
	assert.True(t, got.ShowPrompt)
	assert.Len(t, got.Questions, 3)

	w = ts.do(t, http.MethodPost, "/api/v1/survey/skip", "", token)
	require.Equal(t, http.StatusOK, w.Code)
	got = decode[SurveyResponse](t, w)
	assert.True(t, got.Skipped)
	assert.False(t, got.ShowPrompt)

	w = ts.do(t, http.MethodPost, "/api/v1/survey/complete", `{"answers":{"question1":"Siamese","question2":"Playful","question3":"Orange"}}`, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Siamese", ts.survey.answers.FavoriteBreed)

	w = ts.do(t, http.MethodPost, "/api/v1/survey/retake", "", token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[SurveyResponse](t, w).Retaking)

	ts.survey.err = fmt.Errorf("%w: at least one answer is required", core.ErrInvalidSurvey)
	w = ts.do(t, http.MethodPost, "/api/v1/survey/complete", `{"answers":{}}`, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthEndpoints(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/v1/auth/login", `{"email":"kit@example.com","password":"hunter22"}`, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "id-tok", decode[core.AuthSession](t, w).IDToken)

	w = ts.do(t, http.MethodPost, "/api/v1/auth/register", `{"email":"kit@example.com","password":"abc"}`, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodPost, "/api/v1/auth/register", `{"email":"kit@example.com","password":"hunter22"}`, "")
	assert.Equal(t, http.StatusCreated, w.Code)

	w = ts.do(t, http.MethodPost, "/api/v1/auth/password-reset", `{"email":"kit@example.com"}`, "")
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, "kit@example.com", ts.auth.resetEmail)

	w = ts.do(t, http.MethodPost, "/api/v1/auth/logout", "", "fb-token")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"fb-user"}, ts.auth.loggedOut)

	w = ts.do(t, http.MethodPost, "/api/v1/auth/logout", "", ts.bridgeToken(t))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, ts.auth.loggedOut, 1)
}

func TestAuthErrorMapping(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{core.ErrInvalidCredentials, http.StatusUnauthorized},
		{core.ErrEmailAlreadyExists, http.StatusConflict},
		{core.ErrWeakPassword, http.StatusBadRequest},
		{core.ErrIdentityUnavailable, http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		ts := newTestServer(t)
		ts.auth.err = tt.err
		w := ts.do(t, http.MethodPost, "/api/v1/auth/login", `{"email":"kit@example.com","password":"hunter22"}`, "")
		assert.Equal(t, tt.want, w.Code, tt.err.Error())
	}
}

func TestUserEndpoints(t *testing.T) {
	ts := newTestServer(t)
	token := ts.bridgeToken(t)

	ts.users.created = true
	w := ts.do(t, http.MethodPost, "/api/v1/users/initialize", "", token)
	require.Equal(t, http.StatusCreated, w.Code)
	resp := decode[InitializeResponse](t, w)
	assert.Equal(t, "u1", resp.User.ID)
	assert.Equal(t, "kit@example.com", resp.User.Email)
	require.NotNil(t, resp.Survey)

	ts.users.created = false
	w = ts.do(t, http.MethodPost, "/api/v1/users/initialize", "", token)
	assert.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, http.MethodGet, "/api/v1/users/me", "", token)
	assert.Equal(t, http.StatusOK, w.Code)

	ts.users.getErr = fmt.Errorf("%w: user with ID 'u1'", core.ErrUserNotFound)
	w = ts.do(t, http.MethodGet, "/api/v1/users/me", "", token)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func newShareRequest(t *testing.T, token, contentType string, payload []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="image"; filename="card.png"`)
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, _ = part.Write(payload)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/share", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestShareCard(t *testing.T) {
	ts := newTestServer(t)
	token := ts.bridgeToken(t)

	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, newShareRequest(t, token, "image/png", []byte("png-bytes")))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "image/png", ts.share.contentType)
	assert.Equal(t, "png-bytes", string(ts.share.body))
	assert.Equal(t, "https://cdn.example.test/card.png", decode[ShareResponse](t, w).Card.URL)

	ts.share.err = fmt.Errorf("%w: content type 'image/gif' is not supported", core.ErrInvalidShareImage)
	w = httptest.NewRecorder()
	ts.router.ServeHTTP(w, newShareRequest(t, token, "image/gif", []byte("gif")))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodPost, "/api/v1/share", `{}`, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestShareCardUnconfigured(t *testing.T) {
	r := gin.New()
	r.POST("/share", func(c *gin.Context) { c.Set("userID", "u1") }, NewShareHandler(nil, zap.NewNop()).ShareCard)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/share", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/health", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"UP"`)

	w = ts.do(t, http.MethodGet, "/metrics", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
}
