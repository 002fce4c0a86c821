package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/sport_academy/internal/models"
	"github.com/Skotchmaster/sport_academy/internal/repo"
	"github.com/Skotchmaster/sport_academy/internal/repo/repotest"
	"github.com/Skotchmaster/sport_academy/internal/search"
	"github.com/Skotchmaster/sport_academy/internal/service"
	"github.com/Skotchmaster/sport_academy/internal/token"
)

var testSecret = []byte("test-access-secret")

// countingStore counts selection listings so tests can prove a request never reached the store.
type countingStore struct {
	repo.Store
	listSelections atomic.Int32
}

func (s *countingStore) ListSelections(ctx context.Context, email string) ([]models.SelectedClass, error) {
	s.listSelections.Add(1)
	return s.Store.ListSelections(ctx, email)
}

type testEnv struct {
	E      *echo.Echo
	Store  *countingStore
	Gorm   *repo.GormRepo
	Tokens *token.Service
}

func newTestEnv(t *testing.T, idx search.Index) *testEnv {
	t.Helper()

	gormRepo := repotest.NewSQLite(t)
	store := &countingStore{Store: gormRepo}
	tokens := token.NewService(testSecret)

	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	e := NewEcho(logger)
	Register(e, &Deps{
		AcademyHandler: &AcademyHTTP{Svc: service.NewAcademyService(store, nil, idx)},
		AuthHandler:    &AuthHTTP{Tokens: tokens},
		Verifier:       tokens,
	})

	return &testEnv{E: e, Store: store, Gorm: gormRepo, Tokens: tokens}
}

func (env *testEnv) do(method, target string, body any, headers ...string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, target, r)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) token(t *testing.T, payload map[string]any) string {
	t.Helper()
	rec := env.do(http.MethodPost, "/jwt", payload)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestRootAndHealth(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "server is running now", rec.Body.String())

	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/health/live", nil).Code)
	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/health/ready", nil).Code)
}

func TestIssueToken_PayloadRoundTrip(t *testing.T) {
	env := newTestEnv(t, nil)

	raw := env.token(t, map[string]any{"email": "a@x.com", "name": "A"})
	claims, err := env.Tokens.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"email": "a@x.com", "name": "A"}, claims.Payload)
	assert.WithinDuration(t, claims.IssuedAt.Add(token.TokenTTL), claims.ExpiresAt, time.Second)
}

func TestIssueToken_InvalidBody(t *testing.T) {
	env := newTestEnv(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/jwt", bytes.NewBufferString(`{"email":`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode[map[string]any](t, rec)
	assert.Equal(t, true, body["error"])
}

func TestSelectedClasses_Gate(t *testing.T) {
	env := newTestEnv(t, nil)

	for _, email := range []string{"a@x.com", "a@x.com", "b@x.com"} {
		rec := env.do(http.MethodPost, "/selectclass", map[string]any{"email": email, "className": "Swim"})
		require.Equal(t, http.StatusOK, rec.Code)
	}

	t.Run("missing header", func(t *testing.T) {
		rec := env.do(http.MethodGet, "/selectclass?email=a@x.com", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"error":true,"message":"unauthorized access"}`, rec.Body.String())
	})

	t.Run("wrong scheme", func(t *testing.T) {
		raw := env.token(t, map[string]any{"email": "a@x.com"})
		rec := env.do(http.MethodGet, "/selectclass?email=a@x.com", nil, echo.HeaderAuthorization, "Basic "+raw)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("tampered token", func(t *testing.T) {
		raw := env.token(t, map[string]any{"email": "a@x.com"})
		rec := env.do(http.MethodGet, "/selectclass?email=a@x.com", nil, echo.HeaderAuthorization, "Bearer "+raw+"x")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("expired token", func(t *testing.T) {
		past := &token.Service{Secret: testSecret, TTL: token.TokenTTL, Now: func() time.Time {
			return time.Now().Add(-2 * time.Hour)
		}}
		raw, err := past.Issue(map[string]any{"email": "a@x.com"})
		require.NoError(t, err)

		rec := env.do(http.MethodGet, "/selectclass?email=a@x.com", nil, echo.HeaderAuthorization, "Bearer "+raw)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("email mismatch never reaches the store", func(t *testing.T) {
		before := env.Store.listSelections.Load()
		raw := env.token(t, map[string]any{"email": "a@x.com"})

		rec := env.do(http.MethodGet, "/selectclass?email=b@x.com", nil, echo.HeaderAuthorization, "Bearer "+raw)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.JSONEq(t, `{"error":true,"message":"forbidden access"}`, rec.Body.String())

		rec = env.do(http.MethodGet, "/selectclass", nil, echo.HeaderAuthorization, "Bearer "+raw)
		assert.Equal(t, http.StatusForbidden, rec.Code)

		assert.Equal(t, before, env.Store.listSelections.Load())
	})

	t.Run("matching email", func(t *testing.T) {
		raw := env.token(t, map[string]any{"email": "a@x.com"})
		rec := env.do(http.MethodGet, "/selectclass?email=a@x.com", nil, echo.HeaderAuthorization, "Bearer "+raw)
		require.Equal(t, http.StatusOK, rec.Code)

		items := decode[[]models.SelectedClass](t, rec)
		assert.Len(t, items, 2)
		for _, it := range items {
			assert.Equal(t, "a@x.com", it.Email)
		}
	})

	t.Run("no email on either side", func(t *testing.T) {
		raw := env.token(t, map[string]any{"name": "anon"})
		rec := env.do(http.MethodGet, "/selectclass", nil, echo.HeaderAuthorization, "Bearer "+raw)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, decode[[]models.SelectedClass](t, rec), 3)
	})
}

func TestCreateUser_Idempotent(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(http.MethodPost, "/user", map[string]any{"name": "A", "email": "a@x.com"})
	require.Equal(t, http.StatusOK, rec.Code)
	first := decode[models.InsertResult](t, rec)
	assert.True(t, first.Acknowledged)
	assert.Len(t, first.InsertedID, 24)

	rec = env.do(http.MethodPost, "/user", map[string]any{"name": "B", "email": "a@x.com"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"user already exist"}`, rec.Body.String())

	users := decode[[]models.User](t, env.do(http.MethodGet, "/user", nil))
	require.Len(t, users, 1)
	assert.Equal(t, "A", users[0].Name)
}

func TestUserRoles(t *testing.T) {
	env := newTestEnv(t, nil)

	res := decode[models.InsertResult](t, env.do(http.MethodPost, "/user", map[string]any{"email": "a@x.com"}))

	rec := env.do(http.MethodPatch, "/user/instructor/"+res.InsertedID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decode[models.UpdateResult](t, rec).MatchedCount)

	users := decode[[]models.User](t, env.do(http.MethodGet, "/user", nil))
	assert.Equal(t, models.RoleInstructor, users[0].Role)

	rec = env.do(http.MethodPatch, "/user/admin/"+res.InsertedID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	users = decode[[]models.User](t, env.do(http.MethodGet, "/user", nil))
	assert.Equal(t, models.RoleAdmin, users[0].Role)

	rec = env.do(http.MethodDelete, "/user/"+res.InsertedID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decode[models.DeleteResult](t, rec).DeletedCount)
}

func TestMalformedID(t *testing.T) {
	env := newTestEnv(t, nil)

	for _, tc := range []struct{ method, path string }{
		{http.MethodDelete, "/user/not-an-id"},
		{http.MethodPatch, "/user/admin/123"},
		{http.MethodPatch, "/status/approved/xyz"},
		{http.MethodDelete, "/selectclass/abc"},
		{http.MethodPatch, "/allclass/zz"},
	} {
		rec := env.do(tc.method, tc.path, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, tc.path)
		assert.JSONEq(t, `{"error":true,"message":"invalid id"}`, rec.Body.String(), tc.path)
	}
}

func TestDeleteMissingSelection(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(http.MethodDelete, "/selectclass/"+repo.NewID(), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	res := decode[models.DeleteResult](t, rec)
	assert.True(t, res.Acknowledged)
	assert.Zero(t, res.DeletedCount)
}

func TestClasses(t *testing.T) {
	env := newTestEnv(t, nil)

	ids := map[int]string{}
	for _, n := range []int{3, 10, 7} {
		rec := env.do(http.MethodPost, "/allclass", map[string]any{
			"className":        "C",
			"instructorEmail":  "i@x.com",
			"enrolledStudents": n,
			"price":            50,
		})
		require.Equal(t, http.StatusOK, rec.Code)
		ids[n] = decode[models.InsertResult](t, rec).InsertedID
	}
	_ = env.do(http.MethodPost, "/allclass", map[string]any{"className": "Other", "instructorEmail": "j@x.com"})

	classes := decode[[]models.Class](t, env.do(http.MethodGet, "/allclass", nil))
	require.Len(t, classes, 4)
	for i := 1; i < len(classes); i++ {
		assert.GreaterOrEqual(t, classes[i-1].EnrolledStudents, classes[i].EnrolledStudents)
	}
	assert.Equal(t, models.StatusPending, classes[0].Status)

	mine := decode[[]models.Class](t, env.do(http.MethodGet, "/myclass?instructorEmail=i@x.com", nil))
	assert.Len(t, mine, 3)

	rec := env.do(http.MethodPatch, "/allclass/"+ids[3], map[string]any{"price": 75})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decode[models.UpdateResult](t, rec).MatchedCount)

	rec = env.do(http.MethodPut, "/allclass/"+ids[3], map[string]any{"className": "Swim", "availableSet": 12})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(http.MethodPatch, "/status/approved/"+ids[3], nil)
	require.Equal(t, http.StatusOK, rec.Code)

	for _, c := range decode[[]models.Class](t, env.do(http.MethodGet, "/allclass", nil)) {
		if c.ID != ids[3] {
			continue
		}
		assert.Equal(t, 75.0, c.Price)
		assert.Equal(t, "Swim", c.ClassName)
		assert.Equal(t, 12, c.AvailableSet)
		assert.Equal(t, models.StatusApproved, c.Status)
	}

	rec = env.do(http.MethodPatch, "/status/deny/"+ids[3], nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(http.MethodPatch, "/status/approved/"+repo.NewID(), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, decode[models.UpdateResult](t, rec).MatchedCount)
}

func TestFeedback(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(http.MethodPost, "/feedback", map[string]any{"classId": repo.NewID(), "content": "more time please"})
	require.Equal(t, http.StatusOK, rec.Code)

	items := decode[[]models.Feedback](t, env.do(http.MethodGet, "/feedback", nil))
	require.Len(t, items, 1)
	assert.Equal(t, "more time please", items[0].Content)
}

func TestEmptyCollectionsAreArrays(t *testing.T) {
	env := newTestEnv(t, nil)

	for _, path := range []string{"/user", "/allclass", "/feedback", "/myclass"} {
		rec := env.do(http.MethodGet, path, nil)
		require.Equal(t, http.StatusOK, rec.Code, path)
		assert.JSONEq(t, `[]`, rec.Body.String(), path)
	}
}

func TestTrailingSlash(t *testing.T) {
	env := newTestEnv(t, nil)
	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/user/", nil).Code)
}

func TestStoreFailureIs500(t *testing.T) {
	env := newTestEnv(t, nil)
	require.NoError(t, env.Gorm.Close(context.Background()))

	rec := env.do(http.MethodGet, "/user", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":true,"message":"cannot list users"}`, rec.Body.String())

	assert.Equal(t, http.StatusServiceUnavailable, env.do(http.MethodGet, "/health/ready", nil).Code)
}

func TestPutKeepsFieldsMissingFromBody(t *testing.T) {
	env := newTestEnv(t, nil)

	res := decode[models.InsertResult](t, env.do(http.MethodPost, "/allclass", map[string]any{
		"className":    "Swim",
		"classPhoto":   "swim.png",
		"availableSet": 8,
		"price":        40,
	}))

	rec := env.do(http.MethodPut, "/allclass/"+res.InsertedID, map[string]any{"price": 55})
	require.Equal(t, http.StatusOK, rec.Code)
	upd := decode[models.UpdateResult](t, rec)
	assert.EqualValues(t, 1, upd.MatchedCount)
	assert.EqualValues(t, 1, upd.ModifiedCount)

	classes := decode[[]models.Class](t, env.do(http.MethodGet, "/allclass", nil))
	require.Len(t, classes, 1)
	assert.Equal(t, 55.0, classes[0].Price)
	assert.Equal(t, "Swim", classes[0].ClassName)
	assert.Equal(t, "swim.png", classes[0].ClassPhoto)
	assert.Equal(t, 8, classes[0].AvailableSet)
}

func TestReapproveReportsNoModification(t *testing.T) {
	env := newTestEnv(t, nil)

	res := decode[models.InsertResult](t, env.do(http.MethodPost, "/allclass", map[string]any{"className": "Box"}))

	first := decode[models.UpdateResult](t, env.do(http.MethodPatch, "/status/approved/"+res.InsertedID, nil))
	assert.EqualValues(t, 1, first.ModifiedCount)

	second := decode[models.UpdateResult](t, env.do(http.MethodPatch, "/status/approved/"+res.InsertedID, nil))
	assert.EqualValues(t, 1, second.MatchedCount)
	assert.Zero(t, second.ModifiedCount)
}

func TestIssueToken_NonNumericNotBefore(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(http.MethodPost, "/jwt", map[string]any{"email": "a@x.com", "nbf": "soon"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":true,"message":"invalid body"}`, rec.Body.String())
}

func TestPanicIsRecoveredAndLogged(t *testing.T) {
	var logs bytes.Buffer
	e := NewEcho(slog.New(slog.NewJSONHandler(&logs, nil)))
	e.GET("/boom", func(echo.Context) error { panic("boom") })

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, true, decode[map[string]any](t, rec)["error"])

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(logs.Bytes()), &line), logs.String())
	assert.Equal(t, "request completed", line["msg"])
	assert.EqualValues(t, http.StatusInternalServerError, line["status"])
	assert.Equal(t, "ERROR", line["level"])
}

type stubIndex struct{ classes []models.Class }

func (s *stubIndex) IndexClass(_ context.Context, c models.Class) error {
	s.classes = append(s.classes, c)
	return nil
}
func (s *stubIndex) UpdateClass(context.Context, string, map[string]any) error { return nil }
func (s *stubIndex) Search(context.Context, string) (int64, []models.Class, error) {
	return int64(len(s.classes)), s.classes, nil
}

func TestSearchRoute(t *testing.T) {
	disabled := newTestEnv(t, nil).do(http.MethodGet, "/allclass/search?q=swim", nil).Code
	assert.Contains(t, []int{http.StatusNotFound, http.StatusMethodNotAllowed}, disabled)

	env := newTestEnv(t, &stubIndex{})
	require.Equal(t, http.StatusOK, env.do(http.MethodPost, "/allclass", map[string]any{"className": "Swim"}).Code)

	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodGet, "/allclass/search?q=", nil).Code)

	rec := env.do(http.MethodGet, "/allclass/search?q=swim", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]any](t, rec)
	assert.EqualValues(t, 1, body["total"])
}
