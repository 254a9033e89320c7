package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	httptransport "github.com/spec-kit/blog-service/internal/api/http"
	"github.com/spec-kit/blog-service/internal/api/http/handlers"
	"github.com/spec-kit/blog-service/internal/auth"
	"github.com/spec-kit/blog-service/internal/config"
	"github.com/spec-kit/blog-service/internal/observability"
	"github.com/spec-kit/blog-service/internal/persistence"
	"github.com/spec-kit/blog-service/internal/repository/inmem"
	"github.com/spec-kit/blog-service/internal/service"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	users := inmem.NewUserRepo()
	posts := inmem.NewPostRepo(users)

	authService := service.NewAuthService(config.AuthConfig{
		JWTSecret:  "test-secret",
		BcryptCost: bcrypt.MinCost,
	}, users)
	postService := service.NewPostService(service.PostDependencies{
		PostRepo: posts,
		UserRepo: users,
	})

	logger := zap.NewNop()
	metrics := observability.NewMetrics()

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, 0)
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler("test", "dev", &persistence.Postgres{}, &persistence.Redis{}),
		Users:          handlers.NewUsersHandler(authService, postService),
		Posts:          handlers.NewPostsHandler(postService),
		AuthMiddleware: auth.NewMiddleware(authService.TokenManager()),
	})
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, payload any) (int, map[string]any) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(auth.HeaderAuthToken, token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded), "body: %s", raw)
	return resp.StatusCode, decoded
}

func register(t *testing.T, app *fiber.App, username, email, password string) (int, map[string]any) {
	return doJSON(t, app, http.MethodPost, "/api/register", "", fiber.Map{
		"username": username, "email": email, "password": password,
	})
}

func login(t *testing.T, app *fiber.App, email, password string) string {
	t.Helper()
	status, body := doJSON(t, app, http.MethodPost, "/api/login", "", fiber.Map{
		"email": email, "password": password,
	})
	require.Equal(t, http.StatusOK, status, "login body: %v", body)
	data := body["data"].(map[string]any)
	return data["token"].(string)
}

func errCode(body map[string]any) string {
	errObj, ok := body["error"].(map[string]any)
	if !ok {
		return ""
	}
	code, _ := errObj["code"].(string)
	return code
}

func TestRegisterAndLoginFlow(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)

	status, body := register(t, app, "alice", "alice@x.com", "pw123")
	require.Equal(t, http.StatusCreated, status, "body: %v", body)
	data := body["data"].(map[string]any)
	assert.Equal(t, "alice", data["username"])

	status, body = register(t, app, "alice2", "alice@x.com", "pw456")
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "CONFLICT", errCode(body))

	status, body = doJSON(t, app, http.MethodPost, "/api/register", "", fiber.Map{"username": "x"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", errCode(body))

	token := login(t, app, "alice@x.com", "pw123")
	assert.NotEmpty(t, token)

	status, body = doJSON(t, app, http.MethodPost, "/api/login", "", fiber.Map{
		"email": "alice@x.com", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHORIZED", errCode(body))
}

func TestDraftPostLifecycle(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)

	_, _ = register(t, app, "alice", "alice@x.com", "pw123")
	_, _ = register(t, app, "bob", "bob@x.com", "pw456")
	aliceToken := login(t, app, "alice@x.com", "pw123")
	bobToken := login(t, app, "bob@x.com", "pw456")

	// alice creates a draft
	status, body := doJSON(t, app, http.MethodPost, "/api/posts", aliceToken, fiber.Map{
		"title": "Draft", "content": "secret words", "published": false,
	})
	require.Equal(t, http.StatusCreated, status, "body: %v", body)
	created := body["data"].(map[string]any)
	postID := int64(created["id"].(float64))
	assert.Equal(t, float64(1), created["owner_id"])
	assert.Equal(t, false, created["published"])

	postPath := "/api/posts/" + strconv.FormatInt(postID, 10)

	// anonymous read of the draft is forbidden
	status, body = doJSON(t, app, http.MethodGet, postPath, "", nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", errCode(body))

	// non-owner read of the draft is forbidden
	status, _ = doJSON(t, app, http.MethodGet, postPath, bobToken, nil)
	assert.Equal(t, http.StatusForbidden, status)

	// owner reads the draft
	status, body = doJSON(t, app, http.MethodGet, postPath, aliceToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "secret words", body["data"].(map[string]any)["content"])

	// the public list never includes the draft
	status, body = doJSON(t, app, http.MethodGet, "/api/posts", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, body["data"].([]any))

	// non-owner update is forbidden and mutates nothing
	status, body = doJSON(t, app, http.MethodPut, postPath, bobToken, fiber.Map{
		"title": "Hijacked", "content": "x",
	})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", errCode(body))

	status, body = doJSON(t, app, http.MethodGet, postPath, aliceToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Draft", body["data"].(map[string]any)["title"])

	// owner publishes via an explicit update
	status, _ = doJSON(t, app, http.MethodPut, postPath, aliceToken, fiber.Map{
		"title": "Published now", "content": "secret words", "published": true,
	})
	require.Equal(t, http.StatusOK, status)

	status, body = doJSON(t, app, http.MethodGet, "/api/posts", "", nil)
	require.Equal(t, http.StatusOK, status)
	list := body["data"].([]any)
	require.Len(t, list, 1)
	entry := list[0].(map[string]any)
	assert.Equal(t, "Published now", entry["title"])
	assert.Equal(t, "alice", entry["author_username"])

	// once published, anonymous reads succeed
	status, _ = doJSON(t, app, http.MethodGet, postPath, "", nil)
	assert.Equal(t, http.StatusOK, status)

	// non-owner delete is forbidden, owner delete succeeds
	status, _ = doJSON(t, app, http.MethodDelete, postPath, bobToken, nil)
	assert.Equal(t, http.StatusForbidden, status)
	status, _ = doJSON(t, app, http.MethodDelete, postPath, aliceToken, nil)
	assert.Equal(t, http.StatusOK, status)
	status, body = doJSON(t, app, http.MethodGet, postPath, aliceToken, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", errCode(body))
}

func TestStrictGateOnMutations(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)

	for _, tc := range []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/posts"},
		{http.MethodPut, "/api/posts/1"},
		{http.MethodDelete, "/api/posts/1"},
		{http.MethodGet, "/api/users/1/profile"},
	} {
		status, body := doJSON(t, app, tc.method, tc.path, "", fiber.Map{"title": "t", "content": "c"})
		assert.Equal(t, http.StatusUnauthorized, status, "%s %s", tc.method, tc.path)
		assert.Equal(t, "UNAUTHORIZED", errCode(body))

		status, _ = doJSON(t, app, tc.method, tc.path, "garbage-token", fiber.Map{"title": "t", "content": "c"})
		assert.Equal(t, http.StatusUnauthorized, status, "%s %s", tc.method, tc.path)
	}
}

func TestProfileIgnoresPathParameter(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)

	_, _ = register(t, app, "alice", "alice@x.com", "pw123")
	aliceToken := login(t, app, "alice@x.com", "pw123")
	_, _ = doJSON(t, app, http.MethodPost, "/api/posts", aliceToken, fiber.Map{
		"title": "mine", "content": "c",
	})

	// the path id is someone else's; the response is still the caller's profile
	status, body := doJSON(t, app, http.MethodGet, "/api/users/999/profile", aliceToken, nil)
	require.Equal(t, http.StatusOK, status, "body: %v", body)
	data := body["data"].(map[string]any)
	assert.Equal(t, "alice", data["user"].(map[string]any)["username"])
	posts := data["posts"].([]any)
	require.Len(t, posts, 1)
	assert.Equal(t, "mine", posts[0].(map[string]any)["title"])
}
