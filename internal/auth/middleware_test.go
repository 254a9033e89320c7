package auth

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/blog-service/internal/domain"
	apperrors "github.com/spec-kit/blog-service/pkg/util"
)

// newGateApp wires a gate in front of a probe handler that reports the
// resolved identity, with the taxonomy error envelope applied.
func newGateApp(m *Middleware, gate fiber.Handler) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		err := c.Next()
		if err != nil {
			domainErr := apperrors.ToDomainError(err)
			return c.Status(domainErr.HTTPStatus).JSON(fiber.Map{"error": fiber.Map{
				"code":    domainErr.Code,
				"message": domainErr.Message,
			}})
		}
		return nil
	})
	app.Get("/probe", gate, func(c *fiber.Ctx) error {
		identity, ok := IdentityFromContext(c)
		if !ok {
			return c.JSON(fiber.Map{"anonymous": true})
		}
		return c.JSON(fiber.Map{"anonymous": false, "id": identity.ID, "username": identity.Username})
	})
	return app
}

func probe(t *testing.T, app *fiber.App, headers map[string]string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test error: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		t.Fatalf("decode body %q: %v", raw, err)
	}
	return resp.StatusCode, body
}

func TestRequireAuth_MissingToken(t *testing.T) {
	t.Parallel()

	m := NewMiddleware(NewTokenManager("secret"))
	status, body := probe(t, newGateApp(m, m.RequireAuth), nil)

	if status != http.StatusUnauthorized {
		t.Fatalf("status: got %d want 401", status)
	}
	if code := body["error"].(map[string]any)["code"]; code != "UNAUTHORIZED" {
		t.Fatalf("code: got %v want UNAUTHORIZED", code)
	}
}

func TestRequireAuth_InvalidAndExpiredCollapse(t *testing.T) {
	t.Parallel()

	tm := NewTokenManager("secret")
	m := NewMiddleware(tm)
	app := newGateApp(m, m.RequireAuth)

	for _, token := range []string{"garbage", mintExpired(t, "secret")} {
		status, body := probe(t, app, map[string]string{HeaderAuthToken: token})
		if status != http.StatusUnauthorized {
			t.Fatalf("status: got %d want 401", status)
		}
		errBody := body["error"].(map[string]any)
		if errBody["code"] != "UNAUTHORIZED" || errBody["message"] != "invalid token" {
			t.Fatalf("failure causes must not be distinguished, got %v", errBody)
		}
	}
}

func TestRequireAuth_Success(t *testing.T) {
	t.Parallel()

	tm := NewTokenManager("secret")
	m := NewMiddleware(tm)
	tok, _, err := tm.Issue(domain.Identity{ID: 7, Username: "alice", Email: "alice@x.com"})
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	status, body := probe(t, newGateApp(m, m.RequireAuth), map[string]string{HeaderAuthToken: tok})
	if status != http.StatusOK {
		t.Fatalf("status: got %d want 200", status)
	}
	if body["anonymous"] != false || body["id"] != float64(7) {
		t.Fatalf("identity not attached: %v", body)
	}
}

func TestOptionalAuth_AnonymousPaths(t *testing.T) {
	t.Parallel()

	m := NewMiddleware(NewTokenManager("secret"))
	app := newGateApp(m, m.OptionalAuth)

	cases := []map[string]string{
		nil,
		{HeaderAuthToken: "garbage"},
		{fiber.HeaderAuthorization: "Bearer garbage"},
		{HeaderAuthToken: mintExpired(t, "secret")},
	}
	for _, headers := range cases {
		status, body := probe(t, app, headers)
		if status != http.StatusOK {
			t.Fatalf("optional gate must never reject, got %d for %v", status, headers)
		}
		if body["anonymous"] != true {
			t.Fatalf("expected anonymous for %v, got %v", headers, body)
		}
	}
}

func TestOptionalAuth_AcceptsBothTransports(t *testing.T) {
	t.Parallel()

	tm := NewTokenManager("secret")
	m := NewMiddleware(tm)
	app := newGateApp(m, m.OptionalAuth)
	tok, _, err := tm.Issue(domain.Identity{ID: 9, Username: "bob"})
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	for _, headers := range []map[string]string{
		{HeaderAuthToken: tok},
		{fiber.HeaderAuthorization: "Bearer " + tok},
	} {
		status, body := probe(t, app, headers)
		if status != http.StatusOK {
			t.Fatalf("status: got %d want 200", status)
		}
		if body["anonymous"] != false || body["id"] != float64(9) {
			t.Fatalf("identity not resolved for %v: %v", headers, body)
		}
	}
}

func mintExpired(t *testing.T, secret string) string {
	t.Helper()
	now := time.Now()
	return signToken(t, []byte(secret), tokenUser{ID: 1}, now.Add(-2*TokenTTL), now.Add(-TokenTTL))
}
