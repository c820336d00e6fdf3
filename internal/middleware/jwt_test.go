package middleware

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/cdileep23/XNL-21BCE9435-server/internal/directory"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func requestContext(t *testing.T, header, query string) echo.Context {
	t.Helper()
	e := echo.New()
	target := "/job/all"
	if query != "" {
		target += "?token=" + query
	}
	req := httptest.NewRequest("GET", target, nil)
	if header != "" {
		req.Header.Set("Authorization", "Bearer "+header)
	}
	return e.NewContext(req, httptest.NewRecorder())
}

func TestCallerFromRequest(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)

	claims := jwt.MapClaims{
		"user_id": "user-1",
		"role":    "freelancer",
		"exp":     time.Now().Add(time.Hour).Unix(),
	}

	t.Run("bearer header", func(t *testing.T) {
		c := requestContext(t, signToken(t, testSecret, claims), "")
		caller, err := CallerFromRequest(c)
		if err != nil {
			t.Fatalf("CallerFromRequest: %v", err)
		}
		if caller.ID != "user-1" || caller.Role != directory.RoleFreelancer {
			t.Errorf("caller = %+v, want user-1/freelancer", caller)
		}
	})

	t.Run("token query param", func(t *testing.T) {
		c := requestContext(t, "", signToken(t, testSecret, claims))
		caller, err := CallerFromRequest(c)
		if err != nil {
			t.Fatalf("CallerFromRequest: %v", err)
		}
		if caller.ID != "user-1" {
			t.Errorf("caller.ID = %q, want user-1", caller.ID)
		}
	})

	t.Run("missing token", func(t *testing.T) {
		if _, err := CallerFromRequest(requestContext(t, "", "")); err == nil {
			t.Error("expected error for missing token")
		}
	})

	t.Run("wrong secret", func(t *testing.T) {
		c := requestContext(t, signToken(t, "other-secret", claims), "")
		if _, err := CallerFromRequest(c); err == nil {
			t.Error("expected error for token signed with the wrong secret")
		}
	})

	t.Run("expired token", func(t *testing.T) {
		expired := jwt.MapClaims{
			"user_id": "user-1",
			"role":    "freelancer",
			"exp":     time.Now().Add(-time.Hour).Unix(),
		}
		c := requestContext(t, signToken(t, testSecret, expired), "")
		if _, err := CallerFromRequest(c); err == nil {
			t.Error("expected error for expired token")
		}
	})

	t.Run("unknown role", func(t *testing.T) {
		bad := jwt.MapClaims{
			"user_id": "user-1",
			"role":    "admin",
			"exp":     time.Now().Add(time.Hour).Unix(),
		}
		c := requestContext(t, signToken(t, testSecret, bad), "")
		if _, err := CallerFromRequest(c); err == nil {
			t.Error("expected error for unknown role claim")
		}
	})
}

func TestCallerFromContext(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest("GET", "/", nil), httptest.NewRecorder())

	if _, ok := Caller(c); ok {
		t.Error("Caller should fail on an empty context")
	}

	c.Set("user_id", "user-2")
	c.Set("role", "jobPoster")
	caller, ok := Caller(c)
	if !ok {
		t.Fatal("Caller failed with valid context values")
	}
	if caller.ID != "user-2" || caller.Role != directory.RoleJobPoster {
		t.Errorf("caller = %+v, want user-2/jobPoster", caller)
	}
}
