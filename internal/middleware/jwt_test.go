package middleware

import (
    "net/http"
    "net/http/httptest"
    "testing"
    "time"

    "github.com/golang-jwt/jwt/v5"
    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
    t.Helper()
    tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
    s, err := tok.SignedString([]byte(secret))
    require.NoError(t, err)
    return s
}

// okHandler echoes back the identity the middleware stored in context.
func okHandler(c echo.Context) error {
    return c.JSON(http.StatusOK, echo.Map{
        "user_id": c.Get("user_id"),
        "role":    c.Get("role"),
    })
}

func doRequest(t *testing.T, mw echo.MiddlewareFunc, authHeader string) *httptest.ResponseRecorder {
    t.Helper()
    e := echo.New()
    req := httptest.NewRequest(http.MethodGet, "/", nil)
    if authHeader != "" {
        req.Header.Set("Authorization", authHeader)
    }
    rec := httptest.NewRecorder()
    c := e.NewContext(req, rec)
    err := mw(okHandler)(c)
    require.NoError(t, err)
    return rec
}

func TestJWTAuthRejectsMissingHeader(t *testing.T) {
    rec := doRequest(t, JWTAuth(testSecret), "")
    assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthRejectsMalformedHeader(t *testing.T) {
    rec := doRequest(t, JWTAuth(testSecret), "Token abc123")
    assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthRejectsWrongSecret(t *testing.T) {
    raw := signToken(t, "other-secret", jwt.MapClaims{"sub": "42", "role": "DRIVER"})
    rec := doRequest(t, JWTAuth(testSecret), "Bearer "+raw)
    assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthRejectsExpiredToken(t *testing.T) {
    raw := signToken(t, testSecret, jwt.MapClaims{
        "sub":  "42",
        "role": "DRIVER",
        "exp":  time.Now().Add(-time.Minute).Unix(),
    })
    rec := doRequest(t, JWTAuth(testSecret), "Bearer "+raw)
    assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthInjectsClaims(t *testing.T) {
    raw := signToken(t, testSecret, jwt.MapClaims{"sub": "42", "role": "PASSENGER"})
    rec := doRequest(t, JWTAuth(testSecret), "Bearer "+raw)

    assert.Equal(t, http.StatusOK, rec.Code)
    assert.JSONEq(t, `{"user_id":"42","role":"PASSENGER"}`, rec.Body.String())
}

func TestRequireRole(t *testing.T) {
    e := echo.New()

    call := func(role interface{}) *httptest.ResponseRecorder {
        req := httptest.NewRequest(http.MethodGet, "/", nil)
        rec := httptest.NewRecorder()
        c := e.NewContext(req, rec)
        if role != nil {
            c.Set("role", role)
        }
        err := RequireRole("DRIVER", "ADMIN")(okHandler)(c)
        require.NoError(t, err)
        return rec
    }

    assert.Equal(t, http.StatusOK, call("DRIVER").Code)
    assert.Equal(t, http.StatusOK, call("ADMIN").Code)
    assert.Equal(t, http.StatusForbidden, call("PASSENGER").Code)
    assert.Equal(t, http.StatusForbidden, call(nil).Code)
    assert.Equal(t, http.StatusForbidden, call(123).Code)
}
