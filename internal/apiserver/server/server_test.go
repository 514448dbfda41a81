package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePath(t *testing.T) {
	cases := map[string]string{
		"/users/getUserById/6512bd43d9ca": "/users/getUserById/{id}",
		"/users/updateUser/abc":           "/users/updateUser/{id}",
		"/auth/getuser/0xabc":             "/auth/getuser/{id}",
		"/users/reportedUsers/0xabc":      "/users/reportedUsers/{id}",
		"/users/reportedUsers":            "/users/reportedUsers",
		"/users/userList":                 "/users/userList",
		"/health":                         "/health",
	}
	for in, want := range cases {
		assert.Equal(t, want, normalizePath(in), "path %s", in)
	}
}

func TestCORSMiddleware(t *testing.T) {
	var called bool
	h := corsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	// 预检请求直接放行，不进业务处理器
	req := httptest.NewRequest("OPTIONS", "/users/userList", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, called)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "roleid")

	req = httptest.NewRequest("GET", "/health", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.True(t, called)
}

func TestHealth(t *testing.T) {
	h := &Handler{}
	rec := httptest.NewRecorder()
	h.Health(rec, httptest.NewRequest("GET", "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
