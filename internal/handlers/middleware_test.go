package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"microwave/internal/service"

	"github.com/gin-gonic/gin"
)

// minimal router wiring only the middleware + a protected endpoint
func newMiddlewareOnlyRouter(s *service.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewHandler(s, nil)
	r.GET("/secure", h.operatorMiddleware, func(c *gin.Context) {
		fromGin, _ := currentOperator(c)
		fromCtx, _ := service.OperatorFrom(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"ok": true, "operator": fromGin, "request_operator": fromCtx})
	})
	return r
}

func TestOperatorMiddleware_Errors(t *testing.T) {
	type want struct {
		code   int
		errMsg string
	}
	cases := []struct {
		name   string
		header string
		want   want
	}{
		{
			name:   "missing header",
			header: "",
			want:   want{code: http.StatusUnauthorized, errMsg: "missing Authorization header"},
		},
		{
			name:   "invalid scheme",
			header: "Token abc",
			// actual implementation returns "invalid Authorization header format"
			want: want{code: http.StatusUnauthorized, errMsg: "invalid Authorization header format"},
		},
		{
			name:   "bearer without token",
			header: "Bearer",
			want:   want{code: http.StatusUnauthorized, errMsg: "invalid Authorization header format"},
		},
		{
			name:   "expired/invalid token",
			header: "Bearer expired",
			want:   want{code: http.StatusUnauthorized, errMsg: "invalid or expired token"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ops := signedIn(1)
			if tc.name == "expired/invalid token" {
				ops.authErr = errors.New("expired")
			}
			s := &service.Service{Operators: ops}
			r := newMiddlewareOnlyRouter(s)

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/secure", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			r.ServeHTTP(w, req)

			if w.Code != tc.want.code {
				t.Fatalf("status: got %d, want %d (body=%s)", w.Code, tc.want.code, w.Body.String())
			}

			var out struct {
				Error string `json:"error"`
			}
			_ = json.Unmarshal(w.Body.Bytes(), &out)
			if out.Error != tc.want.errMsg {
				t.Fatalf("error message: got %q, want %q", out.Error, tc.want.errMsg)
			}
		})
	}
}

func TestOperatorMiddleware_AttachesOperator(t *testing.T) {
	ops := &mockOperators{op: service.Operator{ID: 123, Name: "alice"}}
	r := newMiddlewareOnlyRouter(&service.Service{Operators: ops})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body=%s", w.Code, http.StatusOK, w.Body.String())
	}

	var resp struct {
		OK              bool             `json:"ok"`
		Operator        service.Operator `json:"operator"`
		RequestOperator service.Operator `json:"request_operator"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	want := service.Operator{ID: 123, Name: "alice"}
	if !resp.OK || resp.Operator != want {
		t.Fatalf("gin context operator: %+v", resp)
	}
	if resp.RequestOperator != want {
		t.Fatalf("request context operator: got %+v, want %+v", resp.RequestOperator, want)
	}
	if ops.lastToken != "good-token" {
		t.Fatalf("Authenticate got %q, want %q", ops.lastToken, "good-token")
	}
}
