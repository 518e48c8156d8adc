package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/txn2/logfwd/pkg/fwdapi/types"
)

// serve mounts one handler behind mw and performs a single request
func serve(mw gin.HandlerFunc, method string, h gin.HandlerFunc) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(mw)
	if h != nil {
		r.Handle(method, "/x", h)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, "/x?limit=5", http.NoBody))
	return w
}

func ok(c *gin.Context) { c.String(http.StatusOK, "ok") }

func TestMiddlewareStatus(t *testing.T) {
	errBoom := errors.New("boom")

	tests := []struct {
		name     string
		mw       gin.HandlerFunc
		method   string
		handler  gin.HandlerFunc
		status   int
		errCode  string
		wantBody string
	}{
		{"recovery turns panic into 500", Recovery(), http.MethodGet,
			func(*gin.Context) { panic("channel vanished") }, http.StatusInternalServerError, "INTERNAL_ERROR", ""},
		{"request logger passes through", RequestLogger(), http.MethodGet, ok, http.StatusOK, "", "ok"},
		{"cors preflight short circuits", CORS(), http.MethodOptions, nil, http.StatusNoContent, "", ""},
		{"error handler keeps status", ErrorHandler(), http.MethodGet,
			func(c *gin.Context) { _ = c.AbortWithError(http.StatusBadRequest, errBoom) }, http.StatusBadRequest, "REQUEST_ERROR", ""},
		{"error handler defaults to 500", ErrorHandler(), http.MethodGet,
			func(c *gin.Context) { _ = c.Error(errBoom) }, http.StatusInternalServerError, "REQUEST_ERROR", ""},
		{"error handler keeps written body", ErrorHandler(), http.MethodGet,
			func(c *gin.Context) {
				c.String(http.StatusConflict, "conflict")
				_ = c.Error(errBoom)
			}, http.StatusConflict, "", "conflict"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(tt.mw, tt.method, tt.handler)

			if w.Code != tt.status {
				t.Errorf("status = %d, want %d", w.Code, tt.status)
			}
			if tt.wantBody != "" && w.Body.String() != tt.wantBody {
				t.Errorf("body = %q, want %q", w.Body.String(), tt.wantBody)
			}
			if tt.errCode == "" {
				return
			}
			var resp types.Response
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("body %q is not an envelope: %v", w.Body.String(), err)
			}
			if resp.Success || resp.Error == nil || resp.Error.Code != tt.errCode {
				t.Errorf("unexpected envelope %+v", resp)
			}
		})
	}
}

func TestMiddlewareHeaders(t *testing.T) {
	tests := []struct {
		name   string
		mw     gin.HandlerFunc
		header string
		want   string
	}{
		{"cors origin", CORS(), "Access-Control-Allow-Origin", "*"},
		{"cors methods", CORS(), "Access-Control-Allow-Methods", "DELETE"},
		{"no cache", NoCache(), "Cache-Control", "no-store"},
		{"pragma", NoCache(), "Pragma", "no-cache"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(tt.mw, http.MethodGet, ok)
			if got := w.Header().Get(tt.header); !strings.Contains(got, tt.want) {
				t.Errorf("%s = %q, want it to contain %q", tt.header, got, tt.want)
			}
		})
	}
}
