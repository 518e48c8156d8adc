package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"gopkg.in/yaml.v2"
)

type specDoc struct {
	OpenAPI string `yaml:"openapi"`
	Info    struct {
		Title   string `yaml:"title"`
		Version string `yaml:"version"`
	} `yaml:"info"`
	Paths map[string]map[string]interface{} `yaml:"paths"`
}

func TestDocsHandler_Routes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler := NewDocsHandler("0.3.0")
	router.GET("/docs", handler.Docs)
	router.GET("/openapi.yaml", handler.OpenAPISpec)

	tests := []struct {
		path        string
		contentType string
		contains    []string
	}{
		{"/docs", "text/html", []string{"<redoc", `spec-url="/openapi.yaml"`, "logfwd API Documentation", `content="0.3.0"`}},
		{"/openapi.yaml", "application/x-yaml", []string{"openapi:", "logfwd API"}},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, http.NoBody))

			if w.Code != http.StatusOK {
				t.Fatalf("Expected status %d, got %d", http.StatusOK, w.Code)
			}
			if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, tt.contentType) {
				t.Errorf("Expected Content-Type %s, got %s", tt.contentType, ct)
			}
			for _, s := range tt.contains {
				if !strings.Contains(w.Body.String(), s) {
					t.Errorf("Expected body to contain %q", s)
				}
			}
		})
	}
}

func TestDocsHandler_VersionStamped(t *testing.T) {
	handler := NewDocsHandler("1.23.456")

	var doc specDoc
	if err := yaml.Unmarshal(handler.spec, &doc); err != nil {
		t.Fatalf("Served spec is not valid YAML: %v", err)
	}
	if doc.Info.Version != "1.23.456" {
		t.Errorf("Expected version 1.23.456, got %q", doc.Info.Version)
	}
	if doc.Info.Title != "logfwd API" {
		t.Errorf("Expected title to survive, got %q", doc.Info.Title)
	}
	if !strings.HasPrefix(string(handler.spec), "openapi:") {
		t.Error("Expected key order to be kept")
	}
}

func TestStampVersionInvalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not yaml", "openapi: [unclosed"},
		{"info not a mapping", "info: just a string\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := stampVersion([]byte(tt.doc), "1.0.0"); err == nil {
				t.Error("Expected error")
			}
		})
	}
}

func TestDocsHandler_SpecDocumentsRoutes(t *testing.T) {
	var doc specDoc
	if err := yaml.Unmarshal(openapiSpec, &doc); err != nil {
		t.Fatalf("Embedded spec is not valid YAML: %v", err)
	}
	if doc.Info.Version != "0.0.0" {
		t.Errorf("Expected placeholder version in embedded spec, got %q", doc.Info.Version)
	}

	routes := map[string][]string{
		"/api/health":                   {"get"},
		"/api/info":                     {"get"},
		"/api/v1/channels":              {"get"},
		"/api/v1/channels/{key}/events": {"get"},
		"/api/v1/channels/{key}/stream": {"get"},
		"/api/v1/channels/{key}/export": {"post"},
		"/api/v1/listeners":             {"get", "put", "delete"},
		"/api/v1/metrics":               {"get"},
		"/api/v1/logs/system":           {"get", "delete"},
	}
	for path, methods := range routes {
		ops, ok := doc.Paths[path]
		if !ok {
			t.Errorf("Expected spec to document %s", path)
			continue
		}
		for _, m := range methods {
			if _, ok := ops[m]; !ok {
				t.Errorf("Expected spec to document %s %s", strings.ToUpper(m), path)
			}
		}
	}
}
