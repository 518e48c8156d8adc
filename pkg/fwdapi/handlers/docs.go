package handlers

import (
	_ "embed"
	"fmt"
	"html"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"
)

//go:embed openapi.yaml
var openapiSpec []byte

// DocsHandler serves the OpenAPI document and a Redoc page rendering it
type DocsHandler struct {
	spec []byte
	page string
}

// NewDocsHandler stamps version into the embedded OpenAPI document
func NewDocsHandler(version string) *DocsHandler {
	spec, err := stampVersion(openapiSpec, version)
	if err != nil {
		log.Warnf("OpenAPI document served without version: %v", err)
		spec = openapiSpec
	}
	return &DocsHandler{
		spec: spec,
		page: fmt.Sprintf(redocPage, html.EscapeString(version)),
	}
}

// stampVersion sets info.version, keeping key order
func stampVersion(doc []byte, version string) ([]byte, error) {
	var root yaml.MapSlice
	if err := yaml.Unmarshal(doc, &root); err != nil {
		return nil, err
	}
	for i, item := range root {
		if item.Key != "info" {
			continue
		}
		info, ok := item.Value.(yaml.MapSlice)
		if !ok {
			return nil, fmt.Errorf("info is %T, not a mapping", item.Value)
		}
		for j := range info {
			if info[j].Key == "version" {
				info[j].Value = version
			}
		}
		root[i].Value = info
	}
	return yaml.Marshal(root)
}

const redocPage = `<!DOCTYPE html>
<html>
<head>
  <title>logfwd API Documentation</title>
  <meta charset="utf-8"/>
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <meta name="logfwd-version" content="%s">
  <style>body { margin: 0; padding: 0; }</style>
</head>
<body>
  <redoc spec-url="/openapi.yaml" theme='{"colors": {"primary": {"main": "#0f766e"}}, "sidebar": {"width": "240px"}}'></redoc>
  <script src="https://cdn.redoc.ly/redoc/latest/bundles/redoc.standalone.js"></script>
</body>
</html>`

// Docs handles GET /docs
func (h *DocsHandler) Docs(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(h.page))
}

// OpenAPISpec handles GET /openapi.yaml
func (h *DocsHandler) OpenAPISpec(c *gin.Context) {
	c.Header("Access-Control-Allow-Origin", "*")
	c.Data(http.StatusOK, "application/x-yaml", h.spec)
}
