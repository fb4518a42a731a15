// Package swagger serves the embedded OpenAPI document and a Swagger UI page.
package swagger

import (
	_ "embed"
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	// BasePath is where the docs are mounted.
	BasePath = "/swagger"
	docPath  = BasePath + "/doc.yaml"
	uiPath   = BasePath + "/index.html"
)

//go:embed openapi.yaml
var openAPIDoc []byte

// RegisterRoutes mounts the document, the UI and a redirect from BasePath.
func RegisterRoutes(r gin.IRoutes) {
	r.GET(docPath, serveDoc)
	r.GET(uiPath, serveUI)
	r.GET(BasePath, func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, uiPath)
	})
}

func serveDoc(c *gin.Context) {
	c.Data(http.StatusOK, "application/yaml", openAPIDoc)
}

func serveUI(c *gin.Context) {
	c.Header("Cache-Control", "no-cache")
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(uiPage))
}

const uiPage = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>Itinerary API</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css">
</head>
<body>
  <div id="docs"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    window.ui = SwaggerUIBundle({ url: "` + docPath + `", dom_id: "#docs", deepLinking: true });
  </script>
</body>
</html>`
