package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers the API docs for the guestbook service.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(rg gin.IRoutes) {
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(swaggerJSON))
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>guestbook API docs</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@4/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/swagger/doc.json',
        dom_id: '#swagger-ui',
      })
    </script>
  </body>
</html>`

const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "guestbook", "version": "v1.0.0" },
  "paths": {
    "/": {
      "get": {
        "summary": "Render the latest 10 greetings of a guestbook",
        "parameters": [ { "name": "guestbook_name", "in": "query", "schema": { "type": "string", "default": "default_guestbook" } } ],
        "responses": { "200": { "description": "HTML page" } }
      }
    },
    "/sign": {
      "post": {
        "summary": "Add a greeting",
        "parameters": [ { "name": "guestbook_name", "in": "query", "schema": { "type": "string", "default": "default_guestbook" } } ],
        "requestBody": { "content": { "application/x-www-form-urlencoded": { "schema": {"type":"object","properties":{"guestbook_name":{"type":"string"},"content":{"type":"string"}}}}}},
        "responses": { "302": { "description": "redirect to /?guestbook_name=..." } }
      }
    },
    "/data": {
      "get": {
        "summary": "Numeric series parsed from comma-separated greeting content",
        "parameters": [
          { "name": "guestbook_name", "in": "query", "schema": { "type": "string", "default": "default_guestbook" } },
          { "name": "ind", "in": "query", "schema": { "type": "integer", "default": 0 } },
          { "name": "last_time", "in": "query", "schema": { "type": "string", "default": "2000-01-01T00:00:00.000100" } }
        ],
        "responses": {
          "200": { "description": "series", "content": { "application/json": { "schema": {"type":"object","properties":{"d":{"type":"array","items":{"type":"number"}},"t":{"type":"array","items":{"type":"integer"}},"lt":{"type":"string"}}}}}},
          "400": { "description": "malformed ind or last_time" }
        }
      }
    },
    "/del": {
      "post": {
        "summary": "Delete one page of greetings and schedule the next",
        "parameters": [ { "name": "bookmark", "in": "query", "schema": { "type": "string" } } ],
        "responses": { "200": { "description": "page deleted" }, "400": { "description": "malformed bookmark" } }
      }
    },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } },
    "/metrics": { "get": { "summary": "Prometheus metrics", "responses": { "200": { "description": "exposition format" } } } }
  }
}`
