package handler

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/gogotex/guestbook/internal/guestbook"
	"github.com/gogotex/guestbook/internal/guestbook/service"
	"github.com/gogotex/guestbook/pkg/logger"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// Handler serves the guestbook routes.
type Handler struct {
	svc  *service.Service
	tmpl *template.Template
}

func New(svc *service.Service) *Handler {
	return &Handler{svc: svc, tmpl: pageTemplates}
}

// RegisterRoutes mounts the guestbook routes on r. signMW runs before both
// sign routes, e.g. a per-guestbook write limiter.
func RegisterRoutes(r gin.IRoutes, svc *service.Service, signMW ...gin.HandlerFunc) {
	h := New(svc)
	sign := append(signMW[:len(signMW):len(signMW)], h.Sign)
	r.GET("/", h.List)
	r.POST("/sign", sign...)
	// link-based signing
	r.GET("/sign", sign...)
	r.GET("/data", h.Data)
	r.POST("/del", h.Delete)
}

// List renders the latest greetings of one guestbook.
func (h *Handler) List(c *gin.Context) {
	var req listRequest
	if !bind(c, &req) {
		return
	}
	name := guestbook.Key(req.GuestbookName)
	list, err := h.svc.Latest(c.Request.Context(), name)
	if err != nil {
		fail(c, err)
		return
	}
	// render fully before writing so errors never produce half a page
	var buf bytes.Buffer
	err = h.tmpl.ExecuteTemplate(&buf, "index.html", gin.H{
		"Greetings":     list,
		"Name":          name,
		"GuestbookName": template.URL(url.QueryEscape(name)),
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

// Sign stores a greeting and redirects back to its guestbook page.
func (h *Handler) Sign(c *gin.Context) {
	var req signRequest
	if !bind(c, &req) {
		return
	}
	name := guestbook.Key(req.GuestbookName)
	if _, err := h.svc.Sign(c.Request.Context(), name, req.Content); err != nil {
		fail(c, err)
		return
	}
	q := url.Values{"guestbook_name": {name}}
	c.Redirect(http.StatusFound, "/?"+q.Encode())
}

// Data exports one numeric column of a guestbook for chart polling.
func (h *Handler) Data(c *gin.Context) {
	var req dataRequest
	if !bind(c, &req) {
		return
	}
	since := service.DefaultSince
	if req.LastTime != "" {
		t, err := service.ParseTime(req.LastTime)
		if err != nil {
			fail(c, err)
			return
		}
		since = t
	}
	series, err := h.svc.Series(c.Request.Context(), service.SeriesQuery{
		Guestbook: req.GuestbookName,
		Index:     req.Ind,
		Since:     since,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, series)
}

// Delete removes one page of greetings and schedules the next page.
func (h *Handler) Delete(c *gin.Context) {
	var req deleteRequest
	if !bind(c, &req) {
		return
	}
	res, err := h.svc.PurgePage(c.Request.Context(), req.Bookmark)
	if err != nil {
		fail(c, err)
		return
	}
	logger.Infof("purge: deleted %d greetings (more=%v scheduled=%v)", res.Deleted, res.More, res.Scheduled)
	c.Status(http.StatusOK)
}

func bind(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindWith(req, binding.Form); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}

func fail(c *gin.Context, err error) {
	_ = c.Error(err)
	if errors.Is(err, service.ErrBadRequest) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	logger.Errorf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}
