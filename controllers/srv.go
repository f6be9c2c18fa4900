// controllers/srv.go
package controllers

import (
	"net/http"

	"workshop_tool_tracker/app"
	"workshop_tool_tracker/apperr"
	"workshop_tool_tracker/logger"
	"workshop_tool_tracker/services"

	"github.com/gin-gonic/gin"
)

type Srv struct {
	Tools         *services.ToolService
	Borrows       *services.BorrowService
	Notifications *services.NotificationService
	Log           *logger.Logger

	ping func(*gin.Context) error
	prod bool
}

func GetSrv(a *app.App) *Srv {
	return &Srv{
		Tools:         a.Services.Tools,
		Borrows:       a.Services.Borrows,
		Notifications: a.Services.Notifications,
		Log:           a.Log,
		ping:          func(c *gin.Context) error { return a.Ping(c.Request.Context()) },
		prod:          a.Config.App.IsProd(),
	}
}

// --- helpers ---

// ok writes {success: true, message, ...extra}.
func ok(c *gin.Context, status int, message string, extra app.H) {
	body := app.H{"success": true, "message": message}
	for k, v := range extra {
		body[k] = v
	}
	c.JSON(status, body)
}

// fail maps err to its status. Validation, not-found and conflict errors
// carry their own message; anything else reports fallback, plus the cause
// outside production.
func (s *Srv) fail(c *gin.Context, err error, fallback string) {
	code := apperr.CodeOf(err)
	meta := apperr.MetadataFor(code)
	body := app.H{"success": false}

	if typed := apperr.As(err); typed != nil && meta.ExposeMessage {
		body["message"] = typed.Message()
	} else {
		body["message"] = fallback
		if !s.prod {
			body["error"] = err.Error()
		}
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(meta.HTTPStatus, body)
}

// bindJSON decodes the body, answering 400 on malformed input.
func (s *Srv) bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		s.fail(c, apperr.Wrap(apperr.CodeValidation, err, "Invalid JSON body"), "Invalid JSON body")
		return false
	}
	return true
}

func (s *Srv) Healthz(c *gin.Context) {
	if err := s.ping(c); err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusServiceUnavailable, app.H{"ok": false})
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}

func (s *Srv) Hello(c *gin.Context) {
	ok(c, http.StatusOK, "Hello Workshop Tool Tracking System!", nil)
}
