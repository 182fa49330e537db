package echoweb

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core/notification"
)

type notificationHandler struct {
	deps *ServerDeps
}

func registerNotificationRoutes(e *echo.Echo, deps *ServerDeps) {
	h := notificationHandler{deps: deps}
	auth := loginRequiredMiddleware()

	e.GET("/mark-notification-read", h.markRead, auth)
	e.POST("/mark-notification-read", h.markRead, auth)
}

// markRead flips the caller's own notification to read and sends them back to
// the page they came from. Unknown or foreign ids are ignored.
func (h notificationHandler) markRead(ctx echo.Context) error {
	usr, _ := getContextUser(ctx)

	if id, ok := intIDParam(ctx); ok {
		if err := h.deps.NotifSvc.MarkRead(id, usr.ID); err != nil && errors.Cause(err) != notification.ErrNotFound {
			return errors.Wrap(err, "marking notification read")
		}
	}

	target := ctx.Request().Referer()
	if target == "" {
		target = "/dashboard"
	}
	return ctx.Redirect(http.StatusFound, target)
}
