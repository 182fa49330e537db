package echoweb

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/user"
)

// sessionUserMiddleware resolves the session cookie into a user and stores it
// in the request context. Anonymous requests pass through; the per-route
// middlewares decide what to do with them.
func sessionUserMiddleware(conf *core.Config, svc user.ServiceInterface) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			cookie, err := ctx.Cookie(conf.Server.SessionCookieName)
			if err != nil || cookie.Value == "" {
				return next(ctx)
			}
			claims, err := parseToken(conf, cookie.Value)
			if err != nil {
				return next(ctx)
			}
			usr, err := svc.GetByUsername(claims.Username)
			if err != nil {
				return next(ctx)
			}
			ctx.Set(contextUserKey, usr)
			return next(ctx)
		}
	}
}

// loginRequiredMiddleware redirects anonymous requests to the login page.
func loginRequiredMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			if _, ok := getContextUser(ctx); !ok {
				return ctx.Redirect(http.StatusFound, "/login")
			}
			return next(ctx)
		}
	}
}

// teacherRequiredMiddleware rejects anonymous and non-teacher requests with a
// 403 page; reason completes the "Только учителя могут ..." sentence.
func teacherRequiredMiddleware(reason string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			usr, ok := getContextUser(ctx)
			if !ok || !usr.IsTeacher() {
				return echo.NewHTTPError(http.StatusForbidden, "Только учителя могут "+reason)
			}
			return next(ctx)
		}
	}
}
