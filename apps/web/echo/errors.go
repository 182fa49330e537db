package echoweb

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
)

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that renders
// plain HTML error bodies.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var body string

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			msg := fmt.Sprintf("%v", origErr.Message)
			switch code {
			case http.StatusForbidden:
				body = "<h1>Доступ запрещен</h1><p>" + msg + "</p>"
			case http.StatusNotFound:
				if msg == http.StatusText(http.StatusNotFound) {
					body = "Not Found"
				} else {
					body = "<h1>" + msg + "</h1>"
				}
			default:
				body = "<h1>" + msg + "</h1>"
			}
		default: // any other error is a server error
			code = http.StatusInternalServerError
			body = "<h1>" + http.StatusText(http.StatusInternalServerError) + "</h1>"

			args := []interface{}{errors.Wrap(err, "request failed")}
			if usr, ok := getContextUser(ctx); ok {
				args = append(args, usr)
			}
			logger.Error(http.StatusText(code), args...)

			// shutting down...
			if core.IsShutdown(err) {
				signalShutdown()
			}
		}

		if ctx.Echo().Debug && code == http.StatusInternalServerError {
			body = "<h1>" + err.Error() + "</h1>"
		}

		// Send response
		if !ctx.Response().Committed {
			var herr error
			if ctx.Request().Method == http.MethodHead {
				herr = ctx.NoContent(code)
			} else {
				herr = ctx.HTML(code, body)
			}
			if herr != nil {
				ctx.Echo().Logger.Error(herr)
			}
		}
	}
}
