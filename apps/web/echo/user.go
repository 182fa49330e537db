package echoweb

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core/user"
)

type userHandler struct {
	deps *ServerDeps
}

func registerUserRoutes(e *echo.Echo, deps *ServerDeps) {
	h := userHandler{deps: deps}

	e.GET("/login", h.loginPage)
	e.POST("/login", h.login)
	e.POST("/register", h.register)
	e.GET("/logout", h.logout)

	auth := loginRequiredMiddleware()
	e.GET("/dashboard", h.dashboard, auth)
	e.GET("/profile", h.profile, auth)
	e.GET("/change-password", h.changePasswordPage, auth)
	e.POST("/change-password", h.changePassword, auth)
}

func (h userHandler) loginPage(ctx echo.Context) error {
	data, err := newTemplateData(ctx, h.deps, "Вход")
	if err != nil {
		return err
	}
	return ctx.Render(http.StatusOK, "login.html", data)
}

func (h userHandler) login(ctx echo.Context) error {
	uname := ctx.FormValue("username")
	pwd := ctx.FormValue("password")

	usr, err := authenticate(uname, pwd, h.deps.UserSvc)
	if err != nil {
		if errors.Cause(err) != errAuthenticationFailed {
			return err
		}
		data, derr := newTemplateData(ctx, h.deps, "Вход")
		if derr != nil {
			return derr
		}
		data.Error = errAuthenticationFailed.Error()
		return ctx.Render(http.StatusOK, "login.html", data)
	}
	if err = setSessionCookie(ctx, h.deps.Conf, usr); err != nil {
		return err
	}
	return ctx.Redirect(http.StatusFound, "/dashboard")
}

func (h userHandler) register(ctx echo.Context) error {
	var form user.NewUser
	if err := ctx.Bind(&form); err != nil {
		return errors.Wrap(err, "binding registration form")
	}
	if err := form.Validate(h.deps.Validate, h.deps.UserSvc); err != nil {
		text, ok := validationErrorText(err, h.deps.Translator)
		if !ok {
			return err
		}
		data, derr := newTemplateData(ctx, h.deps, "Вход")
		if derr != nil {
			return derr
		}
		data.RegError = text
		return ctx.Render(http.StatusOK, "login.html", data)
	}

	usr, err := h.deps.UserSvc.Create(form)
	if err != nil {
		return errors.Wrap(err, "creating user")
	}
	if err = setSessionCookie(ctx, h.deps.Conf, usr); err != nil {
		return err
	}
	return ctx.Redirect(http.StatusFound, "/dashboard")
}

func (h userHandler) logout(ctx echo.Context) error {
	clearSessionCookie(ctx, h.deps.Conf)
	return ctx.Redirect(http.StatusFound, "/login")
}

func (h userHandler) dashboard(ctx echo.Context) error {
	data, err := newTemplateData(ctx, h.deps, "Панель управления")
	if err != nil {
		return err
	}
	return ctx.Render(http.StatusOK, "dashboard.html", data)
}

func (h userHandler) profile(ctx echo.Context) error {
	data, err := newTemplateData(ctx, h.deps, "Профиль")
	if err != nil {
		return err
	}
	return ctx.Render(http.StatusOK, "profile.html", data)
}

func (h userHandler) changePasswordPage(ctx echo.Context) error {
	data, err := newTemplateData(ctx, h.deps, "Смена пароля")
	if err != nil {
		return err
	}
	return ctx.Render(http.StatusOK, "change-password.html", data)
}

func (h userHandler) changePassword(ctx echo.Context) error {
	usr, _ := getContextUser(ctx)

	var form user.ChangePassword
	if err := ctx.Bind(&form); err != nil {
		return errors.Wrap(err, "binding password form")
	}
	if err := form.Validate(usr, h.deps.Validate); err != nil {
		text, ok := validationErrorText(err, h.deps.Translator)
		if !ok {
			return err
		}
		data, derr := newTemplateData(ctx, h.deps, "Смена пароля")
		if derr != nil {
			return derr
		}
		data.Error = text
		return ctx.Render(http.StatusOK, "change-password.html", data)
	}

	if _, err := h.deps.UserSvc.SetPassword(usr, form.NewPassword); err != nil {
		return errors.Wrap(err, "changing password")
	}
	return ctx.Redirect(http.StatusFound, "/dashboard")
}
