package echoweb

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core/school"
)

type parentHandler struct {
	deps *ServerDeps
}

// Parent links are a teacher-only surface end to end, including the list page.
func registerParentRoutes(e *echo.Echo, deps *ServerDeps) {
	h := parentHandler{deps: deps}

	e.GET("/manage-parents", h.manage, teacherRequiredMiddleware("управлять родителями"))
	e.GET("/add-parent", h.addPage, teacherRequiredMiddleware("добавлять родителей"))
	e.POST("/add-parent", h.add, teacherRequiredMiddleware("добавлять родителей"))
	e.GET("/edit-parent", h.editPage, teacherRequiredMiddleware("редактировать родителей"))
	e.POST("/edit-parent", h.edit, teacherRequiredMiddleware("редактировать родителей"))
	e.GET("/delete-parent", h.delete, teacherRequiredMiddleware("удалять родителей"))
	e.POST("/delete-parent", h.delete, teacherRequiredMiddleware("удалять родителей"))
}

type parentRow struct {
	school.ParentLink
	StudentName string
}

func (h parentHandler) manage(ctx echo.Context) error {
	links, err := h.deps.SchoolSvc.QueryParentLinks()
	if err != nil {
		return errors.Wrap(err, "querying parent links")
	}
	resolver := newStudentNameResolver(h.deps.UserSvc)
	rows := make([]parentRow, 0, len(links))
	for _, p := range links {
		rows = append(rows, parentRow{ParentLink: p, StudentName: resolver.Resolve(p.StudentUsername)})
	}

	data, err := newTemplateData(ctx, h.deps, "Родители")
	if err != nil {
		return err
	}
	data.Data["Parents"] = rows
	return ctx.Render(http.StatusOK, "manage-parents.html", data)
}

func (h parentHandler) addPage(ctx echo.Context) error {
	students, err := h.deps.UserSvc.QueryStudents()
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	data, err := newTemplateData(ctx, h.deps, "Добавить родителя")
	if err != nil {
		return err
	}
	data.Data["Students"] = students
	return ctx.Render(http.StatusOK, "add-parent.html", data)
}

func (h parentHandler) add(ctx echo.Context) error {
	usr, _ := getContextUser(ctx)

	var form school.NewParentLink
	if err := ctx.Bind(&form); err != nil {
		return errors.Wrap(err, "binding parent form")
	}
	if err := form.Validate(h.deps.Validate); err != nil {
		text, ok := validationErrorText(err, h.deps.Translator)
		if !ok {
			return err
		}
		students, serr := h.deps.UserSvc.QueryStudents()
		if serr != nil {
			return errors.Wrap(serr, "querying students")
		}
		data, derr := newTemplateData(ctx, h.deps, "Добавить родителя")
		if derr != nil {
			return derr
		}
		data.Error = text
		data.Data["Students"] = students
		return ctx.Render(http.StatusOK, "add-parent.html", data)
	}

	if _, err := h.deps.SchoolSvc.CreateParentLink(form, usr); err != nil {
		return errors.Wrap(err, "creating parent link")
	}
	return ctx.Redirect(http.StatusFound, "/manage-parents")
}

func (h parentHandler) editPage(ctx echo.Context) error {
	id, ok := intIDParam(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "Родитель не найден")
	}
	link, err := h.deps.SchoolSvc.GetParentLink(id)
	if err != nil {
		if errors.Cause(err) == school.ErrParentNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Родитель не найден")
		}
		return errors.Wrap(err, "getting parent link")
	}
	students, err := h.deps.UserSvc.QueryStudents()
	if err != nil {
		return errors.Wrap(err, "querying students")
	}

	data, err := newTemplateData(ctx, h.deps, "Редактировать родителя")
	if err != nil {
		return err
	}
	data.Data["Parent"] = link
	data.Data["Students"] = students
	return ctx.Render(http.StatusOK, "edit-parent.html", data)
}

func (h parentHandler) edit(ctx echo.Context) error {
	usr, _ := getContextUser(ctx)

	var form school.NewParentLink
	if err := ctx.Bind(&form); err != nil {
		return errors.Wrap(err, "binding parent form")
	}
	if err := form.Validate(h.deps.Validate); err != nil {
		if _, ok := validationErrorText(err, h.deps.Translator); !ok {
			return err
		}
		return ctx.Redirect(http.StatusFound, "/manage-parents")
	}

	id, err := formIntValue(ctx, "id")
	if err != nil {
		h.deps.Logger.Warn("editing parent link: bad id", err)
		return ctx.Redirect(http.StatusFound, "/manage-parents")
	}
	if _, err = h.deps.SchoolSvc.UpdateParentLink(id, form, usr); err != nil {
		if errors.Cause(err) == school.ErrParentNotFound {
			h.deps.Logger.Warn("editing missing parent link", id)
			return ctx.Redirect(http.StatusFound, "/manage-parents")
		}
		return errors.Wrap(err, "updating parent link")
	}
	return ctx.Redirect(http.StatusFound, "/manage-parents")
}

func (h parentHandler) delete(ctx echo.Context) error {
	if id, ok := intIDParam(ctx); ok {
		if err := h.deps.SchoolSvc.DeleteParentLink(id); err != nil {
			return errors.Wrap(err, "deleting parent link")
		}
	}
	return ctx.Redirect(http.StatusFound, "/manage-parents")
}
