package echoweb

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core/school"
)

type remarkHandler struct {
	deps *ServerDeps
}

func registerRemarkRoutes(e *echo.Echo, deps *ServerDeps) {
	h := remarkHandler{deps: deps}
	auth := loginRequiredMiddleware()

	e.GET("/manage-remarks", h.manage, auth)
	e.GET("/add-remark", h.addPage, teacherRequiredMiddleware("добавлять замечания"))
	e.POST("/add-remark", h.add, teacherRequiredMiddleware("добавлять замечания"))
	e.GET("/edit-remark", h.editPage, teacherRequiredMiddleware("редактировать замечания"))
	e.POST("/edit-remark", h.edit, teacherRequiredMiddleware("редактировать замечания"))
	e.GET("/delete-remark", h.delete, teacherRequiredMiddleware("удалять замечания"))
	e.POST("/delete-remark", h.delete, teacherRequiredMiddleware("удалять замечания"))
}

type remarkRow struct {
	school.Remark
	StudentName string
}

func (h remarkHandler) manage(ctx echo.Context) error {
	usr, _ := getContextUser(ctx)

	remarks, err := h.deps.SchoolSvc.QueryRemarks(usr)
	if err != nil {
		return errors.Wrap(err, "querying remarks")
	}
	resolver := newStudentNameResolver(h.deps.UserSvc)
	rows := make([]remarkRow, 0, len(remarks))
	for _, r := range remarks {
		rows = append(rows, remarkRow{Remark: r, StudentName: resolver.Resolve(r.Student)})
	}

	data, err := newTemplateData(ctx, h.deps, "Замечания")
	if err != nil {
		return err
	}
	data.Data["Remarks"] = rows
	return ctx.Render(http.StatusOK, "manage-remarks.html", data)
}

func (h remarkHandler) addPage(ctx echo.Context) error {
	students, err := h.deps.UserSvc.QueryStudents()
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	data, err := newTemplateData(ctx, h.deps, "Добавить замечание")
	if err != nil {
		return err
	}
	data.Data["Students"] = students
	return ctx.Render(http.StatusOK, "add-remark.html", data)
}

func (h remarkHandler) add(ctx echo.Context) error {
	usr, _ := getContextUser(ctx)

	var form school.NewRemark
	if err := ctx.Bind(&form); err != nil {
		return errors.Wrap(err, "binding remark form")
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
		data, derr := newTemplateData(ctx, h.deps, "Добавить замечание")
		if derr != nil {
			return derr
		}
		data.Error = text
		data.Data["Students"] = students
		return ctx.Render(http.StatusOK, "add-remark.html", data)
	}

	if _, err := h.deps.SchoolSvc.CreateRemark(form, usr); err != nil {
		return errors.Wrap(err, "creating remark")
	}
	return ctx.Redirect(http.StatusFound, "/manage-remarks")
}

func (h remarkHandler) editPage(ctx echo.Context) error {
	id, ok := intIDParam(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "Замечание не найдено")
	}
	remark, err := h.deps.SchoolSvc.GetRemark(id)
	if err != nil {
		if errors.Cause(err) == school.ErrRemarkNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Замечание не найдено")
		}
		return errors.Wrap(err, "getting remark")
	}
	students, err := h.deps.UserSvc.QueryStudents()
	if err != nil {
		return errors.Wrap(err, "querying students")
	}

	data, err := newTemplateData(ctx, h.deps, "Редактировать замечание")
	if err != nil {
		return err
	}
	data.Data["Remark"] = remark
	data.Data["Students"] = students
	return ctx.Render(http.StatusOK, "edit-remark.html", data)
}

func (h remarkHandler) edit(ctx echo.Context) error {
	usr, _ := getContextUser(ctx)

	var form school.NewRemark
	if err := ctx.Bind(&form); err != nil {
		return errors.Wrap(err, "binding remark form")
	}
	if err := form.Validate(h.deps.Validate); err != nil {
		if _, ok := validationErrorText(err, h.deps.Translator); !ok {
			return err
		}
		return ctx.Redirect(http.StatusFound, "/manage-remarks")
	}

	id, err := formIntValue(ctx, "id")
	if err != nil {
		h.deps.Logger.Warn("editing remark: bad id", err)
		return ctx.Redirect(http.StatusFound, "/manage-remarks")
	}
	if _, err = h.deps.SchoolSvc.UpdateRemark(id, form, usr); err != nil {
		if errors.Cause(err) == school.ErrRemarkNotFound {
			h.deps.Logger.Warn("editing missing remark", id)
			return ctx.Redirect(http.StatusFound, "/manage-remarks")
		}
		return errors.Wrap(err, "updating remark")
	}
	return ctx.Redirect(http.StatusFound, "/manage-remarks")
}

func (h remarkHandler) delete(ctx echo.Context) error {
	if id, ok := intIDParam(ctx); ok {
		if err := h.deps.SchoolSvc.DeleteRemark(id); err != nil {
			return errors.Wrap(err, "deleting remark")
		}
	}
	return ctx.Redirect(http.StatusFound, "/manage-remarks")
}
