package echoweb

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core/school"
)

type gradeHandler struct {
	deps *ServerDeps
}

func registerGradeRoutes(e *echo.Echo, deps *ServerDeps) {
	h := gradeHandler{deps: deps}
	auth := loginRequiredMiddleware()

	e.GET("/manage-grades", h.manage, auth)
	e.GET("/add-grades", h.addPage, teacherRequiredMiddleware("добавлять оценки"))
	e.POST("/add-grades", h.add, teacherRequiredMiddleware("добавлять оценки"))
	e.GET("/edit-grade", h.editPage, teacherRequiredMiddleware("редактировать оценки"))
	e.POST("/edit-grade", h.edit, teacherRequiredMiddleware("редактировать оценки"))
	e.GET("/delete-grade", h.delete, teacherRequiredMiddleware("удалять оценки"))
	e.POST("/delete-grade", h.delete, teacherRequiredMiddleware("удалять оценки"))
}

type gradeRow struct {
	school.Grade
	StudentName string
}

// manage lists all grades for teachers and only the caller's own for students.
func (h gradeHandler) manage(ctx echo.Context) error {
	usr, _ := getContextUser(ctx)

	grades, err := h.deps.SchoolSvc.QueryGrades(usr)
	if err != nil {
		return errors.Wrap(err, "querying grades")
	}
	resolver := newStudentNameResolver(h.deps.UserSvc)
	rows := make([]gradeRow, 0, len(grades))
	for _, g := range grades {
		rows = append(rows, gradeRow{Grade: g, StudentName: resolver.Resolve(g.Student)})
	}

	data, err := newTemplateData(ctx, h.deps, "Оценки")
	if err != nil {
		return err
	}
	data.Data["Grades"] = rows
	return ctx.Render(http.StatusOK, "manage-grades.html", data)
}

func (h gradeHandler) addPage(ctx echo.Context) error {
	students, err := h.deps.UserSvc.QueryStudents()
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	data, err := newTemplateData(ctx, h.deps, "Добавить оценку")
	if err != nil {
		return err
	}
	data.Data["Students"] = students
	return ctx.Render(http.StatusOK, "add-grades.html", data)
}

func (h gradeHandler) add(ctx echo.Context) error {
	usr, _ := getContextUser(ctx)

	var form school.NewGrade
	if err := ctx.Bind(&form); err != nil {
		return errors.Wrap(err, "binding grade form")
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
		data, derr := newTemplateData(ctx, h.deps, "Добавить оценку")
		if derr != nil {
			return derr
		}
		data.Error = text
		data.Data["Students"] = students
		return ctx.Render(http.StatusOK, "add-grades.html", data)
	}

	if _, err := h.deps.SchoolSvc.CreateGrade(form, usr); err != nil {
		return errors.Wrap(err, "creating grade")
	}
	return ctx.Redirect(http.StatusFound, "/manage-grades")
}

func (h gradeHandler) editPage(ctx echo.Context) error {
	id, ok := intIDParam(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "Оценка не найдена")
	}
	g, err := h.deps.SchoolSvc.GetGrade(id)
	if err != nil {
		if errors.Cause(err) == school.ErrGradeNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Оценка не найдена")
		}
		return errors.Wrap(err, "getting grade")
	}
	students, err := h.deps.UserSvc.QueryStudents()
	if err != nil {
		return errors.Wrap(err, "querying students")
	}

	data, err := newTemplateData(ctx, h.deps, "Редактировать оценку")
	if err != nil {
		return err
	}
	data.Data["Grade"] = g
	data.Data["Students"] = students
	return ctx.Render(http.StatusOK, "edit-grade.html", data)
}

// edit applies the posted changes; an id that no longer resolves is logged and
// skipped, the client is redirected back to the list either way.
func (h gradeHandler) edit(ctx echo.Context) error {
	usr, _ := getContextUser(ctx)

	var form school.NewGrade
	if err := ctx.Bind(&form); err != nil {
		return errors.Wrap(err, "binding grade form")
	}
	if err := form.Validate(h.deps.Validate); err != nil {
		if _, ok := validationErrorText(err, h.deps.Translator); !ok {
			return err
		}
		return ctx.Redirect(http.StatusFound, "/manage-grades")
	}

	id, err := formIntValue(ctx, "id")
	if err != nil {
		h.deps.Logger.Warn("editing grade: bad id", err)
		return ctx.Redirect(http.StatusFound, "/manage-grades")
	}
	if _, err = h.deps.SchoolSvc.UpdateGrade(id, form, usr); err != nil {
		if errors.Cause(err) == school.ErrGradeNotFound {
			h.deps.Logger.Warn("editing missing grade", id)
			return ctx.Redirect(http.StatusFound, "/manage-grades")
		}
		return errors.Wrap(err, "updating grade")
	}
	return ctx.Redirect(http.StatusFound, "/manage-grades")
}

func (h gradeHandler) delete(ctx echo.Context) error {
	if id, ok := intIDParam(ctx); ok {
		if err := h.deps.SchoolSvc.DeleteGrade(id); err != nil {
			return errors.Wrap(err, "deleting grade")
		}
	}
	return ctx.Redirect(http.StatusFound, "/manage-grades")
}
