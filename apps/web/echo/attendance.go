package echoweb

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core/school"
)

type attendanceHandler struct {
	deps *ServerDeps
}

func registerAttendanceRoutes(e *echo.Echo, deps *ServerDeps) {
	h := attendanceHandler{deps: deps}
	auth := loginRequiredMiddleware()

	e.GET("/manage-attendance", h.manage, auth)
	e.GET("/add-attendance", h.addPage, teacherRequiredMiddleware("добавлять посещаемость"))
	e.POST("/add-attendance", h.add, teacherRequiredMiddleware("добавлять посещаемость"))
	e.GET("/edit-attendance", h.editPage, teacherRequiredMiddleware("редактировать посещаемость"))
	e.POST("/edit-attendance", h.edit, teacherRequiredMiddleware("редактировать посещаемость"))
	e.GET("/delete-attendance", h.delete, teacherRequiredMiddleware("удалять посещаемость"))
	e.POST("/delete-attendance", h.delete, teacherRequiredMiddleware("удалять посещаемость"))
}

type attendanceRow struct {
	school.AttendanceRecord
	StudentName string
}

func (h attendanceHandler) manage(ctx echo.Context) error {
	usr, _ := getContextUser(ctx)

	records, err := h.deps.SchoolSvc.QueryAttendance(usr)
	if err != nil {
		return errors.Wrap(err, "querying attendance")
	}
	resolver := newStudentNameResolver(h.deps.UserSvc)
	rows := make([]attendanceRow, 0, len(records))
	for _, a := range records {
		rows = append(rows, attendanceRow{AttendanceRecord: a, StudentName: resolver.Resolve(a.Student)})
	}

	data, err := newTemplateData(ctx, h.deps, "Посещаемость")
	if err != nil {
		return err
	}
	data.Data["Attendance"] = rows
	return ctx.Render(http.StatusOK, "manage-attendance.html", data)
}

func (h attendanceHandler) addPage(ctx echo.Context) error {
	students, err := h.deps.UserSvc.QueryStudents()
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	data, err := newTemplateData(ctx, h.deps, "Отметить посещаемость")
	if err != nil {
		return err
	}
	data.Data["Students"] = students
	return ctx.Render(http.StatusOK, "add-attendance.html", data)
}

func (h attendanceHandler) add(ctx echo.Context) error {
	usr, _ := getContextUser(ctx)

	var form school.NewAttendance
	if err := ctx.Bind(&form); err != nil {
		return errors.Wrap(err, "binding attendance form")
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
		data, derr := newTemplateData(ctx, h.deps, "Отметить посещаемость")
		if derr != nil {
			return derr
		}
		data.Error = text
		data.Data["Students"] = students
		return ctx.Render(http.StatusOK, "add-attendance.html", data)
	}

	if _, err := h.deps.SchoolSvc.CreateAttendance(form, usr); err != nil {
		return errors.Wrap(err, "creating attendance record")
	}
	return ctx.Redirect(http.StatusFound, "/manage-attendance")
}

func (h attendanceHandler) editPage(ctx echo.Context) error {
	id, ok := intIDParam(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "Запись не найдена")
	}
	record, err := h.deps.SchoolSvc.GetAttendance(id)
	if err != nil {
		if errors.Cause(err) == school.ErrAttendanceNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Запись не найдена")
		}
		return errors.Wrap(err, "getting attendance record")
	}
	students, err := h.deps.UserSvc.QueryStudents()
	if err != nil {
		return errors.Wrap(err, "querying students")
	}

	data, err := newTemplateData(ctx, h.deps, "Редактировать посещаемость")
	if err != nil {
		return err
	}
	data.Data["Record"] = record
	data.Data["Students"] = students
	return ctx.Render(http.StatusOK, "edit-attendance.html", data)
}

func (h attendanceHandler) edit(ctx echo.Context) error {
	usr, _ := getContextUser(ctx)

	var form school.NewAttendance
	if err := ctx.Bind(&form); err != nil {
		return errors.Wrap(err, "binding attendance form")
	}
	if err := form.Validate(h.deps.Validate); err != nil {
		if _, ok := validationErrorText(err, h.deps.Translator); !ok {
			return err
		}
		return ctx.Redirect(http.StatusFound, "/manage-attendance")
	}

	id, err := formIntValue(ctx, "id")
	if err != nil {
		h.deps.Logger.Warn("editing attendance: bad id", err)
		return ctx.Redirect(http.StatusFound, "/manage-attendance")
	}
	if _, err = h.deps.SchoolSvc.UpdateAttendance(id, form, usr); err != nil {
		if errors.Cause(err) == school.ErrAttendanceNotFound {
			h.deps.Logger.Warn("editing missing attendance record", id)
			return ctx.Redirect(http.StatusFound, "/manage-attendance")
		}
		return errors.Wrap(err, "updating attendance record")
	}
	return ctx.Redirect(http.StatusFound, "/manage-attendance")
}

func (h attendanceHandler) delete(ctx echo.Context) error {
	if id, ok := intIDParam(ctx); ok {
		if err := h.deps.SchoolSvc.DeleteAttendance(id); err != nil {
			return errors.Wrap(err, "deleting attendance record")
		}
	}
	return ctx.Redirect(http.StatusFound, "/manage-attendance")
}
