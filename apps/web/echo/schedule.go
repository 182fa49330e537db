package echoweb

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core/school"
)

type scheduleHandler struct {
	deps *ServerDeps
}

func registerScheduleRoutes(e *echo.Echo, deps *ServerDeps) {
	h := scheduleHandler{deps: deps}
	auth := loginRequiredMiddleware()

	e.GET("/manage-schedule", h.manage, auth)
	e.GET("/add-schedule", h.addPage, teacherRequiredMiddleware("добавлять расписание"))
	e.POST("/add-schedule", h.add, teacherRequiredMiddleware("добавлять расписание"))
	e.GET("/edit-schedule", h.editPage, teacherRequiredMiddleware("редактировать расписание"))
	e.POST("/edit-schedule", h.edit, teacherRequiredMiddleware("редактировать расписание"))
	e.GET("/delete-schedule", h.delete, teacherRequiredMiddleware("удалять расписание"))
	e.POST("/delete-schedule", h.delete, teacherRequiredMiddleware("удалять расписание"))
}

type scheduleGridRow struct {
	Time  string
	Cells []*school.ScheduleEntry // one per day, nil when the slot is free
}

// manage renders the weekly grid: one row per time slot, one column per day.
// The first entry matching a (day, time) pair wins, duplicates stay hidden.
func (h scheduleHandler) manage(ctx echo.Context) error {
	entries, err := h.deps.SchoolSvc.QuerySchedule()
	if err != nil {
		return errors.Wrap(err, "querying schedule")
	}

	rows := make([]scheduleGridRow, 0, len(school.TimeSlots))
	for _, slot := range school.TimeSlots {
		row := scheduleGridRow{Time: slot, Cells: make([]*school.ScheduleEntry, len(school.Days))}
		for i, day := range school.Days {
			for j := range entries {
				if entries[j].Day == day && entries[j].Time == slot {
					row.Cells[i] = &entries[j]
					break
				}
			}
		}
		rows = append(rows, row)
	}

	data, err := newTemplateData(ctx, h.deps, "Расписание")
	if err != nil {
		return err
	}
	data.Data["Grid"] = rows
	data.Data["Days"] = school.Days
	return ctx.Render(http.StatusOK, "manage-schedule.html", data)
}

func (h scheduleHandler) addPage(ctx echo.Context) error {
	data, err := newTemplateData(ctx, h.deps, "Добавить расписание")
	if err != nil {
		return err
	}
	data.Data["Days"] = school.Days
	data.Data["TimeSlots"] = school.TimeSlots
	return ctx.Render(http.StatusOK, "add-schedule.html", data)
}

func (h scheduleHandler) add(ctx echo.Context) error {
	usr, _ := getContextUser(ctx)

	var form school.NewScheduleEntry
	if err := ctx.Bind(&form); err != nil {
		return errors.Wrap(err, "binding schedule form")
	}
	if err := form.Validate(h.deps.Validate); err != nil {
		text, ok := validationErrorText(err, h.deps.Translator)
		if !ok {
			return err
		}
		data, derr := newTemplateData(ctx, h.deps, "Добавить расписание")
		if derr != nil {
			return derr
		}
		data.Error = text
		data.Data["Days"] = school.Days
		data.Data["TimeSlots"] = school.TimeSlots
		return ctx.Render(http.StatusOK, "add-schedule.html", data)
	}

	if _, err := h.deps.SchoolSvc.CreateScheduleEntry(form, usr); err != nil {
		return errors.Wrap(err, "creating schedule entry")
	}
	return ctx.Redirect(http.StatusFound, "/manage-schedule")
}

func (h scheduleHandler) editPage(ctx echo.Context) error {
	id, ok := intIDParam(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "Запись не найдена")
	}
	entry, err := h.deps.SchoolSvc.GetScheduleEntry(id)
	if err != nil {
		if errors.Cause(err) == school.ErrScheduleNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Запись не найдена")
		}
		return errors.Wrap(err, "getting schedule entry")
	}

	data, err := newTemplateData(ctx, h.deps, "Редактировать расписание")
	if err != nil {
		return err
	}
	data.Data["Entry"] = entry
	data.Data["Days"] = school.Days
	data.Data["TimeSlots"] = school.TimeSlots
	return ctx.Render(http.StatusOK, "edit-schedule.html", data)
}

func (h scheduleHandler) edit(ctx echo.Context) error {
	usr, _ := getContextUser(ctx)

	var form school.NewScheduleEntry
	if err := ctx.Bind(&form); err != nil {
		return errors.Wrap(err, "binding schedule form")
	}
	if err := form.Validate(h.deps.Validate); err != nil {
		if _, ok := validationErrorText(err, h.deps.Translator); !ok {
			return err
		}
		return ctx.Redirect(http.StatusFound, "/manage-schedule")
	}

	id, err := formIntValue(ctx, "id")
	if err != nil {
		h.deps.Logger.Warn("editing schedule entry: bad id", err)
		return ctx.Redirect(http.StatusFound, "/manage-schedule")
	}
	if _, err = h.deps.SchoolSvc.UpdateScheduleEntry(id, form, usr); err != nil {
		if errors.Cause(err) == school.ErrScheduleNotFound {
			h.deps.Logger.Warn("editing missing schedule entry", id)
			return ctx.Redirect(http.StatusFound, "/manage-schedule")
		}
		return errors.Wrap(err, "updating schedule entry")
	}
	return ctx.Redirect(http.StatusFound, "/manage-schedule")
}

func (h scheduleHandler) delete(ctx echo.Context) error {
	if id, ok := intIDParam(ctx); ok {
		if err := h.deps.SchoolSvc.DeleteScheduleEntry(id); err != nil {
			return errors.Wrap(err, "deleting schedule entry")
		}
	}
	return ctx.Redirect(http.StatusFound, "/manage-schedule")
}
