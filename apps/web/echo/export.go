package echoweb

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type exportHandler struct {
	deps *ServerDeps
}

func registerExportRoutes(e *echo.Echo, deps *ServerDeps) {
	h := exportHandler{deps: deps}

	e.GET("/export-grades", h.grades, teacherRequiredMiddleware("выгружать оценки"))
	e.GET("/export-attendance", h.attendance, teacherRequiredMiddleware("выгружать посещаемость"))
}

func (h exportHandler) grades(ctx echo.Context) error {
	usr, _ := getContextUser(ctx)

	grades, err := h.deps.SchoolSvc.QueryGrades(usr)
	if err != nil {
		return errors.Wrap(err, "querying grades")
	}
	resolver := newStudentNameResolver(h.deps.UserSvc)

	rows := make([][]interface{}, 0, len(grades))
	for _, g := range grades {
		rows = append(rows, []interface{}{g.ID, resolver.Resolve(g.Student), g.Subject, g.Grade})
	}
	return writeWorkbook(ctx, "Оценки", "grades.xlsx",
		[]string{"ID", "Ученик", "Предмет", "Оценка"}, rows)
}

func (h exportHandler) attendance(ctx echo.Context) error {
	usr, _ := getContextUser(ctx)

	records, err := h.deps.SchoolSvc.QueryAttendance(usr)
	if err != nil {
		return errors.Wrap(err, "querying attendance")
	}
	resolver := newStudentNameResolver(h.deps.UserSvc)

	rows := make([][]interface{}, 0, len(records))
	for _, a := range records {
		rows = append(rows, []interface{}{a.ID, resolver.Resolve(a.Student), a.Date, a.Status})
	}
	return writeWorkbook(ctx, "Посещаемость", "attendance.xlsx",
		[]string{"ID", "Ученик", "Дата", "Статус"}, rows)
}

// writeWorkbook streams a single-sheet XLSX register as a file download.
func writeWorkbook(ctx echo.Context, sheet, filename string, headers []string, rows [][]interface{}) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return errors.Wrap(err, "naming sheet")
	}
	for col, header := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return errors.Wrap(err, "computing header cell")
		}
		if err = f.SetCellValue(sheet, cell, header); err != nil {
			return errors.Wrap(err, "writing header cell")
		}
	}
	for i, row := range rows {
		for col, val := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return errors.Wrap(err, "computing cell")
			}
			if err = f.SetCellValue(sheet, cell, val); err != nil {
				return errors.Wrap(err, "writing cell")
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return errors.Wrap(err, "serializing workbook")
	}
	ctx.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return ctx.Blob(http.StatusOK, xlsxContentType, buf.Bytes())
}
