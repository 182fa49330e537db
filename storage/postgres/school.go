package postgres

import (
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core/school"
)

type schoolRepository struct {
	db *sqlx.DB
}

var _ school.Repository = (*schoolRepository)(nil)

func NewSchoolRepository(db *sqlx.DB) *schoolRepository {
	return &schoolRepository{db: db}
}

// Grades

func (repo *schoolRepository) CreateGrade(g school.Grade) (school.Grade, error) {
	q := `INSERT INTO grade (student, subject, grade, added_by) VALUES ($1, $2, $3, $4) RETURNING id`
	if err := repo.db.Get(&g.ID, q, g.Student, g.Subject, g.Grade, g.AddedBy); err != nil {
		return school.Grade{}, errors.Wrap(err, "creating grade")
	}
	return g, nil
}

func (repo *schoolRepository) QueryAllGrades() ([]school.Grade, error) {
	grades := make([]school.Grade, 0)
	if err := repo.db.Select(&grades, `SELECT * FROM grade ORDER BY id`); err != nil {
		return nil, errors.Wrap(err, "querying grades")
	}
	return grades, nil
}

func (repo *schoolRepository) QueryGradesByStudent(username string) ([]school.Grade, error) {
	grades := make([]school.Grade, 0)
	if err := repo.db.Select(&grades, `SELECT * FROM grade WHERE student = $1 ORDER BY id`, username); err != nil {
		return nil, errors.Wrap(err, "querying grades by student")
	}
	return grades, nil
}

func (repo *schoolRepository) GetGradeByID(id int) (school.Grade, error) {
	var g school.Grade
	if err := repo.db.Get(&g, `SELECT * FROM grade WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return school.Grade{}, school.ErrGradeNotFound
		}
		return school.Grade{}, errors.Wrap(err, "getting grade")
	}
	return g, nil
}

func (repo *schoolRepository) UpdateGrade(g school.Grade) (school.Grade, error) {
	q := `UPDATE grade SET student = :student, subject = :subject, grade = :grade, added_by = :added_by WHERE id = :id`
	res, err := repo.db.NamedExec(q, g)
	if err != nil {
		return school.Grade{}, errors.Wrap(err, "updating grade")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return school.Grade{}, school.ErrGradeNotFound
	}
	return g, nil
}

func (repo *schoolRepository) DeleteGradeByID(id int) error {
	_, err := repo.db.Exec(`DELETE FROM grade WHERE id = $1`, id)
	return errors.Wrap(err, "deleting grade")
}

// Schedule

func (repo *schoolRepository) CreateScheduleEntry(e school.ScheduleEntry) (school.ScheduleEntry, error) {
	q := `INSERT INTO schedule (day, time, subject, added_by) VALUES ($1, $2, $3, $4) RETURNING id`
	if err := repo.db.Get(&e.ID, q, e.Day, e.Time, e.Subject, e.AddedBy); err != nil {
		return school.ScheduleEntry{}, errors.Wrap(err, "creating schedule entry")
	}
	return e, nil
}

func (repo *schoolRepository) QueryAllSchedule() ([]school.ScheduleEntry, error) {
	entries := make([]school.ScheduleEntry, 0)
	if err := repo.db.Select(&entries, `SELECT * FROM schedule ORDER BY id`); err != nil {
		return nil, errors.Wrap(err, "querying schedule")
	}
	return entries, nil
}

func (repo *schoolRepository) GetScheduleEntryByID(id int) (school.ScheduleEntry, error) {
	var e school.ScheduleEntry
	if err := repo.db.Get(&e, `SELECT * FROM schedule WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return school.ScheduleEntry{}, school.ErrScheduleNotFound
		}
		return school.ScheduleEntry{}, errors.Wrap(err, "getting schedule entry")
	}
	return e, nil
}

func (repo *schoolRepository) UpdateScheduleEntry(e school.ScheduleEntry) (school.ScheduleEntry, error) {
	q := `UPDATE schedule SET day = :day, time = :time, subject = :subject, added_by = :added_by WHERE id = :id`
	res, err := repo.db.NamedExec(q, e)
	if err != nil {
		return school.ScheduleEntry{}, errors.Wrap(err, "updating schedule entry")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return school.ScheduleEntry{}, school.ErrScheduleNotFound
	}
	return e, nil
}

func (repo *schoolRepository) DeleteScheduleEntryByID(id int) error {
	_, err := repo.db.Exec(`DELETE FROM schedule WHERE id = $1`, id)
	return errors.Wrap(err, "deleting schedule entry")
}

// Attendance

func (repo *schoolRepository) CreateAttendance(a school.AttendanceRecord) (school.AttendanceRecord, error) {
	q := `INSERT INTO attendance (student, date, status, added_by) VALUES ($1, $2, $3, $4) RETURNING id`
	if err := repo.db.Get(&a.ID, q, a.Student, a.Date, a.Status, a.AddedBy); err != nil {
		return school.AttendanceRecord{}, errors.Wrap(err, "creating attendance record")
	}
	return a, nil
}

func (repo *schoolRepository) QueryAllAttendance() ([]school.AttendanceRecord, error) {
	records := make([]school.AttendanceRecord, 0)
	if err := repo.db.Select(&records, `SELECT * FROM attendance ORDER BY id`); err != nil {
		return nil, errors.Wrap(err, "querying attendance")
	}
	return records, nil
}

func (repo *schoolRepository) QueryAttendanceByStudent(username string) ([]school.AttendanceRecord, error) {
	records := make([]school.AttendanceRecord, 0)
	if err := repo.db.Select(&records, `SELECT * FROM attendance WHERE student = $1 ORDER BY id`, username); err != nil {
		return nil, errors.Wrap(err, "querying attendance by student")
	}
	return records, nil
}

func (repo *schoolRepository) GetAttendanceByID(id int) (school.AttendanceRecord, error) {
	var a school.AttendanceRecord
	if err := repo.db.Get(&a, `SELECT * FROM attendance WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return school.AttendanceRecord{}, school.ErrAttendanceNotFound
		}
		return school.AttendanceRecord{}, errors.Wrap(err, "getting attendance record")
	}
	return a, nil
}

func (repo *schoolRepository) UpdateAttendance(a school.AttendanceRecord) (school.AttendanceRecord, error) {
	q := `UPDATE attendance SET student = :student, date = :date, status = :status, added_by = :added_by WHERE id = :id`
	res, err := repo.db.NamedExec(q, a)
	if err != nil {
		return school.AttendanceRecord{}, errors.Wrap(err, "updating attendance record")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return school.AttendanceRecord{}, school.ErrAttendanceNotFound
	}
	return a, nil
}

func (repo *schoolRepository) DeleteAttendanceByID(id int) error {
	_, err := repo.db.Exec(`DELETE FROM attendance WHERE id = $1`, id)
	return errors.Wrap(err, "deleting attendance record")
}

// Remarks

func (repo *schoolRepository) CreateRemark(r school.Remark) (school.Remark, error) {
	q := `INSERT INTO remark (student, date, remark, added_by) VALUES ($1, $2, $3, $4) RETURNING id`
	if err := repo.db.Get(&r.ID, q, r.Student, r.Date, r.Remark, r.AddedBy); err != nil {
		return school.Remark{}, errors.Wrap(err, "creating remark")
	}
	return r, nil
}

func (repo *schoolRepository) QueryAllRemarks() ([]school.Remark, error) {
	remarks := make([]school.Remark, 0)
	if err := repo.db.Select(&remarks, `SELECT * FROM remark ORDER BY id`); err != nil {
		return nil, errors.Wrap(err, "querying remarks")
	}
	return remarks, nil
}

func (repo *schoolRepository) QueryRemarksByStudent(username string) ([]school.Remark, error) {
	remarks := make([]school.Remark, 0)
	if err := repo.db.Select(&remarks, `SELECT * FROM remark WHERE student = $1 ORDER BY id`, username); err != nil {
		return nil, errors.Wrap(err, "querying remarks by student")
	}
	return remarks, nil
}

func (repo *schoolRepository) GetRemarkByID(id int) (school.Remark, error) {
	var r school.Remark
	if err := repo.db.Get(&r, `SELECT * FROM remark WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return school.Remark{}, school.ErrRemarkNotFound
		}
		return school.Remark{}, errors.Wrap(err, "getting remark")
	}
	return r, nil
}

func (repo *schoolRepository) UpdateRemark(r school.Remark) (school.Remark, error) {
	q := `UPDATE remark SET student = :student, date = :date, remark = :remark, added_by = :added_by WHERE id = :id`
	res, err := repo.db.NamedExec(q, r)
	if err != nil {
		return school.Remark{}, errors.Wrap(err, "updating remark")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return school.Remark{}, school.ErrRemarkNotFound
	}
	return r, nil
}

func (repo *schoolRepository) DeleteRemarkByID(id int) error {
	_, err := repo.db.Exec(`DELETE FROM remark WHERE id = $1`, id)
	return errors.Wrap(err, "deleting remark")
}

// Parent links

func (repo *schoolRepository) CreateParentLink(p school.ParentLink) (school.ParentLink, error) {
	q := `INSERT INTO parent_link (student_username, parent_name, contact, added_by) VALUES ($1, $2, $3, $4) RETURNING id`
	if err := repo.db.Get(&p.ID, q, p.StudentUsername, p.ParentName, p.Contact, p.AddedBy); err != nil {
		return school.ParentLink{}, errors.Wrap(err, "creating parent link")
	}
	return p, nil
}

func (repo *schoolRepository) QueryAllParentLinks() ([]school.ParentLink, error) {
	parents := make([]school.ParentLink, 0)
	if err := repo.db.Select(&parents, `SELECT * FROM parent_link ORDER BY id`); err != nil {
		return nil, errors.Wrap(err, "querying parent links")
	}
	return parents, nil
}

func (repo *schoolRepository) GetParentLinkByID(id int) (school.ParentLink, error) {
	var p school.ParentLink
	if err := repo.db.Get(&p, `SELECT * FROM parent_link WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return school.ParentLink{}, school.ErrParentNotFound
		}
		return school.ParentLink{}, errors.Wrap(err, "getting parent link")
	}
	return p, nil
}

func (repo *schoolRepository) GetParentLinkByStudent(username string) (school.ParentLink, error) {
	var p school.ParentLink
	q := `SELECT * FROM parent_link WHERE student_username = $1 ORDER BY id LIMIT 1`
	if err := repo.db.Get(&p, q, username); err != nil {
		if err == sql.ErrNoRows {
			return school.ParentLink{}, school.ErrParentNotFound
		}
		return school.ParentLink{}, errors.Wrap(err, "getting parent link by student")
	}
	return p, nil
}

func (repo *schoolRepository) UpdateParentLink(p school.ParentLink) (school.ParentLink, error) {
	q := `UPDATE parent_link
	      SET student_username = :student_username, parent_name = :parent_name, contact = :contact, added_by = :added_by
	      WHERE id = :id`
	res, err := repo.db.NamedExec(q, p)
	if err != nil {
		return school.ParentLink{}, errors.Wrap(err, "updating parent link")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return school.ParentLink{}, school.ErrParentNotFound
	}
	return p, nil
}

func (repo *schoolRepository) DeleteParentLinkByID(id int) error {
	_, err := repo.db.Exec(`DELETE FROM parent_link WHERE id = $1`, id)
	return errors.Wrap(err, "deleting parent link")
}
