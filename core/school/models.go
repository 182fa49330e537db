package school

import (
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/shule/core"
)

// Fixed rendering grid for the schedule page.
var (
	TimeSlots = []string{"08:00-09:30", "09:40-11:10", "11:20-12:50", "13:00-14:30", "14:40-16:10", "16:20-17:50"}
	Days      = []string{"Понедельник", "Вторник", "Среда", "Четверг", "Пятница", "Суббота", "Воскресенье"}
)

// Grade is a mark given to a student for a subject.
// Student records reference the student's username, not the numeric user id.
type Grade struct {
	ID      int    `json:"id" db:"id"`
	Student string `json:"student" db:"student"`
	Subject string `json:"subject" db:"subject"`
	Grade   string `json:"grade" db:"grade"`
	AddedBy int    `json:"addedBy" db:"added_by"`
}

// ScheduleEntry is one lesson in the weekly grid. (day, time) is expected
// unique by convention; it is not enforced.
type ScheduleEntry struct {
	ID      int    `json:"id" db:"id"`
	Day     string `json:"day" db:"day"`
	Time    string `json:"time" db:"time"`
	Subject string `json:"subject" db:"subject"`
	AddedBy int    `json:"addedBy" db:"added_by"`
}

type AttendanceRecord struct {
	ID      int    `json:"id" db:"id"`
	Student string `json:"student" db:"student"`
	Date    string `json:"date" db:"date"`
	Status  string `json:"status" db:"status"`
	AddedBy int    `json:"addedBy" db:"added_by"`
}

type Remark struct {
	ID      int    `json:"id" db:"id"`
	Student string `json:"student" db:"student"`
	Date    string `json:"date" db:"date"`
	Remark  string `json:"remark" db:"remark"`
	AddedBy int    `json:"addedBy" db:"added_by"`
}

// ParentLink ties a parent contact to a student account.
type ParentLink struct {
	ID              int    `json:"id" db:"id"`
	StudentUsername string `json:"studentUsername" db:"student_username"`
	ParentName      string `json:"parentName" db:"parent_name"`
	Contact         string `json:"contact" db:"contact"`
	AddedBy         int    `json:"addedBy" db:"added_by"`
}

// Forms

type NewGrade struct {
	Student string `form:"student" validate:"required"`
	Subject string `form:"subject" validate:"required"`
	Grade   string `form:"grade" validate:"required"`
}

func (f *NewGrade) Validate(validate *validator.Validate) error {
	f.Student = core.CleanString(f.Student, true /* lower */)
	f.Subject = core.CleanString(f.Subject)
	f.Grade = core.CleanString(f.Grade)
	return validate.Struct(f)
}

type NewScheduleEntry struct {
	Day     string `form:"day" validate:"required"`
	Time    string `form:"time" validate:"required"`
	Subject string `form:"subject" validate:"required"`
}

func (f *NewScheduleEntry) Validate(validate *validator.Validate) error {
	f.Day = core.CleanString(f.Day)
	f.Time = core.CleanString(f.Time)
	f.Subject = core.CleanString(f.Subject)
	return validate.Struct(f)
}

type NewAttendance struct {
	Student string `form:"student" validate:"required"`
	Date    string `form:"date" validate:"required"`
	Status  string `form:"status" validate:"required"`
}

func (f *NewAttendance) Validate(validate *validator.Validate) error {
	f.Student = core.CleanString(f.Student, true /* lower */)
	f.Date = core.CleanString(f.Date)
	f.Status = core.CleanString(f.Status)
	return validate.Struct(f)
}

type NewRemark struct {
	Student string `form:"student" validate:"required"`
	Date    string `form:"date" validate:"required"`
	Remark  string `form:"remark" validate:"required"`
}

func (f *NewRemark) Validate(validate *validator.Validate) error {
	f.Student = core.CleanString(f.Student, true /* lower */)
	f.Date = core.CleanString(f.Date)
	f.Remark = core.CleanString(f.Remark)
	return validate.Struct(f)
}

type NewParentLink struct {
	StudentUsername string `form:"studentUsername" validate:"required"`
	ParentName      string `form:"parentName" validate:"required"`
	Contact         string `form:"contact" validate:"required"`
}

func (f *NewParentLink) Validate(validate *validator.Validate) error {
	f.StudentUsername = core.CleanString(f.StudentUsername, true /* lower */)
	f.ParentName = core.CleanString(f.ParentName)
	f.Contact = core.CleanString(f.Contact)
	return validate.Struct(f)
}
