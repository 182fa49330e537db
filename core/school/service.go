package school

import (
	"fmt"
	"net/mail"

	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/notification"
	"github.com/trezcool/shule/core/user"
)

var (
	// errors
	ErrGradeNotFound      = errors.New("grade not found")
	ErrScheduleNotFound   = errors.New("schedule entry not found")
	ErrAttendanceNotFound = errors.New("attendance record not found")
	ErrRemarkNotFound     = errors.New("remark not found")
	ErrParentNotFound     = errors.New("parent link not found")
)

type (
	GradeRepository interface {
		CreateGrade(g Grade) (Grade, error)
		QueryAllGrades() ([]Grade, error)
		QueryGradesByStudent(username string) ([]Grade, error)
		GetGradeByID(id int) (Grade, error)
		UpdateGrade(g Grade) (Grade, error)
		DeleteGradeByID(id int) error
	}

	ScheduleRepository interface {
		CreateScheduleEntry(e ScheduleEntry) (ScheduleEntry, error)
		QueryAllSchedule() ([]ScheduleEntry, error)
		GetScheduleEntryByID(id int) (ScheduleEntry, error)
		UpdateScheduleEntry(e ScheduleEntry) (ScheduleEntry, error)
		DeleteScheduleEntryByID(id int) error
	}

	AttendanceRepository interface {
		CreateAttendance(a AttendanceRecord) (AttendanceRecord, error)
		QueryAllAttendance() ([]AttendanceRecord, error)
		QueryAttendanceByStudent(username string) ([]AttendanceRecord, error)
		GetAttendanceByID(id int) (AttendanceRecord, error)
		UpdateAttendance(a AttendanceRecord) (AttendanceRecord, error)
		DeleteAttendanceByID(id int) error
	}

	RemarkRepository interface {
		CreateRemark(r Remark) (Remark, error)
		QueryAllRemarks() ([]Remark, error)
		QueryRemarksByStudent(username string) ([]Remark, error)
		GetRemarkByID(id int) (Remark, error)
		UpdateRemark(r Remark) (Remark, error)
		DeleteRemarkByID(id int) error
	}

	ParentRepository interface {
		CreateParentLink(p ParentLink) (ParentLink, error)
		QueryAllParentLinks() ([]ParentLink, error)
		GetParentLinkByID(id int) (ParentLink, error)
		GetParentLinkByStudent(username string) (ParentLink, error)
		UpdateParentLink(p ParentLink) (ParentLink, error)
		DeleteParentLinkByID(id int) error
	}

	Repository interface {
		GradeRepository
		ScheduleRepository
		AttendanceRepository
		RemarkRepository
		ParentRepository
	}

	Service struct {
		repo     Repository
		usrSvc   user.ServiceInterface
		notifSvc notification.ServiceInterface
		mailSvc  core.EmailService
		logger   core.Logger
	}
)

func NewService(
	repo Repository,
	usrSvc user.ServiceInterface,
	notifSvc notification.ServiceInterface,
	mailSvc core.EmailService,
	logger core.Logger,
) *Service {
	return &Service{
		repo:     repo,
		usrSvc:   usrSvc,
		notifSvc: notifSvc,
		mailSvc:  mailSvc,
		logger:   logger,
	}
}

// notifyStudent resolves the student's username and appends a notification.
// An unknown username is skipped silently; records may reference students
// that no longer exist.
func (svc *Service) notifyStudent(username, message string) {
	stu, err := svc.usrSvc.GetByUsername(username)
	if err != nil {
		if err != user.ErrNotFound {
			svc.logger.Error("resolving student for notification", err)
		}
		return
	}
	if err := svc.notifSvc.Notify(stu.ID, message); err != nil {
		svc.logger.Error("notifying student", err, stu)
	}
}

// notifyAllStudents appends the same notification for every student account.
func (svc *Service) notifyAllStudents(message string) {
	students, err := svc.usrSvc.QueryStudents()
	if err != nil {
		svc.logger.Error("querying students for notification", err)
		return
	}
	for _, stu := range students {
		if err := svc.notifSvc.Notify(stu.ID, message); err != nil {
			svc.logger.Error("notifying student", err, stu)
		}
	}
}

// notifyParent emails the student's registered parent contact, if any, and
// tells the student a parent copy went out. Returns without side effects when
// no parent link exists.
func (svc *Service) notifyParent(username, studentMsg, subject, body string) {
	parent, err := svc.repo.GetParentLinkByStudent(username)
	if err != nil {
		if err != ErrParentNotFound {
			svc.logger.Error("resolving parent link", err)
		}
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Name: parent.ParentName, Address: parent.Contact}},
		Subject: subject,
		BodyStr: body,
	})
	svc.notifyStudent(username, studentMsg)
}

// Grades

func (svc *Service) QueryGrades(actor user.User) ([]Grade, error) {
	if actor.IsTeacher() {
		return svc.repo.QueryAllGrades()
	}
	return svc.repo.QueryGradesByStudent(actor.Username)
}

func (svc *Service) GetGrade(id int) (Grade, error) {
	return svc.repo.GetGradeByID(id)
}

func (svc *Service) CreateGrade(f NewGrade, actor user.User) (Grade, error) {
	g, err := svc.repo.CreateGrade(Grade{
		Student: f.Student,
		Subject: f.Subject,
		Grade:   f.Grade,
		AddedBy: actor.ID,
	})
	if err != nil {
		return Grade{}, errors.Wrap(err, "creating grade")
	}
	svc.notifyStudent(g.Student, fmt.Sprintf("Вам поставили оценку %s по предмету %s", g.Grade, g.Subject))
	return g, nil
}

func (svc *Service) UpdateGrade(id int, f NewGrade, actor user.User) (Grade, error) {
	old, err := svc.repo.GetGradeByID(id)
	if err != nil {
		return Grade{}, err
	}
	g, err := svc.repo.UpdateGrade(Grade{
		ID:      id,
		Student: f.Student,
		Subject: f.Subject,
		Grade:   f.Grade,
		AddedBy: actor.ID, // the current editor, not the original author
	})
	if err != nil {
		return Grade{}, errors.Wrap(err, "updating grade")
	}
	svc.notifyStudent(g.Student, fmt.Sprintf("Ваша оценка по предмету %s изменена с %s на %s", g.Subject, old.Grade, g.Grade))
	return g, nil
}

// DeleteGrade removes the grade with the given id. Deleting an id that does
// not resolve is a no-op; no notification is sent.
func (svc *Service) DeleteGrade(id int) error {
	g, err := svc.repo.GetGradeByID(id)
	if err != nil {
		if err == ErrGradeNotFound {
			return nil
		}
		return err
	}
	svc.notifyStudent(g.Student, fmt.Sprintf("Ваша оценка %s по предмету %s была удалена", g.Grade, g.Subject))
	return svc.repo.DeleteGradeByID(id)
}

// Schedule

func (svc *Service) QuerySchedule() ([]ScheduleEntry, error) {
	return svc.repo.QueryAllSchedule()
}

func (svc *Service) GetScheduleEntry(id int) (ScheduleEntry, error) {
	return svc.repo.GetScheduleEntryByID(id)
}

func (svc *Service) CreateScheduleEntry(f NewScheduleEntry, actor user.User) (ScheduleEntry, error) {
	e, err := svc.repo.CreateScheduleEntry(ScheduleEntry{
		Day:     f.Day,
		Time:    f.Time,
		Subject: f.Subject,
		AddedBy: actor.ID,
	})
	if err != nil {
		return ScheduleEntry{}, errors.Wrap(err, "creating schedule entry")
	}
	svc.notifyAllStudents(fmt.Sprintf("Расписание обновлено: %s в %s с %s", e.Subject, e.Day, e.Time))
	return e, nil
}

func (svc *Service) UpdateScheduleEntry(id int, f NewScheduleEntry, actor user.User) (ScheduleEntry, error) {
	old, err := svc.repo.GetScheduleEntryByID(id)
	if err != nil {
		return ScheduleEntry{}, err
	}
	e, err := svc.repo.UpdateScheduleEntry(ScheduleEntry{
		ID:      id,
		Day:     f.Day,
		Time:    f.Time,
		Subject: f.Subject,
		AddedBy: actor.ID,
	})
	if err != nil {
		return ScheduleEntry{}, errors.Wrap(err, "updating schedule entry")
	}
	svc.notifyAllStudents(fmt.Sprintf(
		"Расписание изменено: %s в %s с %s на %s в %s с %s",
		old.Subject, old.Day, old.Time, e.Subject, e.Day, e.Time,
	))
	return e, nil
}

func (svc *Service) DeleteScheduleEntry(id int) error {
	e, err := svc.repo.GetScheduleEntryByID(id)
	if err != nil {
		if err == ErrScheduleNotFound {
			return nil
		}
		return err
	}
	svc.notifyAllStudents(fmt.Sprintf("Запись в расписании удалена: %s в %s с %s", e.Subject, e.Day, e.Time))
	return svc.repo.DeleteScheduleEntryByID(id)
}

// Attendance

func (svc *Service) QueryAttendance(actor user.User) ([]AttendanceRecord, error) {
	if actor.IsTeacher() {
		return svc.repo.QueryAllAttendance()
	}
	return svc.repo.QueryAttendanceByStudent(actor.Username)
}

func (svc *Service) GetAttendance(id int) (AttendanceRecord, error) {
	return svc.repo.GetAttendanceByID(id)
}

func (svc *Service) CreateAttendance(f NewAttendance, actor user.User) (AttendanceRecord, error) {
	a, err := svc.repo.CreateAttendance(AttendanceRecord{
		Student: f.Student,
		Date:    f.Date,
		Status:  f.Status,
		AddedBy: actor.ID,
	})
	if err != nil {
		return AttendanceRecord{}, errors.Wrap(err, "creating attendance record")
	}
	svc.notifyStudent(a.Student, fmt.Sprintf("Ваша посещаемость отмечена: %s на %s", a.Status, a.Date))
	svc.notifyParent(
		a.Student,
		fmt.Sprintf("Родителю отправлено уведомление о вашей посещаемости: %s на %s", a.Status, a.Date),
		"Уведомление о посещаемости",
		fmt.Sprintf("Посещаемость ученика %s отмечена: %s на %s", a.Student, a.Status, a.Date),
	)
	return a, nil
}

func (svc *Service) UpdateAttendance(id int, f NewAttendance, actor user.User) (AttendanceRecord, error) {
	old, err := svc.repo.GetAttendanceByID(id)
	if err != nil {
		return AttendanceRecord{}, err
	}
	a, err := svc.repo.UpdateAttendance(AttendanceRecord{
		ID:      id,
		Student: f.Student,
		Date:    f.Date,
		Status:  f.Status,
		AddedBy: actor.ID,
	})
	if err != nil {
		return AttendanceRecord{}, errors.Wrap(err, "updating attendance record")
	}
	svc.notifyStudent(a.Student, fmt.Sprintf("Ваша посещаемость изменена: с %s на %s за %s", old.Status, a.Status, a.Date))
	svc.notifyParent(
		a.Student,
		fmt.Sprintf("Родителю отправлено уведомление об изменении посещаемости: %s на %s", a.Status, a.Date),
		"Уведомление о посещаемости",
		fmt.Sprintf("Посещаемость ученика %s изменена: %s на %s", a.Student, a.Status, a.Date),
	)
	return a, nil
}

func (svc *Service) DeleteAttendance(id int) error {
	a, err := svc.repo.GetAttendanceByID(id)
	if err != nil {
		if err == ErrAttendanceNotFound {
			return nil
		}
		return err
	}
	svc.notifyStudent(a.Student, fmt.Sprintf("Запись о вашей посещаемости за %s удалена", a.Date))
	return svc.repo.DeleteAttendanceByID(id)
}

// Remarks

func (svc *Service) QueryRemarks(actor user.User) ([]Remark, error) {
	if actor.IsTeacher() {
		return svc.repo.QueryAllRemarks()
	}
	return svc.repo.QueryRemarksByStudent(actor.Username)
}

func (svc *Service) GetRemark(id int) (Remark, error) {
	return svc.repo.GetRemarkByID(id)
}

func (svc *Service) CreateRemark(f NewRemark, actor user.User) (Remark, error) {
	r, err := svc.repo.CreateRemark(Remark{
		Student: f.Student,
		Date:    f.Date,
		Remark:  f.Remark,
		AddedBy: actor.ID,
	})
	if err != nil {
		return Remark{}, errors.Wrap(err, "creating remark")
	}
	svc.notifyStudent(r.Student, fmt.Sprintf("Вам добавлено замечание: %s за %s", r.Remark, r.Date))
	svc.notifyParent(
		r.Student,
		fmt.Sprintf("Родителю отправлено уведомление о вашем замечании: %s за %s", r.Remark, r.Date),
		"Уведомление о замечании",
		fmt.Sprintf("Ученику %s добавлено замечание: %s за %s", r.Student, r.Remark, r.Date),
	)
	return r, nil
}

func (svc *Service) UpdateRemark(id int, f NewRemark, actor user.User) (Remark, error) {
	old, err := svc.repo.GetRemarkByID(id)
	if err != nil {
		return Remark{}, err
	}
	r, err := svc.repo.UpdateRemark(Remark{
		ID:      id,
		Student: f.Student,
		Date:    f.Date,
		Remark:  f.Remark,
		AddedBy: actor.ID,
	})
	if err != nil {
		return Remark{}, errors.Wrap(err, "updating remark")
	}
	svc.notifyStudent(r.Student, fmt.Sprintf("Ваше замечание изменено: с %q на %q за %s", old.Remark, r.Remark, r.Date))
	svc.notifyParent(
		r.Student,
		fmt.Sprintf("Родителю отправлено уведомление об изменении замечания: %s за %s", r.Remark, r.Date),
		"Уведомление о замечании",
		fmt.Sprintf("Замечание ученика %s изменено: %s за %s", r.Student, r.Remark, r.Date),
	)
	return r, nil
}

func (svc *Service) DeleteRemark(id int) error {
	r, err := svc.repo.GetRemarkByID(id)
	if err != nil {
		if err == ErrRemarkNotFound {
			return nil
		}
		return err
	}
	svc.notifyStudent(r.Student, fmt.Sprintf("Замечание %q за %s удалено", r.Remark, r.Date))
	return svc.repo.DeleteRemarkByID(id)
}

// Parent links

func (svc *Service) QueryParentLinks() ([]ParentLink, error) {
	return svc.repo.QueryAllParentLinks()
}

func (svc *Service) GetParentLink(id int) (ParentLink, error) {
	return svc.repo.GetParentLinkByID(id)
}

func (svc *Service) CreateParentLink(f NewParentLink, actor user.User) (ParentLink, error) {
	p, err := svc.repo.CreateParentLink(ParentLink{
		StudentUsername: f.StudentUsername,
		ParentName:      f.ParentName,
		Contact:         f.Contact,
		AddedBy:         actor.ID,
	})
	if err != nil {
		return ParentLink{}, errors.Wrap(err, "creating parent link")
	}
	svc.notifyStudent(p.StudentUsername, fmt.Sprintf("Добавлена информация о родителе: %s", p.ParentName))
	return p, nil
}

func (svc *Service) UpdateParentLink(id int, f NewParentLink, actor user.User) (ParentLink, error) {
	if _, err := svc.repo.GetParentLinkByID(id); err != nil {
		return ParentLink{}, err
	}
	p, err := svc.repo.UpdateParentLink(ParentLink{
		ID:              id,
		StudentUsername: f.StudentUsername,
		ParentName:      f.ParentName,
		Contact:         f.Contact,
		AddedBy:         actor.ID,
	})
	if err != nil {
		return ParentLink{}, errors.Wrap(err, "updating parent link")
	}
	svc.notifyStudent(p.StudentUsername, fmt.Sprintf("Информация о родителе обновлена: %s", p.ParentName))
	return p, nil
}

func (svc *Service) DeleteParentLink(id int) error {
	p, err := svc.repo.GetParentLinkByID(id)
	if err != nil {
		if err == ErrParentNotFound {
			return nil
		}
		return err
	}
	svc.notifyStudent(p.StudentUsername, fmt.Sprintf("Информация о родителе %s удалена", p.ParentName))
	return svc.repo.DeleteParentLinkByID(id)
}
