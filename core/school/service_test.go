package school_test

import (
	"fmt"
	"net/mail"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/notification"
	"github.com/trezcool/shule/core/school"
	"github.com/trezcool/shule/core/user"
	emailsvc "github.com/trezcool/shule/services/email"
	"github.com/trezcool/shule/storage/jsondb"
)

type nopLogger struct{}

func (nopLogger) Enable(bool)                  {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

type testEnv struct {
	svc      *school.Service
	usrSvc   user.ServiceInterface
	notifSvc notification.ServiceInterface

	teacher user.User
	student user.User
}

func setup(t *testing.T) *testEnv {
	t.Helper()
	emailsvc.ResetSentMessages()

	conf := &core.Config{
		AppName:          "Shule",
		DefaultFromEmail: mail.Address{Name: "Shule", Address: "noreply@localhost"},
		Database:         core.DatabaseConfig{Engine: "json", Dir: t.TempDir()},
	}
	db, err := jsondb.Open(conf, nopLogger{})
	require.NoError(t, err)

	usrSvc := user.NewService(db.Users)
	notifSvc := notification.NewService(db.Notifications)
	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	svc := school.NewService(db.School, usrSvc, notifSvc, mailSvc, nopLogger{})

	teacher, err := usrSvc.Create(user.NewUser{
		FirstName: "Анна", LastName: "Иванова", Username: "anna", Password: "pwd", Role: user.RoleTeacher,
	})
	require.NoError(t, err)
	student, err := usrSvc.Create(user.NewUser{
		FirstName: "Иван", LastName: "Петров", Username: "ivan", Password: "pwd", Role: user.RoleStudent,
	})
	require.NoError(t, err)

	return &testEnv{svc: svc, usrSvc: usrSvc, notifSvc: notifSvc, teacher: teacher, student: student}
}

func unread(t *testing.T, env *testEnv, userID int) []notification.Notification {
	t.Helper()
	notifs, err := env.notifSvc.Unread(userID)
	require.NoError(t, err)
	return notifs
}

func TestService_CreateGrade_notifiesStudent(t *testing.T) {
	env := setup(t)

	g, err := env.svc.CreateGrade(school.NewGrade{Student: "ivan", Subject: "Математика", Grade: "5"}, env.teacher)
	require.NoError(t, err)
	assert.Equal(t, 1, g.ID)
	assert.Equal(t, env.teacher.ID, g.AddedBy)

	notifs := unread(t, env, env.student.ID)
	require.Len(t, notifs, 1)
	assert.Equal(t, "Вам поставили оценку 5 по предмету Математика", notifs[0].Message)
	assert.Empty(t, unread(t, env, env.teacher.ID))
}

func TestService_CreateGrade_unknownStudentSkipped(t *testing.T) {
	env := setup(t)

	g, err := env.svc.CreateGrade(school.NewGrade{Student: "ghost", Subject: "Физика", Grade: "4"}, env.teacher)
	require.NoError(t, err, "records may reference students that do not exist")
	assert.Equal(t, 1, g.ID)
	assert.Empty(t, unread(t, env, env.student.ID))
}

func TestService_UpdateGrade(t *testing.T) {
	env := setup(t)

	g, err := env.svc.CreateGrade(school.NewGrade{Student: "ivan", Subject: "Математика", Grade: "3"}, env.teacher)
	require.NoError(t, err)

	_, err = env.svc.UpdateGrade(g.ID, school.NewGrade{Student: "ivan", Subject: "Математика", Grade: "5"}, env.teacher)
	require.NoError(t, err)

	notifs := unread(t, env, env.student.ID)
	require.Len(t, notifs, 2)
	assert.Equal(t, "Ваша оценка по предмету Математика изменена с 3 на 5", notifs[1].Message)

	_, err = env.svc.UpdateGrade(999, school.NewGrade{Student: "ivan", Subject: "Математика", Grade: "5"}, env.teacher)
	assert.Equal(t, school.ErrGradeNotFound, err)
}

func TestService_DeleteGrade(t *testing.T) {
	env := setup(t)

	g, err := env.svc.CreateGrade(school.NewGrade{Student: "ivan", Subject: "История", Grade: "2"}, env.teacher)
	require.NoError(t, err)

	require.NoError(t, env.svc.DeleteGrade(g.ID))
	notifs := unread(t, env, env.student.ID)
	require.Len(t, notifs, 2)
	assert.Equal(t, "Ваша оценка 2 по предмету История была удалена", notifs[1].Message)

	// deleting an unknown id is a no-op, no extra notification
	require.NoError(t, env.svc.DeleteGrade(999))
	assert.Len(t, unread(t, env, env.student.ID), 2)
}

func TestService_QueryGrades_roleFiltering(t *testing.T) {
	env := setup(t)

	other, err := env.usrSvc.Create(user.NewUser{Username: "petya", Password: "pwd", Role: user.RoleStudent})
	require.NoError(t, err)

	_, err = env.svc.CreateGrade(school.NewGrade{Student: "ivan", Subject: "Математика", Grade: "5"}, env.teacher)
	require.NoError(t, err)
	_, err = env.svc.CreateGrade(school.NewGrade{Student: "petya", Subject: "Математика", Grade: "4"}, env.teacher)
	require.NoError(t, err)

	all, err := env.svc.QueryGrades(env.teacher)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	mine, err := env.svc.QueryGrades(env.student)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "ivan", mine[0].Student)

	theirs, err := env.svc.QueryGrades(other)
	require.NoError(t, err)
	require.Len(t, theirs, 1)
	assert.Equal(t, "petya", theirs[0].Student)
}

func TestService_ScheduleEntries_notifyAllStudents(t *testing.T) {
	env := setup(t)

	other, err := env.usrSvc.Create(user.NewUser{Username: "petya", Password: "pwd", Role: user.RoleStudent})
	require.NoError(t, err)

	e, err := env.svc.CreateScheduleEntry(school.NewScheduleEntry{
		Day: "Понедельник", Time: "08:00-09:30", Subject: "Математика",
	}, env.teacher)
	require.NoError(t, err)

	want := "Расписание обновлено: Математика в Понедельник с 08:00-09:30"
	for _, stu := range []user.User{env.student, other} {
		notifs := unread(t, env, stu.ID)
		require.Len(t, notifs, 1)
		assert.Equal(t, want, notifs[0].Message)
	}
	assert.Empty(t, unread(t, env, env.teacher.ID), "teachers are not notified")

	_, err = env.svc.UpdateScheduleEntry(e.ID, school.NewScheduleEntry{
		Day: "Вторник", Time: "09:40-11:10", Subject: "Физика",
	}, env.teacher)
	require.NoError(t, err)

	notifs := unread(t, env, env.student.ID)
	require.Len(t, notifs, 2)
	assert.Equal(t,
		"Расписание изменено: Математика в Понедельник с 08:00-09:30 на Физика в Вторник с 09:40-11:10",
		notifs[1].Message,
	)

	require.NoError(t, env.svc.DeleteScheduleEntry(e.ID))
	notifs = unread(t, env, other.ID)
	require.Len(t, notifs, 3)
	assert.Equal(t, "Запись в расписании удалена: Физика в Вторник с 09:40-11:10", notifs[2].Message)
}

func TestService_Attendance_parentCopy(t *testing.T) {
	env := setup(t)

	_, err := env.svc.CreateParentLink(school.NewParentLink{
		StudentUsername: "ivan", ParentName: "Мария Петрова", Contact: "maria@test.ru",
	}, env.teacher)
	require.NoError(t, err)
	emailsvc.ResetSentMessages()

	_, err = env.svc.CreateAttendance(school.NewAttendance{
		Student: "ivan", Date: "2024-09-02", Status: "Отсутствовал",
	}, env.teacher)
	require.NoError(t, err)

	notifs := unread(t, env, env.student.ID)
	// parent link creation + attendance + parent copy note
	require.Len(t, notifs, 3)
	assert.Equal(t, "Ваша посещаемость отмечена: Отсутствовал на 2024-09-02", notifs[1].Message)
	assert.Equal(t, "Родителю отправлено уведомление о вашей посещаемости: Отсутствовал на 2024-09-02", notifs[2].Message)

	require.Len(t, emailsvc.SentMessages, 1)
	sent := emailsvc.SentMessages[0]
	assert.Equal(t, []mail.Address{{Name: "Мария Петрова", Address: "maria@test.ru"}}, sent.To)
	assert.Equal(t, "Уведомление о посещаемости", sent.Subject)
	assert.Equal(t, "Посещаемость ученика ivan отмечена: Отсутствовал на 2024-09-02", sent.BodyStr)
}

func TestService_Attendance_noParentLink(t *testing.T) {
	env := setup(t)

	_, err := env.svc.CreateAttendance(school.NewAttendance{
		Student: "ivan", Date: "2024-09-02", Status: "Присутствовал",
	}, env.teacher)
	require.NoError(t, err)

	notifs := unread(t, env, env.student.ID)
	require.Len(t, notifs, 1)
	assert.Equal(t, "Ваша посещаемость отмечена: Присутствовал на 2024-09-02", notifs[0].Message)
	assert.Empty(t, emailsvc.SentMessages)
}

func TestService_Remarks(t *testing.T) {
	env := setup(t)

	r, err := env.svc.CreateRemark(school.NewRemark{
		Student: "ivan", Date: "2024-09-02", Remark: "Опоздал на урок",
	}, env.teacher)
	require.NoError(t, err)

	notifs := unread(t, env, env.student.ID)
	require.Len(t, notifs, 1)
	assert.Equal(t, "Вам добавлено замечание: Опоздал на урок за 2024-09-02", notifs[0].Message)

	_, err = env.svc.UpdateRemark(r.ID, school.NewRemark{
		Student: "ivan", Date: "2024-09-02", Remark: "Сорвал урок",
	}, env.teacher)
	require.NoError(t, err)

	notifs = unread(t, env, env.student.ID)
	require.Len(t, notifs, 2)
	assert.Equal(t,
		fmt.Sprintf("Ваше замечание изменено: с %q на %q за 2024-09-02", "Опоздал на урок", "Сорвал урок"),
		notifs[1].Message,
	)
}

func TestService_ParentLinks(t *testing.T) {
	env := setup(t)

	p, err := env.svc.CreateParentLink(school.NewParentLink{
		StudentUsername: "ivan", ParentName: "Мария Петрова", Contact: "maria@test.ru",
	}, env.teacher)
	require.NoError(t, err)

	notifs := unread(t, env, env.student.ID)
	require.Len(t, notifs, 1)
	assert.Equal(t, "Добавлена информация о родителе: Мария Петрова", notifs[0].Message)

	require.NoError(t, env.svc.DeleteParentLink(p.ID))
	notifs = unread(t, env, env.student.ID)
	require.Len(t, notifs, 2)
	assert.Equal(t, "Информация о родителе Мария Петрова удалена", notifs[1].Message)

	_, err = env.svc.GetParentLink(p.ID)
	assert.Equal(t, school.ErrParentNotFound, err)
}
