package jsondb

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/notification"
	"github.com/trezcool/shule/core/school"
	"github.com/trezcool/shule/core/user"
)

type nopLogger struct{}

func (nopLogger) Enable(bool)                  {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

func openDB(t *testing.T, dir string) *DB {
	t.Helper()
	conf := &core.Config{Database: core.DatabaseConfig{Engine: "json", Dir: dir}}
	db, err := Open(conf, nopLogger{})
	require.NoError(t, err)
	return db
}

func Test_userRepository_CRUD(t *testing.T) {
	db := openDB(t, t.TempDir())

	now := time.Now().UTC()
	usr, err := db.Users.CreateUser(user.User{
		FirstName: "Иван", LastName: "Петров", Username: "ivan", Role: user.RoleStudent,
		CreatedAt: now, UpdatedAt: now,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, usr.ID)

	usr2, err := db.Users.CreateUser(user.User{Username: "anna", Role: user.RoleTeacher})
	require.NoError(t, err)
	assert.Equal(t, 2, usr2.ID)

	got, err := db.Users.GetUserByUsername("ivan")
	require.NoError(t, err)
	assert.Equal(t, usr.ID, got.ID)

	_, err = db.Users.GetUserByUsername("ghost")
	assert.Equal(t, user.ErrNotFound, err)

	assert.Equal(t, user.ErrUsernameExists, db.Users.CheckUsernameUniqueness("ivan"))
	assert.NoError(t, db.Users.CheckUsernameUniqueness("ivan", usr))
	assert.NoError(t, db.Users.CheckUsernameUniqueness("new"))

	students, err := db.Users.QueryUsersByRole(user.RoleStudent)
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.Equal(t, "ivan", students[0].Username)

	usr.LastName = "Сидоров"
	updated, err := db.Users.UpdateUser(usr)
	require.NoError(t, err)
	assert.Equal(t, "Сидоров", updated.LastName)
}

func Test_gradeIDsNeverReused(t *testing.T) {
	db := openDB(t, t.TempDir())

	for _, subject := range []string{"Математика", "Физика", "История"} {
		_, err := db.School.CreateGrade(school.Grade{Student: "ivan", Subject: subject, Grade: "5", AddedBy: 1})
		require.NoError(t, err)
	}

	require.NoError(t, db.School.DeleteGradeByID(3))

	g, err := db.School.CreateGrade(school.Grade{Student: "ivan", Subject: "Химия", Grade: "4", AddedBy: 1})
	require.NoError(t, err)
	assert.Equal(t, 3, g.ID, "highest live id is 2, next id counts from there")

	require.NoError(t, db.School.DeleteGradeByID(1))
	g, err = db.School.CreateGrade(school.Grade{Student: "ivan", Subject: "Биология", Grade: "3", AddedBy: 1})
	require.NoError(t, err)
	assert.Equal(t, 4, g.ID, "deleting an older record must not free its id")
}

func Test_persistenceAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	db := openDB(t, dir)
	_, err := db.School.CreateScheduleEntry(school.ScheduleEntry{
		Day: "Понедельник", Time: "08:00-09:30", Subject: "Математика", AddedBy: 1,
	})
	require.NoError(t, err)
	_, err = db.Notifications.CreateNotification(notification.Notification{
		UserID: 7, Message: "тест", Timestamp: time.Now().UTC(),
	})
	require.NoError(t, err)

	// a fresh instance must see the same documents
	db2 := openDB(t, dir)
	entries, err := db2.School.QueryAllSchedule()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Математика", entries[0].Subject)

	notifs, err := db2.Notifications.QueryUnreadByUser(7)
	require.NoError(t, err)
	assert.Len(t, notifs, 1)
}

func Test_malformedDocumentFallsBackToEmpty(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, gradesFile), []byte("{not json"), 0o644))

	db := openDB(t, dir)
	grades, err := db.School.QueryAllGrades()
	require.NoError(t, err)
	assert.Empty(t, grades)

	// the collection is usable and overwrites the bad document on first save
	_, err = db.School.CreateGrade(school.Grade{Student: "ivan", Subject: "Труд", Grade: "5"})
	require.NoError(t, err)

	db2 := openDB(t, dir)
	grades, err = db2.School.QueryAllGrades()
	require.NoError(t, err)
	assert.Len(t, grades, 1)
}

func Test_notificationOwnership(t *testing.T) {
	db := openDB(t, t.TempDir())

	notif, err := db.Notifications.CreateNotification(notification.Notification{
		UserID: 1, Message: "привет", Timestamp: time.Now().UTC(),
	})
	require.NoError(t, err)

	_, err = db.Notifications.GetNotification(notif.ID, 2)
	assert.Equal(t, notification.ErrNotFound, err, "another user's id must not resolve the notification")

	got, err := db.Notifications.GetNotification(notif.ID, 1)
	require.NoError(t, err)

	got.Read = true
	_, err = db.Notifications.UpdateNotification(got)
	require.NoError(t, err)

	unread, err := db.Notifications.QueryUnreadByUser(1)
	require.NoError(t, err)
	assert.Empty(t, unread)
}

func Test_parentLinkByStudent(t *testing.T) {
	db := openDB(t, t.TempDir())

	_, err := db.School.CreateParentLink(school.ParentLink{
		StudentUsername: "ivan", ParentName: "Мария Петрова", Contact: "maria@test.ru", AddedBy: 1,
	})
	require.NoError(t, err)

	link, err := db.School.GetParentLinkByStudent("ivan")
	require.NoError(t, err)
	assert.Equal(t, "Мария Петрова", link.ParentName)

	_, err = db.School.GetParentLinkByStudent("ghost")
	assert.Equal(t, school.ErrParentNotFound, err)
}
