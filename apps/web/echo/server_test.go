package echoweb

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/mail"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/locales/ru"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
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

type testServer struct {
	srv  Server
	conf *core.Config

	usrSvc    user.ServiceInterface
	notifSvc  notification.ServiceInterface
	schoolSvc *school.Service

	teacher user.User
	student user.User
}

func setupServer(t *testing.T) *testServer {
	t.Helper()
	emailsvc.ResetSentMessages()

	conf := &core.Config{
		TestMode:         true,
		AppName:          "Shule",
		SecretKey:        "test-secret",
		DefaultFromEmail: mail.Address{Name: "Shule", Address: "noreply@localhost"},
		Server: core.ServerConfig{
			SessionCookieName:      "shulesid",
			SessionExpirationDelta: time.Hour,
		},
		Database: core.DatabaseConfig{Engine: "json", Dir: t.TempDir()},
	}

	db, err := jsondb.Open(conf, nopLogger{})
	require.NoError(t, err)

	usrSvc := user.NewService(db.Users)
	notifSvc := notification.NewService(db.Notifications)
	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	schoolSvc := school.NewService(db.School, usrSvc, notifSvc, mailSvc, nopLogger{})

	validate := validator.New()
	_ru := ru.New()
	uni := ut.New(_ru, _ru)
	translator, _ := uni.GetTranslator("ru")
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	srv := NewServer(ServerDeps{
		Conf:       conf,
		Logger:     nopLogger{},
		UserSvc:    usrSvc,
		NotifSvc:   notifSvc,
		SchoolSvc:  schoolSvc,
		Validate:   validate,
		Translator: translator,
	})

	teacher, err := usrSvc.Create(user.NewUser{
		FirstName: "Анна", LastName: "Иванова", Username: "anna", Password: "teachpwd", Role: user.RoleTeacher,
	})
	require.NoError(t, err)
	student, err := usrSvc.Create(user.NewUser{
		FirstName: "Иван", LastName: "Петров", Username: "ivan", Password: "studpwd", Role: user.RoleStudent,
	})
	require.NoError(t, err)

	return &testServer{
		srv:       srv,
		conf:      conf,
		usrSvc:    usrSvc,
		notifSvc:  notifSvc,
		schoolSvc: schoolSvc,
		teacher:   teacher,
		student:   student,
	}
}

type reqOpts struct {
	form    url.Values
	as      *user.User
	referer string
}

func (ts *testServer) request(t *testing.T, method, target string, opts reqOpts) *httptest.ResponseRecorder {
	t.Helper()

	var body io.Reader
	if opts.form != nil {
		body = strings.NewReader(opts.form.Encode())
	}
	req := httptest.NewRequest(method, target, body)
	if opts.form != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	}
	if opts.referer != "" {
		req.Header.Set("Referer", opts.referer)
	}
	if opts.as != nil {
		token, err := GenerateToken(ts.conf, GetUserClaims(ts.conf, *opts.as))
		require.NoError(t, err)
		req.AddCookie(&http.Cookie{Name: ts.conf.Server.SessionCookieName, Value: token})
	}
	rec := httptest.NewRecorder()
	ts.srv.ServeHTTP(rec, req)
	return rec
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestRootRedirectsToDashboard(t *testing.T) {
	ts := setupServer(t)

	rec := ts.request(t, http.MethodGet, "/", reqOpts{})
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/dashboard", rec.Header().Get(echo.HeaderLocation))
}

func TestLoginRequiredPagesRedirect(t *testing.T) {
	ts := setupServer(t)

	for _, path := range []string{"/dashboard", "/profile", "/manage-grades", "/manage-schedule", "/manage-attendance", "/manage-remarks"} {
		rec := ts.request(t, http.MethodGet, path, reqOpts{})
		assert.Equal(t, http.StatusFound, rec.Code, path)
		assert.Equal(t, "/login", rec.Header().Get(echo.HeaderLocation), path)
	}
}

func TestLogin(t *testing.T) {
	ts := setupServer(t)

	t.Run("success sets session cookie", func(t *testing.T) {
		rec := ts.request(t, http.MethodPost, "/login", reqOpts{
			form: url.Values{"username": {"ivan"}, "password": {"studpwd"}},
		})
		require.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/dashboard", rec.Header().Get(echo.HeaderLocation))

		cookie := sessionCookie(t, rec, ts.conf.Server.SessionCookieName)
		require.NotNil(t, cookie)
		assert.True(t, cookie.HttpOnly)
		claims, err := parseToken(ts.conf, cookie.Value)
		require.NoError(t, err)
		assert.Equal(t, "ivan", claims.Username)
	})

	t.Run("wrong password re-renders with error", func(t *testing.T) {
		rec := ts.request(t, http.MethodPost, "/login", reqOpts{
			form: url.Values{"username": {"ivan"}, "password": {"wrong"}},
		})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Неверный логин или пароль")
		assert.Nil(t, sessionCookie(t, rec, ts.conf.Server.SessionCookieName))
	})

	t.Run("unknown user gets the same error", func(t *testing.T) {
		rec := ts.request(t, http.MethodPost, "/login", reqOpts{
			form: url.Values{"username": {"ghost"}, "password": {"whatever"}},
		})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Неверный логин или пароль")
	})
}

func TestRegister(t *testing.T) {
	ts := setupServer(t)

	t.Run("success logs the user in", func(t *testing.T) {
		rec := ts.request(t, http.MethodPost, "/register", reqOpts{
			form: url.Values{
				"firstName": {"Петя"}, "lastName": {"Сидоров"},
				"username": {"petya"}, "password": {"p1"}, "role": {"student"},
			},
		})
		require.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/dashboard", rec.Header().Get(echo.HeaderLocation))
		assert.NotNil(t, sessionCookie(t, rec, ts.conf.Server.SessionCookieName))

		usr, err := ts.usrSvc.GetByUsername("petya")
		require.NoError(t, err)
		assert.NoError(t, usr.CheckPassword("p1"))
	})

	t.Run("duplicate username", func(t *testing.T) {
		rec := ts.request(t, http.MethodPost, "/register", reqOpts{
			form: url.Values{"username": {"ivan"}, "password": {"pwd"}, "role": {"student"}},
		})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Пользователь с таким логином уже существует")
	})

	t.Run("bad role", func(t *testing.T) {
		rec := ts.request(t, http.MethodPost, "/register", reqOpts{
			form: url.Values{"username": {"vasya"}, "password": {"pwd"}, "role": {"admin"}},
		})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "недопустимая роль")
	})
}

func TestLogoutClearsCookie(t *testing.T) {
	ts := setupServer(t)

	rec := ts.request(t, http.MethodGet, "/logout", reqOpts{as: &ts.student})
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get(echo.HeaderLocation))

	cookie := sessionCookie(t, rec, ts.conf.Server.SessionCookieName)
	require.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)
}

func TestGradeLifecycle(t *testing.T) {
	ts := setupServer(t)

	t.Run("student cannot add", func(t *testing.T) {
		rec := ts.request(t, http.MethodGet, "/add-grades", reqOpts{as: &ts.student})
		require.Equal(t, http.StatusForbidden, rec.Code)
		assert.Contains(t, rec.Body.String(), "Доступ запрещен")
		assert.Contains(t, rec.Body.String(), "Только учителя могут добавлять оценки")
	})

	t.Run("teacher adds and student is notified", func(t *testing.T) {
		rec := ts.request(t, http.MethodPost, "/add-grades", reqOpts{
			as:   &ts.teacher,
			form: url.Values{"student": {"ivan"}, "subject": {"Математика"}, "grade": {"5"}},
		})
		require.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/manage-grades", rec.Header().Get(echo.HeaderLocation))

		grades, err := ts.schoolSvc.QueryGrades(ts.teacher)
		require.NoError(t, err)
		require.Len(t, grades, 1)
		assert.Equal(t, 1, grades[0].ID)
		assert.Equal(t, ts.teacher.ID, grades[0].AddedBy)

		notifs, err := ts.notifSvc.Unread(ts.student.ID)
		require.NoError(t, err)
		require.Len(t, notifs, 1)
		assert.Contains(t, notifs[0].Message, "5")
		assert.Contains(t, notifs[0].Message, "Математика")
	})

	t.Run("student sees only own grades", func(t *testing.T) {
		other, err := ts.usrSvc.Create(user.NewUser{Username: "petya", Password: "pwd", Role: user.RoleStudent})
		require.NoError(t, err)
		_, err = ts.schoolSvc.CreateGrade(school.NewGrade{Student: "petya", Subject: "Физика", Grade: "4"}, ts.teacher)
		require.NoError(t, err)

		rec := ts.request(t, http.MethodGet, "/manage-grades", reqOpts{as: &ts.student})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Математика")
		assert.NotContains(t, rec.Body.String(), "Физика")

		rec = ts.request(t, http.MethodGet, "/manage-grades", reqOpts{as: &other})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Физика")
		assert.NotContains(t, rec.Body.String(), "Математика")

		rec = ts.request(t, http.MethodGet, "/manage-grades", reqOpts{as: &ts.teacher})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Математика")
		assert.Contains(t, rec.Body.String(), "Физика")
	})

	t.Run("edit page for unknown id", func(t *testing.T) {
		rec := ts.request(t, http.MethodGet, "/edit-grade?id=999", reqOpts{as: &ts.teacher})
		require.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), "Оценка не найдена")
	})

	t.Run("edit post for unknown id is a silent no-op", func(t *testing.T) {
		rec := ts.request(t, http.MethodPost, "/edit-grade", reqOpts{
			as:   &ts.teacher,
			form: url.Values{"id": {"999"}, "student": {"ivan"}, "subject": {"Химия"}, "grade": {"2"}},
		})
		require.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/manage-grades", rec.Header().Get(echo.HeaderLocation))

		grades, err := ts.schoolSvc.QueryGrades(ts.teacher)
		require.NoError(t, err)
		for _, g := range grades {
			assert.NotEqual(t, "Химия", g.Subject)
		}
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		for i := 0; i < 2; i++ {
			rec := ts.request(t, http.MethodGet, "/delete-grade?id=1", reqOpts{as: &ts.teacher})
			require.Equal(t, http.StatusFound, rec.Code)
			assert.Equal(t, "/manage-grades", rec.Header().Get(echo.HeaderLocation))
		}
		_, err := ts.schoolSvc.GetGrade(1)
		assert.Equal(t, school.ErrGradeNotFound, err)
	})
}

func TestScheduleGridAndPermissions(t *testing.T) {
	ts := setupServer(t)

	_, err := ts.schoolSvc.CreateScheduleEntry(school.NewScheduleEntry{
		Day: "Понедельник", Time: "08:00-09:30", Subject: "Математика",
	}, ts.teacher)
	require.NoError(t, err)

	t.Run("teacher sees edit controls", func(t *testing.T) {
		rec := ts.request(t, http.MethodGet, "/manage-schedule", reqOpts{as: &ts.teacher})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Математика")
		assert.Contains(t, rec.Body.String(), "/edit-schedule?id=1")
	})

	t.Run("student sees subjects only", func(t *testing.T) {
		rec := ts.request(t, http.MethodGet, "/manage-schedule", reqOpts{as: &ts.student})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Математика")
		assert.NotContains(t, rec.Body.String(), "/edit-schedule")
	})

	t.Run("student cannot mutate", func(t *testing.T) {
		rec := ts.request(t, http.MethodGet, "/delete-schedule?id=1", reqOpts{as: &ts.student})
		require.Equal(t, http.StatusForbidden, rec.Code)
		assert.Contains(t, rec.Body.String(), "Только учителя могут удалять расписание")
	})
}

func TestManageParentsTeacherOnly(t *testing.T) {
	ts := setupServer(t)

	rec := ts.request(t, http.MethodGet, "/manage-parents", reqOpts{as: &ts.student})
	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "Только учителя могут управлять родителями")

	rec = ts.request(t, http.MethodGet, "/manage-parents", reqOpts{as: &ts.teacher})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMarkNotificationRead(t *testing.T) {
	ts := setupServer(t)

	require.NoError(t, ts.notifSvc.Notify(ts.student.ID, "тестовое уведомление"))

	t.Run("marks own notification and follows referer", func(t *testing.T) {
		rec := ts.request(t, http.MethodGet, "/mark-notification-read?id=1", reqOpts{
			as:      &ts.student,
			referer: "/manage-grades",
		})
		require.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/manage-grades", rec.Header().Get(echo.HeaderLocation))

		notifs, err := ts.notifSvc.Unread(ts.student.ID)
		require.NoError(t, err)
		assert.Empty(t, notifs)
	})

	t.Run("already read is a no-op", func(t *testing.T) {
		rec := ts.request(t, http.MethodGet, "/mark-notification-read?id=1", reqOpts{as: &ts.student})
		require.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/dashboard", rec.Header().Get(echo.HeaderLocation))
	})

	t.Run("another user's notification stays unread", func(t *testing.T) {
		require.NoError(t, ts.notifSvc.Notify(ts.student.ID, "второе"))

		rec := ts.request(t, http.MethodGet, "/mark-notification-read?id=2", reqOpts{as: &ts.teacher})
		require.Equal(t, http.StatusFound, rec.Code)

		notifs, err := ts.notifSvc.Unread(ts.student.ID)
		require.NoError(t, err)
		assert.Len(t, notifs, 1)
	})
}

func TestNotificationsShownInLayout(t *testing.T) {
	ts := setupServer(t)

	require.NoError(t, ts.notifSvc.Notify(ts.student.ID, "Вам поставили оценку 5 по предмету Математика"))

	rec := ts.request(t, http.MethodGet, "/dashboard", reqOpts{as: &ts.student})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Вам поставили оценку 5 по предмету Математика")
	assert.Contains(t, rec.Body.String(), "/mark-notification-read?id=1")
}

func TestChangePassword(t *testing.T) {
	ts := setupServer(t)

	t.Run("too similar to own data", func(t *testing.T) {
		rec := ts.request(t, http.MethodPost, "/change-password", reqOpts{
			as:   &ts.student,
			form: url.Values{"newPassword": {"ivan1"}},
		})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "пароль слишком похож на ваши данные")
	})

	t.Run("success", func(t *testing.T) {
		rec := ts.request(t, http.MethodPost, "/change-password", reqOpts{
			as:   &ts.student,
			form: url.Values{"newPassword": {"совсем новый пароль"}},
		})
		require.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/dashboard", rec.Header().Get(echo.HeaderLocation))

		usr, err := ts.usrSvc.GetByUsername("ivan")
		require.NoError(t, err)
		assert.NoError(t, usr.CheckPassword("совсем новый пароль"))
		assert.Error(t, usr.CheckPassword("studpwd"))
	})
}

func TestExportRequiresTeacher(t *testing.T) {
	ts := setupServer(t)

	_, err := ts.schoolSvc.CreateGrade(school.NewGrade{Student: "ivan", Subject: "Математика", Grade: "5"}, ts.teacher)
	require.NoError(t, err)

	rec := ts.request(t, http.MethodGet, "/export-grades", reqOpts{as: &ts.student})
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = ts.request(t, http.MethodGet, "/export-grades", reqOpts{as: &ts.teacher})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxContentType, rec.Header().Get(echo.HeaderContentType))
	assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), "grades.xlsx")
	assert.NotEmpty(t, rec.Body.Bytes())
}
