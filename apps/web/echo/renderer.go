package echoweb

import (
	"embed"
	"html/template"
	"io"
	"io/fs"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core/notification"
	"github.com/trezcool/shule/core/user"
)

var (
	//go:embed templates
	templatesFS embed.FS

	//go:embed static
	staticFS embed.FS
)

// renderer parses every page template against the shared layout once at
// startup and serves them through echo's Renderer interface.
type renderer struct {
	pages map[string]*template.Template
}

var _ echo.Renderer = (*renderer)(nil)

func newRenderer() (*renderer, error) {
	funcs := template.FuncMap{
		"formatTime": formatTime,
	}

	layout, err := template.New("layout.html").Funcs(funcs).ParseFS(templatesFS, "templates/layout.html")
	if err != nil {
		return nil, errors.Wrap(err, "parsing layout template")
	}

	entries, err := fs.ReadDir(templatesFS, "templates")
	if err != nil {
		return nil, errors.Wrap(err, "reading templates dir")
	}

	pages := make(map[string]*template.Template, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if name == "layout.html" || !strings.HasSuffix(name, ".html") {
			continue
		}
		page, err := layout.Clone()
		if err != nil {
			return nil, errors.Wrap(err, "cloning layout template")
		}
		if _, err = page.ParseFS(templatesFS, "templates/"+name); err != nil {
			return nil, errors.Wrapf(err, "parsing template %s", name)
		}
		pages[name] = page
	}
	return &renderer{pages: pages}, nil
}

func (r *renderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	page, ok := r.pages[name]
	if !ok {
		return errors.Errorf("template %s not found", name)
	}
	return page.ExecuteTemplate(w, "layout.html", data)
}

// formatTime renders a timestamp the way the ru-RU locale does.
func formatTime(t time.Time) string {
	return t.Local().Format("02.01.2006, 15:04:05")
}

// templateData carries the fields every page can rely on plus a per-page
// payload bag.
type templateData struct {
	Title         string
	User          *user.User
	Notifications []notification.Notification
	Error         string
	RegError      string
	Data          map[string]interface{}
}

// newTemplateData assembles the common render context: the authenticated
// user, if any, and their unread notifications for the navbar dropdown.
func newTemplateData(ctx echo.Context, deps *ServerDeps, title string) (*templateData, error) {
	data := &templateData{
		Title: title,
		Data:  make(map[string]interface{}),
	}
	if usr, ok := getContextUser(ctx); ok {
		data.User = &usr
		notifs, err := deps.NotifSvc.Unread(usr.ID)
		if err != nil {
			return nil, errors.Wrap(err, "querying unread notifications")
		}
		data.Notifications = notifs
	}
	return data, nil
}
