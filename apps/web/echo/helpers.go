package echoweb

import (
	"strconv"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/user"
)

// intIDParam parses the numeric ?id=N query parameter.
func intIDParam(ctx echo.Context) (int, bool) {
	id, err := strconv.Atoi(ctx.QueryParam("id"))
	return id, err == nil
}

// formIntValue parses a numeric form field from the request body.
func formIntValue(ctx echo.Context, name string) (int, error) {
	return strconv.Atoi(ctx.FormValue(name))
}

// validationErrorText flattens a validation failure into a single display
// string; ok is false when err is not a validation error.
func validationErrorText(err error, trans ut.Translator) (string, bool) {
	switch verr := errors.Cause(err).(type) {
	case validator.ValidationErrors:
		msgs := make([]string, 0, len(verr))
		for _, fe := range verr {
			msgs = append(msgs, fe.Translate(trans))
		}
		return strings.Join(msgs, "; "), true
	case *core.ValidationError:
		msgs := make([]string, 0, len(verr.Fields))
		for _, fld := range verr.Fields {
			msgs = append(msgs, fld.Error)
		}
		if len(msgs) == 0 {
			return verr.Error(), true
		}
		return strings.Join(msgs, "; "), true
	}
	return "", false
}

// studentNameResolver caches username lookups while building table rows.
type studentNameResolver struct {
	svc   user.ServiceInterface
	cache map[string]string
}

func newStudentNameResolver(svc user.ServiceInterface) *studentNameResolver {
	return &studentNameResolver{svc: svc, cache: make(map[string]string)}
}

// Resolve returns the student's display name; rows keep the raw username when
// the account no longer exists.
func (r *studentNameResolver) Resolve(username string) string {
	if name, ok := r.cache[username]; ok {
		return name
	}
	name := username
	if usr, err := r.svc.GetByUsername(username); err == nil {
		name = usr.FullName()
	}
	r.cache[username] = name
	return name
}
