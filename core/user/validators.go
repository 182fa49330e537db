package user

import (
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/trezcool/shule/core"
)

var (
	roleTag  = "role"
	roleText = "недопустимая роль"

	// a new password may not closely match the user's own attributes
	pwdMaxSim     = .7
	pwdAttrSimErr = "пароль слишком похож на ваши данные"
)

// InitValidators registers user-specific validators and translations.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(roleTag, roleValidation)
	core.RegisterCustomTranslation(validate, translator, roleTag, roleText)
}

// roleValidation only allows the known roles.
func roleValidation(fl validator.FieldLevel) bool {
	role := fl.Field().String()
	for _, r := range AllRoles {
		if role == r {
			return true
		}
	}
	return false
}

// validatePasswordSimilarity rejects passwords that are too similar to any of
// the given user attributes.
func validatePasswordSimilarity(pwd string, attrs ...string) error {
	pass := strings.ToLower(pwd)
	for _, attr := range attrs {
		attr = strings.ToLower(core.CleanString(attr))
		if attr == "" {
			continue
		}
		ratio := difflib.NewMatcher(strings.Split(pass, ""), strings.Split(attr, "")).QuickRatio()
		if ratio > pwdMaxSim {
			return core.NewValidationError(nil, core.FieldError{Field: "newPassword", Error: pwdAttrSimErr})
		}
	}
	return nil
}
