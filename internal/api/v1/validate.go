package v1

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/vmunix/phimgo/internal/catalog"
)

// newValidator returns a validator that reports JSON field names and knows
// the catalog enums.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("movietype", func(fl validator.FieldLevel) bool {
		return catalog.MovieType(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("movielang", func(fl validator.FieldLevel) bool {
		return catalog.Language(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("moviestatus", func(fl validator.FieldLevel) bool {
		switch catalog.MovieStatus(fl.Field().String()) {
		case catalog.StatusCompleted, catalog.StatusOngoing, catalog.StatusUncompleted:
			return true
		}
		return false
	})
	return v
}

// validationMessage flattens validator errors into "field: rule" pairs.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		// drop the top-level struct name
		field := fe.Namespace()
		if i := strings.Index(field, "."); i >= 0 {
			field = field[i+1:]
		}
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", field))
		case "min", "gte":
			msgs = append(msgs, fmt.Sprintf("%s must be at least %s", field, fe.Param()))
		case "max", "lte":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s", field, fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s", field, fe.Tag()))
		}
	}
	sort.Strings(msgs)
	return strings.Join(msgs, "; ")
}
