// Package validation wraps go-playground/validator with the conventions used
// by the scoring inputs: field names come from json tags, and every violation
// is reported with the valid range written out from the struct tag.
package validation

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	once     sync.Once
	instance *validator.Validate
)

// Validator returns the shared validator instance.
func Validator() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
		_ = v.RegisterValidation("finite", validateFinite)
		instance = v
	})
	return instance
}

// validateFinite rejects NaN and ±Inf floats.
func validateFinite(fl validator.FieldLevel) bool {
	f := fl.Field()
	switch f.Kind() {
	case reflect.Float32, reflect.Float64:
		x := f.Float()
		return !math.IsNaN(x) && !math.IsInf(x, 0)
	}
	return true
}

// Violation is one field that failed validation.
type Violation struct {
	Field string
	Value any
	Range string
}

// Check validates s (a struct or pointer to struct) and returns its
// violations in field order. A nil slice means s is valid.
func Check(s any) ([]Violation, error) {
	err := Validator().Struct(s)
	if err == nil {
		return nil, nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, err
	}

	t := reflect.TypeOf(s)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	out := make([]Violation, 0, len(verrs))
	for _, fe := range verrs {
		rng := fe.Tag()
		if sf, ok := t.FieldByName(fe.StructField()); ok {
			rng = DescribeTag(sf.Tag.Get("validate"))
		}
		out = append(out, Violation{Field: fe.Field(), Value: fe.Value(), Range: rng})
	}
	return out, nil
}

// DescribeTag turns a validate tag such as "gte=0,lte=90" into "[0, 90]".
func DescribeTag(tag string) string {
	var (
		lo, hi         string
		loOpen, hiOpen bool
		extra          []string
	)
	for _, part := range strings.Split(tag, ",") {
		key, val, _ := strings.Cut(strings.TrimSpace(part), "=")
		switch key {
		case "gte", "min":
			lo = val
		case "gt":
			lo, loOpen = val, true
		case "lte", "max":
			hi = val
		case "lt":
			hi, hiOpen = val, true
		case "finite":
			extra = append(extra, "a finite number")
		case "oneof":
			extra = append(extra, "one of "+strings.ReplaceAll(val, " ", "|"))
		case "required":
			extra = append(extra, "required")
		}
	}

	var rng string
	switch {
	case lo != "" && hi != "":
		l, r := "[", "]"
		if loOpen {
			l = "("
		}
		if hiOpen {
			r = ")"
		}
		rng = fmt.Sprintf("%s%s, %s%s", l, lo, hi, r)
	case lo != "":
		op := ">="
		if loOpen {
			op = ">"
		}
		rng = op + " " + lo
	case hi != "":
		op := "<="
		if hiOpen {
			op = "<"
		}
		rng = op + " " + hi
	}
	if rng != "" {
		extra = append([]string{rng}, extra...)
	}
	return strings.Join(extra, ", ")
}
