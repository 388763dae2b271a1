package utils

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
)

// Minimal internal validator to avoid external dependency. Supports:
// - required
// - emailfmt (basic address shape)
// - pwdmin (min length 6)
// - rolecheck (admin, buyer or worker)

var reEmail = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// ValidateStruct inspects struct tags `validate:"..."` and returns the first error encountered.
func ValidateStruct(s interface{}) error {
	v := reflect.ValueOf(s)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return errors.New("ValidateStruct expects a struct or pointer to struct")
	}
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("validate")
		if tag == "" {
			continue
		}
		parts := strings.Split(tag, ",")
		fv := v.Field(i)
		var sval string
		if fv.IsValid() && fv.Kind() == reflect.String {
			sval = fv.String()
		}
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p == "required" {
				switch fv.Kind() {
				case reflect.String:
					if sval == "" {
						return errors.New(field.Name + " is required")
					}
				case reflect.Int, reflect.Int64:
					if fv.Int() <= 0 {
						return errors.New(field.Name + " must be positive")
					}
				case reflect.Float64:
					if fv.Float() <= 0 {
						return errors.New(field.Name + " must be positive")
					}
				}
			} else if p == "emailfmt" {
				if sval != "" && !reEmail.MatchString(sval) {
					return errors.New(field.Name + " must be a valid email address")
				}
			} else if p == "pwdmin" {
				if len(sval) < 6 {
					return errors.New(field.Name + " must be at least 6 characters")
				}
			} else if p == "rolecheck" {
				if sval != "admin" && sval != "buyer" && sval != "worker" {
					return errors.New(field.Name + " must be admin, buyer or worker")
				}
			}
		}
	}
	return nil
}
