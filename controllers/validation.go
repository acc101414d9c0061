package controllers

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Bangladeshi mobile numbers as used by bKash, Nagad and Rocket
var bdPhonePattern = regexp.MustCompile(`^(01)[3-9]{1}[0-9]{8}$`)

var registerOnce sync.Once

// RegisterValidators adds the custom binding tags to gin's validator
func RegisterValidators() {
	registerOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			_ = v.RegisterValidation("bdphone", func(fl validator.FieldLevel) bool {
				return bdPhonePattern.MatchString(fl.Field().String())
			})
		}
	})
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Invalid input"
	}
	fe := verrs[0]
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "bdphone":
		return field + " must be a valid mobile number"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "gt", "gte", "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "url":
		return field + " must be a valid URL"
	case "email":
		return field + " must be a valid email"
	default:
		return field + " is invalid"
	}
}
