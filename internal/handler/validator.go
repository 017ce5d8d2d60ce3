package handler

import (
    "reflect"
    "strings"

    "github.com/go-playground/validator/v10"
)

// Validator adapts go-playground/validator to echo's Validator interface so
// c.Validate can check the binding tags on request DTOs.
type Validator struct {
    v *validator.Validate
}

// NewValidator returns a Validator with the default rule set.  Field
// errors report the JSON name of the field rather than the Go name.
func NewValidator() *Validator {
    v := validator.New(validator.WithRequiredStructEnabled())
    v.RegisterTagNameFunc(func(f reflect.StructField) string {
        name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
        if name == "-" {
            return ""
        }
        return name
    })
    return &Validator{v: v}
}

// Validate implements echo.Validator.
func (v *Validator) Validate(i interface{}) error {
    return v.v.Struct(i)
}
