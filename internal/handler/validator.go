package handler

import (
    "github.com/go-playground/validator/v10"
)

// RequestValidator adapts go-playground/validator to Echo's Validator
// interface so handlers can call c.Validate on bound request bodies.
type RequestValidator struct {
    validate *validator.Validate
}

// NewRequestValidator returns a validator with struct tag validation enabled.
func NewRequestValidator() *RequestValidator {
    return &RequestValidator{validate: validator.New()}
}

// Validate implements echo.Validator.
func (v *RequestValidator) Validate(i interface{}) error {
    return v.validate.Struct(i)
}
