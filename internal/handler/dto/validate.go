// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import "github.com/go-playground/validator/v10"

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks a request struct against its validate tags.
func Validate(v any) error {
	return validate.Struct(v)
}
