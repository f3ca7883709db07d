package htconfig

import (
	validator "github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validate checks ClientOptions against its struct tags (gte bounds on
// pool/retry sizing, a url-shaped BaseURL when non-empty).
func (o ClientOptions) Validate() error {
	return validate.Struct(o)
}
