package domain

import (
	"net/url"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Validate checks that the required keys are present. The shape of the URL
// is not checked here: an unusable URL makes that one check fail.
func (e EndpointSpec) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.Name, validation.Required),
		validation.Field(&e.URL, validation.Required),
	)
}

// ValidateURL is an ozzo-validation rule accepting absolute http(s) URLs.
// Empty strings pass; pair it with validation.Required where needed.
func ValidateURL(value interface{}) error {
	raw, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}
	if raw == "" {
		return nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return validation.NewError("validation_invalid_url", "must be a valid URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return validation.NewError("validation_invalid_scheme", "URL must use http or https scheme")
	}
	if u.Host == "" {
		return validation.NewError("validation_missing_host", "URL must have a host")
	}
	return nil
}
