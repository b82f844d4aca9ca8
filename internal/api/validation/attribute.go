package validation

import "strings"

// AttributeRequest mirrors the fields needed for attribute create/update validation.
type AttributeRequest struct {
	Key   string
	Value string
}

// ValidateAttributeRequest validates the fields of an attribute write request.
func ValidateAttributeRequest(req AttributeRequest) []FieldError {
	var errs []FieldError

	if strings.TrimSpace(req.Key) == "" {
		errs = append(errs, FieldError{Field: "key", Message: "key is required"})
	} else if len(req.Key) > 255 {
		errs = append(errs, FieldError{Field: "key", Message: "key must be at most 255 characters"})
	}

	if strings.TrimSpace(req.Value) == "" {
		errs = append(errs, FieldError{Field: "value", Message: "value is required"})
	}

	return errs
}
