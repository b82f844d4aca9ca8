package validation

import "strings"

// DataConsumerRequest mirrors the fields needed for data-consumer validation.
type DataConsumerRequest struct {
	Name string
}

// ValidateDataConsumerRequest validates the fields of a data-consumer write request.
func ValidateDataConsumerRequest(req DataConsumerRequest) []FieldError {
	var errs []FieldError

	if strings.TrimSpace(req.Name) == "" {
		errs = append(errs, FieldError{Field: "name", Message: "name is required"})
	} else if len(req.Name) > 255 {
		errs = append(errs, FieldError{Field: "name", Message: "name must be at most 255 characters"})
	}

	return errs
}
