package validation

import "strings"

// RegisterRequest mirrors the fields needed for registration validation.
type RegisterRequest struct {
	Username string
	Name     string
	Email    string
	Password string
}

// ValidateRegisterRequest validates the fields of a registration request.
func ValidateRegisterRequest(req RegisterRequest) []FieldError {
	var errs []FieldError

	if strings.TrimSpace(req.Name) == "" {
		errs = append(errs, FieldError{Field: "name", Message: "name is required"})
	} else if len(req.Name) > 255 {
		errs = append(errs, FieldError{Field: "name", Message: "name must be at most 255 characters"})
	}

	email := strings.TrimSpace(req.Email)
	if email == "" {
		errs = append(errs, FieldError{Field: "email", Message: "email is required"})
	} else if !strings.Contains(email, "@") || len(email) > 255 {
		errs = append(errs, FieldError{Field: "email", Message: "email must be a valid address"})
	}

	if req.Password == "" {
		errs = append(errs, FieldError{Field: "password", Message: "password is required"})
	} else if len(req.Password) < 8 {
		errs = append(errs, FieldError{Field: "password", Message: "password must be at least 8 characters"})
	} else if len(req.Password) > 72 {
		// bcrypt truncates beyond 72 bytes
		errs = append(errs, FieldError{Field: "password", Message: "password must be at most 72 characters"})
	}

	if username := strings.TrimSpace(req.Username); username != "" && len(username) > 64 {
		errs = append(errs, FieldError{Field: "username", Message: "username must be at most 64 characters"})
	}

	return errs
}

// LoginRequest mirrors the fields needed for login validation.
type LoginRequest struct {
	Email    string
	Username string
	Password string
}

// ValidateLoginRequest validates the fields of a login request.
func ValidateLoginRequest(req LoginRequest) []FieldError {
	var errs []FieldError

	if strings.TrimSpace(req.Email) == "" && strings.TrimSpace(req.Username) == "" {
		errs = append(errs, FieldError{Field: "email", Message: "email or username is required"})
	}

	if req.Password == "" {
		errs = append(errs, FieldError{Field: "password", Message: "password is required"})
	}

	return errs
}

// PasswordChangeRequest mirrors the fields needed for password-change validation.
type PasswordChangeRequest struct {
	CurrentPassword string
	NewPassword     string
}

// ValidatePasswordChangeRequest validates the fields of a password-change request.
func ValidatePasswordChangeRequest(req PasswordChangeRequest) []FieldError {
	var errs []FieldError

	if req.CurrentPassword == "" {
		errs = append(errs, FieldError{Field: "currentPassword", Message: "currentPassword is required"})
	}

	if req.NewPassword == "" {
		errs = append(errs, FieldError{Field: "newPassword", Message: "newPassword is required"})
	} else if len(req.NewPassword) < 8 {
		errs = append(errs, FieldError{Field: "newPassword", Message: "newPassword must be at least 8 characters"})
	}

	return errs
}
