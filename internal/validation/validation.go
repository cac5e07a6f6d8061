// Package validation checks the shape of authentication payloads before
// they reach the auth provider.
package validation

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Kind classifies why a field failed.
type Kind string

const (
	FieldRequired    Kind = "FieldRequired"
	InvalidEmail     Kind = "InvalidEmail"
	PasswordTooShort Kind = "PasswordTooShort"
	PasswordMismatch Kind = "PasswordMismatch"
	InvalidUsername  Kind = "InvalidUsername"
)

const MinPasswordLength = 6

var messages = map[Kind]string{
	FieldRequired:    "Must not be empty",
	InvalidEmail:     "Must be a valid email address",
	PasswordTooShort: "Must be at least 6 characters",
	PasswordMismatch: "Passwords must be the same",
	InvalidUsername:  "Must be at most 64 letters, digits, '-' or '_'",
}

var tagKinds = map[string]Kind{
	"notblank": FieldRequired,
	"email":    InvalidEmail,
	"min":      PasswordTooShort,
	"eqfield":  PasswordMismatch,
	"username": InvalidUsername,
}

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// IsValidUsername reports whether s can name a profile. Usernames end up in
// object keys and VARCHAR(64) columns.
func IsValidUsername(s string) bool {
	return usernamePattern.MatchString(s)
}

// Result is keyed by the JSON field name of the offending field.
type Result struct {
	Valid  bool
	Errors map[string]string
	Kinds  map[string]Kind
}

type LoginRequest struct {
	Email    string `json:"email" validate:"notblank"`
	Password string `json:"password" validate:"notblank"`
}

func (r *LoginRequest) Normalize() {
	r.Email = strings.TrimSpace(r.Email)
}

type SignUpRequest struct {
	FirstName       string `json:"firstName" validate:"notblank"`
	LastName        string `json:"lastName" validate:"notblank"`
	Email           string `json:"email" validate:"notblank,email"`
	PhoneNumber     string `json:"phoneNumber" validate:"notblank"`
	Country         string `json:"country" validate:"notblank"`
	Username        string `json:"username" validate:"notblank,username"`
	Password        string `json:"password" validate:"notblank,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"notblank,eqfield=Password"`
}

func (r *SignUpRequest) Normalize() {
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.Email = strings.TrimSpace(r.Email)
	r.PhoneNumber = strings.TrimSpace(r.PhoneNumber)
	r.Country = strings.TrimSpace(r.Country)
	r.Username = strings.TrimSpace(r.Username)
}

type ResetRequest struct {
	Email string `json:"email" validate:"notblank,email"`
}

func (r *ResetRequest) Normalize() {
	r.Email = strings.TrimSpace(r.Email)
}

type ResetConfirmRequest struct {
	Token           string `json:"token" validate:"notblank"`
	Password        string `json:"password" validate:"notblank,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"notblank,eqfield=Password"`
}

func (r *ResetConfirmRequest) Normalize() {
	r.Token = strings.TrimSpace(r.Token)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// Registration only fails for an empty tag or nil func.
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return IsValidUsername(fl.Field().String())
	})
	return v
}

func ValidateLoginData(req LoginRequest) Result {
	req.Normalize()
	return check(req)
}

func ValidateSignUpData(req SignUpRequest) Result {
	req.Normalize()
	return check(req)
}

func ValidateResetData(req ResetRequest) Result {
	req.Normalize()
	return check(req)
}

func ValidateResetConfirmData(req ResetConfirmRequest) Result {
	req.Normalize()
	return check(req)
}

func check(req any) Result {
	res := Result{Valid: true, Errors: map[string]string{}, Kinds: map[string]Kind{}}

	err := validate.Struct(req)
	if err == nil {
		return res
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		res.Valid = false
		res.Errors["general"] = "Invalid request"
		return res
	}
	for _, fe := range verrs {
		kind, ok := tagKinds[fe.Tag()]
		if !ok {
			kind = FieldRequired
		}
		res.Valid = false
		res.Kinds[fe.Field()] = kind
		res.Errors[fe.Field()] = messages[kind]
	}
	return res
}
