package errors

import (
	"encoding/json"
)

// BusinessErr signals a precondition the operator can fix (maps to 400)
type BusinessErr struct {
	target  string
	message string
}

func (e *BusinessErr) Error() string {
	return e.message
}

func (e *BusinessErr) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Target  string `json:"target"`
		Message string `json:"message"`
	}{Target: e.target, Message: e.message})
}

func NewBusinessErr(target string, msg string) error {
	return &BusinessErr{
		target:  target,
		message: msg,
	}
}

// EntryNotFoundErr signals a referenced record no longer exists (maps to 404)
type EntryNotFoundErr struct {
	message string
}

func (e *EntryNotFoundErr) Error() string {
	return e.message
}

func NewEntryNotFoundErr(msg string) *EntryNotFoundErr {
	return &EntryNotFoundErr{message: msg}
}

// IntegrityErr signals a multi-step write which was rolled back without
// partial effect (maps to 409)
type IntegrityErr struct {
	message string
	cause   error
}

func (e *IntegrityErr) Error() string {
	return e.message
}

func (e *IntegrityErr) Unwrap() error {
	return e.cause
}

func NewIntegrityErr(msg string, cause error) *IntegrityErr {
	return &IntegrityErr{message: msg, cause: cause}
}
