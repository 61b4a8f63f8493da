package datastore

import (
	"errors"
	"fmt"
)

// Error is a failure reported by the store. The fields follow the PostgREST
// error body so a REST failure round-trips unchanged.
type Error struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("datastore: %s (%s)", e.Message, e.Code)
	}
	return "datastore: " + e.Message
}

// Message extracts the text to show a user for err: the store's message when
// there is one, the error text otherwise, and fallback when both are empty.
func Message(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var storeErr *Error
	if errors.As(err, &storeErr) {
		if storeErr.Message != "" {
			return storeErr.Message
		}
		return fallback
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallback
}
