package clients

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Error is the single error shape returned for upstream failures. Status is
// the upstream HTTP status, or 0 when no response was received.
type Error struct {
	Message string
	Status  int
	Err     error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Normalize turns any error into *Error. A message the upstream sent back is
// kept; transport and decoding failures get fallback.
func Normalize(err error, fallback string) *Error {
	if err == nil {
		return nil
	}
	var ce *Error
	if errors.As(err, &ce) {
		if ce.Status != 0 && ce.Message != "" {
			return ce
		}
		return &Error{Message: fallback, Status: ce.Status, Err: err}
	}
	return &Error{Message: fallback, Err: err}
}

// StatusOf reports the upstream status carried by err, or 0.
func StatusOf(err error) int {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Status
	}
	return 0
}

const maxErrorBody = 64 << 10

func errorFromResponse(name string, resp *http.Response) *Error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	msg := ""
	if json.Unmarshal(raw, &body) == nil {
		msg = body.Message
		if msg == "" {
			msg = body.Error
		}
	} else if !strings.HasPrefix(strings.TrimSpace(resp.Header.Get("Content-Type")), "text/html") {
		msg = strings.TrimSpace(string(raw))
	}
	if msg == "" {
		msg = fmt.Sprintf("%s: %s", name, strings.ToLower(http.StatusText(resp.StatusCode)))
	}
	return &Error{Message: msg, Status: resp.StatusCode}
}
