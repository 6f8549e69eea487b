package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jmcleod/postit/postit"
	"github.com/jmcleod/postit/storage"
)

// Message is the short machine-readable status carried in every response
// envelope. The numeric code is derived from it, never set independently.
type Message string

const (
	MsgOK                  Message = "OK"
	MsgCreated             Message = "CREATED"
	MsgBadRequest          Message = "BAD_REQUEST"
	MsgUnauthorized        Message = "UNAUTHORIZED"
	MsgForbidden           Message = "FORBIDDEN"
	MsgNotFound            Message = "NOT_FOUND"
	MsgConflict            Message = "CONFLICT"
	MsgUnprocessable       Message = "UNPROCESSABLE_ENTITY"
	MsgTooManyRequests     Message = "TOO_MANY_REQUESTS"
	MsgInternalServerError Message = "INTERNAL_SERVER_ERROR"
)

func (m Message) statusCode() int {
	switch m {
	case MsgOK:
		return http.StatusOK
	case MsgCreated:
		return http.StatusCreated
	case MsgBadRequest:
		return http.StatusBadRequest
	case MsgUnauthorized:
		return http.StatusUnauthorized
	case MsgForbidden:
		return http.StatusForbidden
	case MsgNotFound:
		return http.StatusNotFound
	case MsgConflict:
		return http.StatusConflict
	case MsgUnprocessable:
		return http.StatusUnprocessableEntity
	case MsgTooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Envelope is the uniform response body for every API route.
type Envelope struct {
	Code        int     `json:"code"`
	Message     Message `json:"message"`
	LongMessage string  `json:"longMessage,omitempty"`
	Data        any     `json:"data,omitempty"`
}

func writeEnvelope(w http.ResponseWriter, msg Message, longMessage string, data any) {
	code := msg.statusCode()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(Envelope{
		Code:        code,
		Message:     msg,
		LongMessage: longMessage,
		Data:        data,
	})
}

func writeOK(w http.ResponseWriter, longMessage string, data any) {
	writeEnvelope(w, MsgOK, longMessage, data)
}

func writeError(w http.ResponseWriter, msg Message, longMessage string) {
	writeEnvelope(w, msg, longMessage, nil)
}

func writeUnauthorized(w http.ResponseWriter) {
	writeError(w, MsgUnauthorized, "You are not authorized")
}

// mapError translates storage and validation errors into envelopes.
func mapError(w http.ResponseWriter, err error) {
	var verr *postit.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, MsgUnprocessable, verr.Error())
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, MsgNotFound, err.Error())
	case errors.Is(err, storage.ErrDuplicate):
		writeError(w, MsgConflict, err.Error())
	default:
		writeError(w, MsgInternalServerError, err.Error())
	}
}
