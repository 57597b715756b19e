/*
Package resp provides helpers for sending the application's JSON responses.

Every response carries a "status" field of "ok" or "error"; successful
responses optionally carry a message or a user payload, error responses a
client-facing message.
*/
package resp

import (
	"encoding/json"
	"net/http"

	"chatrelay/internal/pkg/errs"
	"chatrelay/internal/pkg/logx"
)

// JSONResponse is the wire shape of every HTTP response body.
type JSONResponse struct {
	// Status is "ok" for success and "error" for failures.
	Status string `json:"status"`

	// Message is an optional human-readable status description.
	Message string `json:"message,omitempty"`

	// User is the optional registered user payload.
	User any `json:"user,omitempty"`
}

// RespondJSON sets the JSON content type and writes the payload with the given status.
func RespondJSON(w http.ResponseWriter, r *http.Request, httpStatus int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")

	response, err := json.Marshal(payload)
	if err != nil {
		logx.Error(err, "Error encoding JSON response", "http_status", httpStatus)
		http.Error(w, "Error encoding JSON response", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(httpStatus)
	w.Write(response)
}

// RespondMessage sends HTTP 200 with {"status":"ok","message":...}.
func RespondMessage(w http.ResponseWriter, r *http.Request, message string) {
	RespondJSON(w, r, http.StatusOK, JSONResponse{
		Status:  "ok",
		Message: message,
	})
}

// RespondUser sends HTTP 200 with {"status":"ok","user":{...}}.
func RespondUser(w http.ResponseWriter, r *http.Request, user any) {
	RespondJSON(w, r, http.StatusOK, JSONResponse{
		Status: "ok",
		User:   user,
	})
}

// RespondError sends {"status":"error","message":...} with the error's HTTP status.
func RespondError(w http.ResponseWriter, r *http.Request, customErr *errs.CustomError) {
	if customErr == nil {
		customErr = errs.NewError(errs.ErrUnknown)
	}

	RespondJSON(w, r, customErr.Status, JSONResponse{
		Status:  "error",
		Message: customErr.Message,
	})
}
