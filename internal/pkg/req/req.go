/*
Package req provides helpers for parsing HTTP request bodies.

It binds JSON bodies into destination structs and distinguishes an absent or
empty body from malformed JSON, so handlers can report the contract violation
accurately.
*/
package req

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"chatrelay/internal/pkg/errs"
)

// BindJSON decodes the JSON request body into dst.
// An absent or empty body yields ErrEmptyBody; anything that is not valid
// JSON yields ErrInvalidJSONFormat.
func BindJSON(r *http.Request, dst any) *errs.CustomError {
	if r.Body == nil {
		return errs.NewError(errs.ErrEmptyBody)
	}

	decoder := json.NewDecoder(r.Body)

	if err := decoder.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errs.NewError(errs.ErrEmptyBody)
		}
		return errs.NewError(errs.ErrInvalidJSONFormat)
	}

	return nil
}
