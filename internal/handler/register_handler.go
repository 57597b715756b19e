/*
Package handler provides the HTTP handler for the registration gateway.
*/
package handler

import (
	"net/http"
	"strings"

	"chatrelay/internal/pkg/errs"
	"chatrelay/internal/pkg/req"
	"chatrelay/internal/pkg/resp"
)

// RegisterInput is the request body for claiming a display name.
type RegisterInput struct {
	Name string `json:"name"`
}

// HandleRegister processes the synchronous registration call.
// A successful call inserts the user into the shared registry and returns it;
// it does not announce the user on any channel, so the roster broadcast only
// happens once the client sends new-user over its own channel.
func HandleRegister(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input RegisterInput

		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if strings.TrimSpace(input.Name) == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrNameRequired))
			return
		}

		newUser, customErr := deps.Registry.Register(input.Name)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		resp.RespondUser(w, r, newUser)
	}
}
