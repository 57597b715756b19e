/*
Package errs provides the custom error type and application-level error codes.

This file defines the error code constants and the map from codes to their
CustomError template, used to standardize HTTP responses and channel errors.
*/
package errs

import "net/http"

// 1xxx: General Request Handling Errors
const (
	// ErrEmptyBody indicates that the request body was missing or empty.
	ErrEmptyBody = 1001

	// ErrInvalidJSONFormat indicates that the request body was not valid JSON.
	ErrInvalidJSONFormat = 1002

	// ErrNameRequired indicates that the registration request carried no usable name.
	ErrNameRequired = 1003
)

// 2xxx: Registry Business Logic Errors
const (
	// ErrNameTaken indicates that the requested display name is already registered.
	ErrNameTaken = 2001

	// ErrNicknameTaken is the channel-protocol variant of ErrNameTaken,
	// reported back to the announcing session only.
	ErrNicknameTaken = 2002
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified internal server error.
	ErrUnknown = 5000
)

// errorMap stores the CustomError template for every application error code.
var errorMap = map[int]CustomError{
	// 1xxx: General Request Handling Errors
	ErrEmptyBody:         {Code: ErrEmptyBody, Message: "Request body must not be empty!", Status: http.StatusBadRequest},
	ErrInvalidJSONFormat: {Code: ErrInvalidJSONFormat, Message: "Request body is not valid JSON!", Status: http.StatusBadRequest},
	ErrNameRequired:      {Code: ErrNameRequired, Message: "A name is required!", Status: http.StatusBadRequest},

	// 2xxx: Registry Business Logic Errors
	ErrNameTaken:     {Code: ErrNameTaken, Message: "This name is already taken!", Status: http.StatusConflict},
	ErrNicknameTaken: {Code: ErrNicknameTaken, Message: "This nickname is already taken!", Status: http.StatusConflict},

	// 5xxx: Internal System Errors
	ErrUnknown: {Code: ErrUnknown, Message: "Something went wrong. Please try again.", Status: http.StatusInternalServerError},
}
