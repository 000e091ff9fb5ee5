package directory

import "errors"

var (
	// ErrDomainNotAllowed is returned when the requested domain is not in the
	// configured allow-list. No directory connection is opened in this case.
	ErrDomainNotAllowed = errors.New("domain is not allowed")

	// ErrUserNotFound is returned when the directory search yields no entry
	// for the requested username.
	ErrUserNotFound = errors.New("user not found in directory")

	// ErrOfficeNotAllowed is returned when the found entry has no office
	// location or one outside the configured allow-list.
	ErrOfficeNotAllowed = errors.New("office location is not allowed")

	// ErrInvalidCredentials is returned when the verification bind as the
	// found entry fails with an invalid-credentials result code.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrServerError is returned for any connect, bind or search failure that
	// is not an authentication decision. The transport cause is wrapped into
	// the error message; no raw transport error escapes this package.
	ErrServerError = errors.New("directory server error")
)
