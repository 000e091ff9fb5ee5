package entra

import "fmt"

// ErrorKind identifies one delegated-authentication failure mode. The kind
// name is machine-readable; Description is safe to show end users.
type ErrorKind int

// Delegated-authentication failure kinds.
const (
	KindMissingToken ErrorKind = iota
	KindInvalidToken
	KindNotAccessToken
	KindSigningKeyFetchFailed
	KindMissingPrincipal
	KindGraphRequestFailed
	KindMissingGraphUser
	KindMissingGraphUserMail
	KindInvalidGraphUserMailFormat
	KindMissingGraphUserOfficeLocation
	KindUserCreationFailed
)

var kindNames = map[ErrorKind]string{
	KindMissingToken:                   "MissingToken",
	KindInvalidToken:                   "InvalidToken",
	KindNotAccessToken:                 "NotAccessToken",
	KindSigningKeyFetchFailed:          "SigningKeyFetchFailed",
	KindMissingPrincipal:               "MissingPrincipal",
	KindGraphRequestFailed:             "GraphRequestFailed",
	KindMissingGraphUser:               "MissingGraphUser",
	KindMissingGraphUserMail:           "MissingGraphUserMail",
	KindInvalidGraphUserMailFormat:     "InvalidGraphUserMailFormat",
	KindMissingGraphUserOfficeLocation: "MissingGraphUserOfficeLocation",
	KindUserCreationFailed:             "UserCreationFailed",
}

var kindDescriptions = map[ErrorKind]string{
	KindMissingToken:          "Access token was not provided.",
	KindInvalidToken:          "The access token is invalid.",
	KindNotAccessToken:        "The token is not an access token.",
	KindSigningKeyFetchFailed: "Unable to retrieve signing keys.",
	KindMissingPrincipal:      "Unable to extract claims principal from access token.",
	KindGraphRequestFailed: "Unable to communicate with the profile service. " +
		"The access token may not include profile permissions or the service is unreachable.",
	KindMissingGraphUser:     "Unable to retrieve user information from the profile service.",
	KindMissingGraphUserMail: "The profile service did not provide a mail or user principal name for the user.",
	KindInvalidGraphUserMailFormat: "The user's email address format is not compatible " +
		"with the local identity system.",
	KindMissingGraphUserOfficeLocation: "The profile service did not provide an office location for the user.",
	KindUserCreationFailed:             "Failed to create local user account.",
}

// String returns the machine-readable kind name.
func (k ErrorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}

	return "Unknown"
}

// Description returns the user-safe description of the failure.
func (k ErrorKind) Description() string {
	if desc, ok := kindDescriptions[k]; ok {
		return desc
	}

	return "A delegated authentication error occurred."
}

// Error is a delegated-authentication failure carrying its kind and an
// optional underlying cause. Credential material never appears in the
// message.
type Error struct {
	Kind  ErrorKind
	cause error
}

// NewError creates an Error of the given kind.
func NewError(kind ErrorKind) *Error {
	return &Error{Kind: kind}
}

// WrapError creates an Error of the given kind wrapping a cause.
func WrapError(kind ErrorKind, cause error) *Error {
	return &Error{Kind: kind, cause: cause}
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Kind.Description(), e.cause)
	}

	return e.Kind.Description()
}

// Unwrap exposes the underlying cause.
func (e *Error) Unwrap() error {
	return e.cause
}
