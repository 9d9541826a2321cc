package service

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrIDRequired       = errors.New("id is required")
	ErrNotFound         = errors.New("file not found")
	ErrReaderNil        = errors.New("reader is nil")
	ErrFileNameRequired = errors.New("file name is required")
	ErrInvalidFileName  = errors.New("file names cannot contain " + DisallowedNameChars)
	ErrInvalidFolder    = errors.New("invalid folder path")
	ErrFileTooLarge     = errors.New("file exceeds the maximum upload size")
	ErrUploadInProgress = errors.New("another upload is still in progress")
	ErrUploadNotFound   = errors.New("upload not found")
	ErrUploadActive     = errors.New("upload is still running")
)

// AuthErrorPrefix is prepended to every auth error message. Clients receive
// messages with it removed (see PublicMessage).
const AuthErrorPrefix = "Auth: "

// AuthError is a credential failure identified by a stable code such as
// "auth/wrong-password".
type AuthError struct {
	Code    string
	Message string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s%s (%s).", AuthErrorPrefix, e.Message, e.Code)
}

// Is matches any *AuthError carrying the same code.
func (e *AuthError) Is(target error) bool {
	t, ok := target.(*AuthError)
	return ok && t.Code == e.Code
}

var (
	ErrAuthInvalidEmail        = &AuthError{Code: "auth/invalid-email", Message: "The email address is badly formatted"}
	ErrAuthUserNotFound        = &AuthError{Code: "auth/user-not-found", Message: "There is no user record corresponding to this identifier"}
	ErrAuthWrongPassword       = &AuthError{Code: "auth/wrong-password", Message: "The password is invalid"}
	ErrAuthWeakPassword        = &AuthError{Code: "auth/weak-password", Message: "Password should be at least 6 characters"}
	ErrAuthEmailInUse          = &AuthError{Code: "auth/email-already-in-use", Message: "The email address is already in use by another account"}
	ErrAuthTooManyRequests     = &AuthError{Code: "auth/too-many-requests", Message: "Access has been temporarily disabled due to many failed login attempts"}
	ErrAuthOperationNotAllowed = &AuthError{Code: "auth/operation-not-allowed", Message: "Sign up is disabled"}
	ErrAuthInvalidToken        = &AuthError{Code: "auth/invalid-token", Message: "The session token is invalid or has expired"}
)

// PublicMessage returns err's message with the first AuthErrorPrefix removed.
func PublicMessage(err error) string {
	if err == nil {
		return ""
	}
	return strings.Replace(err.Error(), AuthErrorPrefix, "", 1)
}
