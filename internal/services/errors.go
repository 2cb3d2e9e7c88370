package services

import "errors"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrPostNotFound       = errors.New("post not found")
	ErrCommentNotFound    = errors.New("comment not found")
	ErrReportNotFound     = errors.New("report not found")
	ErrInvalidCredentials = errors.New("invalid phone number or password")
	ErrPhoneTaken         = errors.New("phone number already registered")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrCodeInvalid        = errors.New("verification code invalid or expired")
	ErrSelfReport         = errors.New("cannot report your own post")
	ErrDuplicateReport    = errors.New("post already reported by this user")
	ErrInvalidReason      = errors.New("invalid report reason")
	ErrInvalidStatus      = errors.New("invalid report status")
	ErrReportFinalized    = errors.New("report already resolved or rejected")
	ErrSelfFriend         = errors.New("cannot friend yourself")
	ErrAlreadyFriends     = errors.New("friend relation already exists")
	ErrNotFriends         = errors.New("friend relation not found")
	ErrForbidden          = errors.New("not allowed")
	ErrAlreadyLiked       = errors.New("already liked")
	ErrNotLiked           = errors.New("like not found")
	ErrSMSThrottled       = errors.New("too many verification requests, try again later")
)

// ValidationError marks user input problems so handlers can answer 400
// without enumerating every message.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }

func validationErr(msg string) error { return &ValidationError{msg: msg} }
