package services

import "errors"

// Kind classifies a service failure for the HTTP boundary.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindSelfReference
	KindInvalidIdentifier
	KindConflict
	KindNotFound
	KindForbidden
	KindUnauthorized
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindSelfReference:
		return "self_reference"
	case KindInvalidIdentifier:
		return "invalid_identifier"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	case KindForbidden:
		return "forbidden"
	case KindUnauthorized:
		return "unauthorized"
	default:
		return "internal"
	}
}

// Error is a classified failure whose Message is safe to show to clients.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func newError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// KindOf returns the kind of the first *Error in err's chain, or
// KindInternal.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInternal
}

var (
	ErrUserNotFound    = newError(KindNotFound, "User not found")
	ErrRequestNotFound = newError(KindNotFound, "Friend request not found")

	ErrInvalidUserID    = newError(KindInvalidIdentifier, "Invalid user ID")
	ErrInvalidRequestID = newError(KindInvalidIdentifier, "Invalid request ID")

	ErrSelfRequest = newError(KindSelfReference, "Cannot send friend request to yourself")

	ErrAlreadyFriends         = newError(KindConflict, "You are already friends with this user")
	ErrRequestAlreadySent     = newError(KindConflict, "Friend request already sent")
	ErrRequestAlreadyReceived = newError(KindConflict, "This user has already sent you a friend request. Check your incoming requests.")
	ErrRequestAlreadyAccepted = newError(KindConflict, "Friend request already accepted")
	ErrRequestAlreadyRejected = newError(KindConflict, "Friend request already rejected")
	ErrRequestNotPending      = newError(KindConflict, "Friend request is no longer pending")
	ErrRequestChanged         = newError(KindConflict, "Friend request was updated by another request")
	ErrUserAlreadyExists      = newError(KindConflict, "User already exists")

	ErrNotReceiverAccept = newError(KindForbidden, "Not authorized to accept this request")
	ErrNotReceiverReject = newError(KindForbidden, "Not authorized to reject this request")

	ErrInvalidCredentials  = newError(KindValidation, "Invalid credentials")
	ErrGoogleAccount       = newError(KindValidation, "This account uses Google authentication. Please login with Google.")
	ErrSearchQueryRequired = newError(KindValidation, "Search query is required")

	ErrInvalidToken = newError(KindUnauthorized, "Invalid token")
	ErrTokenExpired = newError(KindUnauthorized, "Token expired")
)
