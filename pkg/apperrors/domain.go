package apperrors

import (
	"fmt"
	"net/http"
)

// Factories used when a lower-level error has to be kept for logging.

func ErrAlreadyExists(err error) *AppError {
	return Wrap(err, CodeAlreadyExists, "resource", "Resource already exists", http.StatusConflict)
}

// --- Auth ---

var ErrInvalidCredentials = New(
	CodeInvalidCredentials,
	"auth",
	"Incorrect username or password",
	http.StatusUnauthorized,
)

var ErrInvalidToken = New(
	CodeInvalidToken,
	"auth",
	"Could not validate credentials",
	http.StatusUnauthorized,
)

var ErrNotEnoughPermissions = New(
	CodeForbidden,
	"auth",
	"Not enough permissions",
	http.StatusForbidden,
)

// --- Users ---

var ErrEmailAlreadyRegistered = New(
	CodeAlreadyExists,
	"user",
	"Email already registered",
	http.StatusConflict,
)

var ErrLoginAlreadyTaken = New(
	CodeAlreadyExists,
	"user",
	"Login already taken",
	http.StatusConflict,
)

var ErrUserNotFound = New(
	CodeNotFound,
	"user",
	"User not found",
	http.StatusNotFound,
)

// --- Posts & comments ---

var ErrPostNotFound = New(
	CodeNotFound,
	"post",
	"Post not found",
	http.StatusNotFound,
)

var ErrCommentNotFound = New(
	CodeNotFound,
	"comment",
	"Comment not found",
	http.StatusNotFound,
)

var ErrEmptyComment = New(
	CodeValidationFailed,
	"comment",
	"Comment content cannot be empty",
	http.StatusBadRequest,
)

// --- Favorites & ratings ---

var ErrAlreadyFavorited = New(
	CodeConflict,
	"favorite",
	"Already in favorites or invalid post",
	http.StatusConflict,
)

var ErrNotInFavorites = New(
	CodeNotFound,
	"favorite",
	"Not in favorites",
	http.StatusNotFound,
)

var ErrInvalidRating = New(
	CodeValidationFailed,
	"rating",
	"Rating must be -1, 0, or 1",
	http.StatusBadRequest,
)

// --- Uploads ---

var ErrInvalidFileType = New(
	CodeValidationFailed,
	"upload",
	"Invalid file type",
	http.StatusBadRequest,
)

var ErrMissingFile = New(
	CodeValidationFailed,
	"upload",
	"File is required",
	http.StatusBadRequest,
)

// ErrFileTooLarge reports the configured limit in whole megabytes.
func ErrFileTooLarge(maxBytes int64) *AppError {
	return New(
		CodeLimitExceeded,
		"upload",
		fmt.Sprintf("File too large (max %dMB)", maxBytes/(1024*1024)),
		http.StatusBadRequest,
	)
}
