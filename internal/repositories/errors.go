package repositories

import (
	"errors"
	"strings"
)

var (
	ErrUserNotFound          = errors.New("user not found")
	ErrUserAlreadyExists     = errors.New("user already exists")
	ErrPostNotFound          = errors.New("post not found")
	ErrCommentNotFound       = errors.New("comment not found")
	ErrFavoriteNotFound      = errors.New("favorite not found")
	ErrFavoriteAlreadyExists = errors.New("favorite already exists")
)

// likeEscape must match the ESCAPE clause of every LIKE using likePattern.
// A backslash would need dialect-specific quoting.
const likeEscape = "!"

var likeEscaper = strings.NewReplacer(likeEscape, likeEscape+likeEscape, "%", likeEscape+"%", "_", likeEscape+"_")

// likePattern builds a case-insensitive literal substring pattern for
// LOWER(col) LIKE ? ESCAPE '!'.
func likePattern(q string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(q)) + "%"
}
