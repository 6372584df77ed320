package contextkeys

// Keys stored on gin.Context by the auth middleware.
const (
	UserIDKey = "userID"
	UserKey   = "user"
)
