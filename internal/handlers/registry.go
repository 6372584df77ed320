package handlers

// AppHandlers holds every HTTP handler of the application.
type AppHandlers struct {
	AuthHandler     *AuthHandler
	UserHandler     *UserHandler
	PostHandler     *PostHandler
	CommentHandler  *CommentHandler
	FavoriteHandler *FavoriteHandler
	SearchHandler   *SearchHandler
	UploadHandler   *UploadHandler
}
