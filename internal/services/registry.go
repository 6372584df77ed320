package services

// ServiceContainer holds every application service.
type ServiceContainer struct {
	AuthService     AuthService
	UserService     UserService
	PostService     PostService
	CommentService  CommentService
	FavoriteService FavoriteService
	RatingService   RatingService
	UploadService   UploadService
}
