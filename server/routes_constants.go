package server

// Route path constants. Every route is mounted under RouteAPIPrefix.
const (
	RouteAPIPrefix = "/api"
	RouteHealth    = "/health"

	// Auth Routes
	RouteAuthRegister = "/auth/register"
	RouteAuthLogin    = "/auth/login"
	RouteAuthGoogle   = "/auth/google"
	RouteAuthLogout   = "/auth/logout"
	RouteUsersMe      = "/users/me"

	// Learning Path Routes
	RoutePaths    = "/paths"
	RoutePathByID = "/paths/{id}"

	// Progress Routes
	RouteProgress                 = "/progress"
	RouteProgressByID             = "/progress/{id}"
	RouteProgressByUser           = "/progress/users/{userId}"
	RouteProgressRecent           = "/progress/users/{userId}/recent"
	RouteProgressByUserAndPath    = "/progress/users/{userId}/paths/{pathId}"
	RouteProgressMilestones       = "/progress/{id}/milestones"
	RouteProgressMilestoneByID    = "/progress/{id}/milestones/{milestoneId}"
	RouteProgressPercentage       = "/progress/{id}/percentage"
	RouteProgressManualPercentage = "/progress/{id}/manual-percentage"
	RouteProgressComplete         = "/progress/{id}/complete"
	RouteProgressLike             = "/progress/{id}/like"
	RouteProgressBadge            = "/progress/{id}/badges/{badge}"

	// Comment Routes
	RouteComments            = "/comments"
	RouteCommentByID         = "/comments/{id}"
	RouteCommentLike         = "/comments/{id}/like"
	RouteCommentsByReference = "/comments/references"
	RouteCommentsTopLevel    = "/comments/top-level/references"
	RouteCommentReplies      = "/comments/replies/{id}"

	// Post Routes
	RoutePosts    = "/posts"
	RoutePostByID = "/posts/{id}"
)
