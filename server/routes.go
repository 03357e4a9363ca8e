package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (s *Server) initRoutes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(s.RecoverMiddleware)
	s.router.Use(s.LoggingMiddleware)
	s.router.Use(s.CorsMiddleware)

	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Route not found")
	})
	s.router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	s.router.Route(RouteAPIPrefix, func(r chi.Router) {
		r.Get(RouteHealth, s.HealthHandler())

		// AUTH
		r.Post(RouteAuthRegister, s.RegisterHandler())
		r.Post(RouteAuthLogin, s.LoginHandler())
		r.Post(RouteAuthGoogle, s.GoogleLoginHandler())

		// Public reads
		r.Get(RoutePaths, s.ListPathsHandler())
		r.Get(RoutePathByID, s.GetPathHandler())
		r.Get(RoutePosts, s.ListPostsHandler())
		r.Get(RoutePostByID, s.GetPostHandler())
		r.Get(RouteCommentsByReference, s.CommentsByReferenceHandler(false))
		r.Get(RouteCommentsTopLevel, s.CommentsByReferenceHandler(true))
		r.Get(RouteCommentReplies, s.RepliesHandler())

		r.Group(func(r chi.Router) {
			r.Use(s.RequireAuth)

			r.Get(RouteUsersMe, s.CurrentUserHandler())
			r.Post(RouteAuthLogout, s.LogoutHandler())

			r.Post(RoutePaths, s.CreatePathHandler())
			r.Post(RoutePosts, s.CreatePostHandler())

			// PROGRESS
			r.Post(RouteProgress, s.CreateProgressHandler())
			r.Get(RouteProgressByID, s.GetProgressHandler())
			r.Put(RouteProgressByID, s.UpdateNotesHandler())
			r.Delete(RouteProgressByID, s.DeleteProgressHandler())
			r.Get(RouteProgressByUser, s.UserProgressHandler())
			r.Get(RouteProgressRecent, s.RecentProgressHandler())
			r.Get(RouteProgressByUserAndPath, s.ProgressByUserAndPathHandler())
			r.Post(RouteProgressMilestones, s.CompleteMilestoneHandler())
			r.Delete(RouteProgressMilestoneByID, s.UncompleteMilestoneHandler())
			r.Put(RouteProgressPercentage, s.RecomputePercentageHandler())
			r.Put(RouteProgressManualPercentage, s.ManualPercentageHandler())
			r.Put(RouteProgressComplete, s.MarkCompleteHandler())
			r.Put(RouteProgressLike, s.LikeProgressHandler())
			r.Put(RouteProgressBadge, s.AwardBadgeHandler())

			// COMMENTS
			r.Post(RouteComments, s.CreateCommentHandler())
			r.Put(RouteCommentByID, s.UpdateCommentHandler())
			r.Delete(RouteCommentByID, s.DeleteCommentHandler())
			r.Put(RouteCommentLike, s.LikeCommentHandler())
		})
	})
}
