package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mnkvreels/vreels-backend/internal/service"
	pkglog "github.com/mnkvreels/vreels-backend/pkg/log"
	"github.com/mnkvreels/vreels-backend/pkg/middleware"
	"github.com/mnkvreels/vreels-backend/pkg/response"
)

// Handler handles HTTP requests for the social graph service.
type Handler struct {
	graph          service.RelationshipManager
	profiles       service.ProfileService
	feeds          service.FeedService
	posts          service.PostService
	authMiddleware *middleware.AuthMiddleware
}

// NewHandler creates a new HTTP handler.
func NewHandler(
	graph service.RelationshipManager,
	profiles service.ProfileService,
	feeds service.FeedService,
	posts service.PostService,
	authMiddleware *middleware.AuthMiddleware,
) *Handler {
	return &Handler{
		graph:          graph,
		profiles:       profiles,
		feeds:          feeds,
		posts:          posts,
		authMiddleware: authMiddleware,
	}
}

// RegisterRoutes registers all routes onto the Gin engine. Every route
// requires a bearer token.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api/v1", h.authMiddleware.RequireAuth())
	{
		users := api.Group("/users")
		{
			users.POST("/:user_id/follow", h.Follow)
			users.DELETE("/:user_id/follow", h.Unfollow)
			users.POST("/:user_id/follow-request", h.RequestFollow)
			users.DELETE("/:user_id/follow-request", h.CancelRequest)
			users.POST("/:user_id/block", h.Block)
			users.DELETE("/:user_id/block", h.Unblock)

			users.GET("/:user_id/profile", h.GetProfile)
			users.GET("/:user_id/relationship", h.GetRelationship)
			users.GET("/:user_id/counts", h.GetCounts)
			users.GET("/:user_id/followers", h.ListFollowers)
			users.GET("/:user_id/following", h.ListFollowing)
			users.GET("/:user_id/posts", h.ListUserPosts)
		}

		me := api.Group("/me")
		{
			me.GET("/follow-requests", h.ListIncomingRequests)
			me.POST("/follow-requests/:user_id/accept", h.AcceptRequest)
			me.POST("/follow-requests/:user_id/reject", h.RejectRequest)
			me.GET("/blocks", h.ListBlocked)
			me.GET("/suggestions", h.ListSuggestions)
			me.GET("/saved-posts", h.ListSavedPosts)
			me.GET("/liked-posts", h.ListLikedPosts)
		}

		api.GET("/feed", h.ListFeed)

		posts := api.Group("/posts")
		{
			posts.POST("", h.CreatePost)
			posts.GET("/:post_id", h.GetPost)
			posts.DELETE("/:post_id", h.DeletePost)
			posts.POST("/:post_id/like", h.Like)
			posts.DELETE("/:post_id/like", h.Unlike)
			posts.POST("/:post_id/save", h.Save)
			posts.DELETE("/:post_id/save", h.Unsave)
			posts.POST("/:post_id/comments", h.AddComment)
			posts.GET("/:post_id/comments", h.ListComments)
			posts.DELETE("/:post_id/comments/:comment_id", h.DeleteComment)
		}

		admin := api.Group("/admin", h.authMiddleware.RequireRole(middleware.RoleAdmin))
		{
			admin.POST("/users/:user_id/recount", h.Recount)
		}
	}
}

// actorAndTarget returns the authenticated user and the :user_id param,
// writing the error response itself when either is missing.
func actorAndTarget(c *gin.Context) (string, string, bool) {
	actorID := middleware.GetUserID(c)
	if actorID == "" {
		response.Unauthorized(c, "unauthorized")
		return "", "", false
	}
	targetID := c.Param("user_id")
	if targetID == "" {
		response.BadRequest(c, "user_id is required")
		return "", "", false
	}
	return actorID, targetID, true
}

func postIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("post_id"), 10, 64)
	if err != nil || id == 0 {
		response.BadRequest(c, "invalid post_id")
		return 0, false
	}
	return uint(id), true
}

// writeError maps service errors onto HTTP responses. Anything untyped is
// logged and reported as a 500 with fallback as the message.
func writeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrSelfReference), errors.Is(err, service.ErrInvalidArgument):
		response.BadRequest(c, err.Error())
	case errors.Is(err, service.ErrForbidden):
		response.Forbidden(c, "not allowed")
	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrPostNotFound),
		errors.Is(err, service.ErrCommentNotFound),
		errors.Is(err, service.ErrRequestNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, service.ErrNotFollowing),
		errors.Is(err, service.ErrNotBlocked),
		errors.Is(err, service.ErrRequestAlreadyPending):
		response.Conflict(c, err.Error())
	default:
		l := pkglog.Ctx(c.Request.Context())
		l.Error().Err(err).Str(pkglog.FieldPath, c.FullPath()).Msg(fallback)
		response.InternalError(c, fallback)
	}
}
