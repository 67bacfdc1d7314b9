package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/mnkvreels/vreels-backend/internal/domain"
	"github.com/mnkvreels/vreels-backend/pkg/middleware"
	"github.com/mnkvreels/vreels-backend/pkg/response"
)

type pageQuery struct {
	Page  int `form:"page" binding:"omitempty,min=1"`
	Limit int `form:"limit" binding:"omitempty,min=1"`
}

type feedQuery struct {
	pageQuery
	Kind       string `form:"kind" binding:"omitempty,oneof=global hashtag following visibility"`
	Hashtag    string `form:"hashtag"`
	Visibility string `form:"visibility" binding:"omitempty,oneof=public private friends"`
	MediaType  string `form:"media_type" binding:"omitempty,oneof=image video"`
}

type suggestionQuery struct {
	Limit int `form:"limit" binding:"omitempty,min=1"`
}

// GetProfile handles GET /api/v1/users/:user_id/profile.
func (h *Handler) GetProfile(c *gin.Context) {
	viewerID, ownerID, ok := actorAndTarget(c)
	if !ok {
		return
	}

	profile, err := h.profiles.ResolveProfileVisibility(c.Request.Context(), viewerID, ownerID)
	if err != nil {
		writeError(c, err, "failed to load profile")
		return
	}
	response.Success(c, profile)
}

// GetRelationship handles GET /api/v1/users/:user_id/relationship.
func (h *Handler) GetRelationship(c *gin.Context) {
	viewerID, targetID, ok := actorAndTarget(c)
	if !ok {
		return
	}

	rel, err := h.profiles.GetRelationship(c.Request.Context(), viewerID, targetID)
	if err != nil {
		writeError(c, err, "failed to load relationship")
		return
	}
	response.Success(c, rel)
}

// GetCounts handles GET /api/v1/users/:user_id/counts. Counts follow the
// profile rule: a redacted profile does not expose them.
func (h *Handler) GetCounts(c *gin.Context) {
	viewerID, ownerID, ok := actorAndTarget(c)
	if !ok {
		return
	}

	profile, err := h.profiles.ResolveProfileVisibility(c.Request.Context(), viewerID, ownerID)
	if err != nil {
		writeError(c, err, "failed to load counts")
		return
	}

	if profile.Counts == nil {
		response.Forbidden(c, "not allowed")
		return
	}
	response.Success(c, profile.Counts)
}

func (h *Handler) listEdges(c *gin.Context, followers bool) {
	viewerID, ownerID, ok := actorAndTarget(c)
	if !ok {
		return
	}

	var q pageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	list := h.profiles.ListFollowing
	if followers {
		list = h.profiles.ListFollowers
	}
	page, err := list(c.Request.Context(), viewerID, ownerID, q.Page, q.Limit)
	if err != nil {
		writeError(c, err, "failed to list users")
		return
	}
	response.Success(c, page)
}

// ListFollowers handles GET /api/v1/users/:user_id/followers.
func (h *Handler) ListFollowers(c *gin.Context) {
	h.listEdges(c, true)
}

// ListFollowing handles GET /api/v1/users/:user_id/following.
func (h *Handler) ListFollowing(c *gin.Context) {
	h.listEdges(c, false)
}

// ListIncomingRequests handles GET /api/v1/me/follow-requests.
func (h *Handler) ListIncomingRequests(c *gin.Context) {
	reqs, err := h.profiles.ListIncomingRequests(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		writeError(c, err, "failed to list follow requests")
		return
	}
	response.Success(c, gin.H{"data": reqs})
}

// ListBlocked handles GET /api/v1/me/blocks.
func (h *Handler) ListBlocked(c *gin.Context) {
	blocked, err := h.profiles.ListBlocked(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		writeError(c, err, "failed to list blocked users")
		return
	}
	response.Success(c, gin.H{"data": blocked})
}

// ListSuggestions handles GET /api/v1/me/suggestions.
func (h *Handler) ListSuggestions(c *gin.Context) {
	var q suggestionQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	page, err := h.feeds.ListSuggestedUsers(c.Request.Context(), middleware.GetUserID(c), q.Limit)
	if err != nil {
		writeError(c, err, "failed to list suggested users")
		return
	}
	response.Success(c, page)
}

// ListFeed handles GET /api/v1/feed.
func (h *Handler) ListFeed(c *gin.Context) {
	var q feedQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	fq := domain.FeedQuery{
		Kind:       domain.FeedKind(q.Kind),
		ViewerID:   middleware.GetUserID(c),
		Page:       q.Page,
		Limit:      q.Limit,
		Hashtag:    q.Hashtag,
		Visibility: domain.VisibilityTier(q.Visibility),
		MediaType:  domain.MediaType(q.MediaType),
	}
	if fq.Kind == "" {
		fq.Kind = domain.FeedGlobal
	}

	h.writeFeed(c, fq)
}

// ListUserPosts handles GET /api/v1/users/:user_id/posts.
func (h *Handler) ListUserPosts(c *gin.Context) {
	viewerID, authorID, ok := actorAndTarget(c)
	if !ok {
		return
	}

	var q feedQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	h.writeFeed(c, domain.FeedQuery{
		Kind:      domain.FeedUser,
		ViewerID:  viewerID,
		AuthorID:  authorID,
		Page:      q.Page,
		Limit:     q.Limit,
		MediaType: domain.MediaType(q.MediaType),
	})
}

// ListSavedPosts handles GET /api/v1/me/saved-posts.
func (h *Handler) ListSavedPosts(c *gin.Context) {
	h.interactionFeed(c, domain.FeedSaved)
}

// ListLikedPosts handles GET /api/v1/me/liked-posts.
func (h *Handler) ListLikedPosts(c *gin.Context) {
	h.interactionFeed(c, domain.FeedLiked)
}

func (h *Handler) interactionFeed(c *gin.Context, kind domain.FeedKind) {
	var q pageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	h.writeFeed(c, domain.FeedQuery{
		Kind:     kind,
		ViewerID: middleware.GetUserID(c),
		Page:     q.Page,
		Limit:    q.Limit,
	})
}

func (h *Handler) writeFeed(c *gin.Context, q domain.FeedQuery) {
	page, err := h.feeds.ListFeed(c.Request.Context(), q)
	if err != nil {
		writeError(c, err, "failed to load feed")
		return
	}
	response.Success(c, page)
}
