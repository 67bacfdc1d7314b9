package handler

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mnkvreels/vreels-backend/internal/domain"
	pkglog "github.com/mnkvreels/vreels-backend/pkg/log"
	"github.com/mnkvreels/vreels-backend/pkg/middleware"
	"github.com/mnkvreels/vreels-backend/pkg/response"
)

// CreatePost handles POST /api/v1/posts.
func (h *Handler) CreatePost(c *gin.Context) {
	ctx := c.Request.Context()
	l := pkglog.Ctx(ctx)

	var req domain.CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn().Err(err).Msg("invalid create post request")
		response.BadRequest(c, err.Error())
		return
	}

	post, err := h.posts.CreatePost(ctx, middleware.GetUserID(c), &req)
	if err != nil {
		writeError(c, err, "failed to create post")
		return
	}
	response.Created(c, post)
}

// GetPost handles GET /api/v1/posts/:post_id.
func (h *Handler) GetPost(c *gin.Context) {
	postID, ok := postIDParam(c)
	if !ok {
		return
	}

	item, err := h.posts.ResolvePostVisibility(c.Request.Context(), middleware.GetUserID(c), postID)
	if err != nil {
		writeError(c, err, "failed to load post")
		return
	}
	response.Success(c, item)
}

type postAction func(ctx context.Context, viewerID string, postID uint) error

func (h *Handler) postAction(c *gin.Context, action postAction, fallback string) {
	postID, ok := postIDParam(c)
	if !ok {
		return
	}
	if err := action(c.Request.Context(), middleware.GetUserID(c), postID); err != nil {
		writeError(c, err, fallback)
		return
	}
	response.NoContent(c)
}

// Like handles POST /api/v1/posts/:post_id/like.
func (h *Handler) Like(c *gin.Context) {
	h.postAction(c, h.posts.Like, "failed to like post")
}

// Unlike handles DELETE /api/v1/posts/:post_id/like.
func (h *Handler) Unlike(c *gin.Context) {
	h.postAction(c, h.posts.Unlike, "failed to unlike post")
}

// Save handles POST /api/v1/posts/:post_id/save.
func (h *Handler) Save(c *gin.Context) {
	h.postAction(c, h.posts.Save, "failed to save post")
}

// Unsave handles DELETE /api/v1/posts/:post_id/save.
func (h *Handler) Unsave(c *gin.Context) {
	h.postAction(c, h.posts.Unsave, "failed to unsave post")
}

// DeletePost handles DELETE /api/v1/posts/:post_id.
func (h *Handler) DeletePost(c *gin.Context) {
	h.postAction(c, h.posts.DeletePost, "failed to delete post")
}

// AddComment handles POST /api/v1/posts/:post_id/comments.
func (h *Handler) AddComment(c *gin.Context) {
	ctx := c.Request.Context()
	l := pkglog.Ctx(ctx)

	postID, ok := postIDParam(c)
	if !ok {
		return
	}
	var req domain.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn().Err(err).Msg("invalid comment request")
		response.BadRequest(c, err.Error())
		return
	}

	comment, err := h.posts.AddComment(ctx, middleware.GetUserID(c), postID, req.Content)
	if err != nil {
		writeError(c, err, "failed to add comment")
		return
	}
	response.Created(c, comment)
}

// ListComments handles GET /api/v1/posts/:post_id/comments.
func (h *Handler) ListComments(c *gin.Context) {
	postID, ok := postIDParam(c)
	if !ok {
		return
	}
	var q pageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	page, err := h.posts.ListComments(c.Request.Context(), middleware.GetUserID(c), postID, q.Page, q.Limit)
	if err != nil {
		writeError(c, err, "failed to list comments")
		return
	}
	response.Success(c, page)
}

// DeleteComment handles DELETE /api/v1/posts/:post_id/comments/:comment_id.
func (h *Handler) DeleteComment(c *gin.Context) {
	postID, ok := postIDParam(c)
	if !ok {
		return
	}
	commentID, err := strconv.ParseUint(c.Param("comment_id"), 10, 64)
	if err != nil || commentID == 0 {
		response.BadRequest(c, "invalid comment_id")
		return
	}

	if err := h.posts.DeleteComment(c.Request.Context(), middleware.GetUserID(c), postID, uint(commentID)); err != nil {
		writeError(c, err, "failed to delete comment")
		return
	}
	response.NoContent(c)
}
