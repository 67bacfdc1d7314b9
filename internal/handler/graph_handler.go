package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mnkvreels/vreels-backend/internal/domain"
	"github.com/mnkvreels/vreels-backend/pkg/response"
)

func writeFollowResult(c *gin.Context, result *domain.FollowResult) {
	switch result.Status {
	case domain.FollowStatusAlreadyFollowing:
		response.Success(c, result)
	case domain.FollowStatusRequested:
		c.JSON(http.StatusAccepted, response.Response{Success: true, Data: result})
	default:
		response.Created(c, result)
	}
}

// Follow handles POST /api/v1/users/:user_id/follow.
// A private target yields 202 with status "requested".
func (h *Handler) Follow(c *gin.Context) {
	actorID, targetID, ok := actorAndTarget(c)
	if !ok {
		return
	}

	result, err := h.graph.Follow(c.Request.Context(), actorID, targetID)
	if err != nil {
		writeError(c, err, "failed to follow user")
		return
	}
	writeFollowResult(c, result)
}

// RequestFollow handles POST /api/v1/users/:user_id/follow-request.
func (h *Handler) RequestFollow(c *gin.Context) {
	actorID, targetID, ok := actorAndTarget(c)
	if !ok {
		return
	}

	result, err := h.graph.RequestFollow(c.Request.Context(), actorID, targetID)
	if err != nil {
		writeError(c, err, "failed to request follow")
		return
	}
	writeFollowResult(c, result)
}

// Unfollow handles DELETE /api/v1/users/:user_id/follow.
func (h *Handler) Unfollow(c *gin.Context) {
	actorID, targetID, ok := actorAndTarget(c)
	if !ok {
		return
	}

	if err := h.graph.Unfollow(c.Request.Context(), actorID, targetID); err != nil {
		writeError(c, err, "failed to unfollow user")
		return
	}
	response.NoContent(c)
}

// CancelRequest handles DELETE /api/v1/users/:user_id/follow-request.
func (h *Handler) CancelRequest(c *gin.Context) {
	actorID, targetID, ok := actorAndTarget(c)
	if !ok {
		return
	}

	if err := h.graph.CancelRequest(c.Request.Context(), actorID, targetID); err != nil {
		writeError(c, err, "failed to cancel follow request")
		return
	}
	response.NoContent(c)
}

// AcceptRequest handles POST /api/v1/me/follow-requests/:user_id/accept,
// where :user_id is the requester.
func (h *Handler) AcceptRequest(c *gin.Context) {
	actorID, requesterID, ok := actorAndTarget(c)
	if !ok {
		return
	}

	result, err := h.graph.AcceptRequest(c.Request.Context(), actorID, requesterID)
	if err != nil {
		writeError(c, err, "failed to accept follow request")
		return
	}
	response.Success(c, result)
}

// RejectRequest handles POST /api/v1/me/follow-requests/:user_id/reject.
func (h *Handler) RejectRequest(c *gin.Context) {
	actorID, requesterID, ok := actorAndTarget(c)
	if !ok {
		return
	}

	if err := h.graph.RejectRequest(c.Request.Context(), actorID, requesterID); err != nil {
		writeError(c, err, "failed to reject follow request")
		return
	}
	response.NoContent(c)
}

// Block handles POST /api/v1/users/:user_id/block.
func (h *Handler) Block(c *gin.Context) {
	actorID, targetID, ok := actorAndTarget(c)
	if !ok {
		return
	}

	result, err := h.graph.Block(c.Request.Context(), actorID, targetID)
	if err != nil {
		writeError(c, err, "failed to block user")
		return
	}
	if result.Status == domain.BlockStatusAlreadyBlocked {
		response.Success(c, result)
		return
	}
	response.Created(c, result)
}

// Unblock handles DELETE /api/v1/users/:user_id/block.
func (h *Handler) Unblock(c *gin.Context) {
	actorID, targetID, ok := actorAndTarget(c)
	if !ok {
		return
	}

	if err := h.graph.Unblock(c.Request.Context(), actorID, targetID); err != nil {
		writeError(c, err, "failed to unblock user")
		return
	}
	response.NoContent(c)
}

// Recount handles POST /api/v1/admin/users/:user_id/recount.
func (h *Handler) Recount(c *gin.Context) {
	_, targetID, ok := actorAndTarget(c)
	if !ok {
		return
	}

	counts, err := h.graph.Recount(c.Request.Context(), targetID)
	if err != nil {
		writeError(c, err, "failed to recount user")
		return
	}
	response.Success(c, counts)
}
