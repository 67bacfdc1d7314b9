package audit

import (
	"context"

	"github.com/mnkvreels/vreels-backend/pkg/log"
)

// Audit actions for the social graph.
const (
	ActionFollow        = "graph.follow"
	ActionFollowRequest = "graph.follow_request"
	ActionUnfollow      = "graph.unfollow"
	ActionAcceptRequest = "graph.accept_request"
	ActionRejectRequest = "graph.reject_request"
	ActionCancelRequest = "graph.cancel_request"
	ActionBlock         = "graph.block"
	ActionUnblock       = "graph.unblock"
	ActionRecount       = "graph.recount"
	ActionUserPurged    = "graph.user_purged"
	ActionCreatePost    = "post.create"
	ActionDeletePost    = "post.delete"
	ActionComment       = "post.comment"
	ActionDeleteComment = "post.delete_comment"
)

const (
	FieldAction = "action"
	FieldDetail = "detail"
)

// Log emits a structured audit entry for an action by userID on targetID.
func Log(ctx context.Context, action, userID, targetID, msg string) {
	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, action).
		Str(log.FieldUserID, userID).
		Str(log.FieldTargetID, targetID).
		Msg(msg)
}

// LogWithDetail emits an audit entry with an extra detail field.
func LogWithDetail(ctx context.Context, action, userID, targetID, detail, msg string) {
	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, action).
		Str(log.FieldUserID, userID).
		Str(log.FieldTargetID, targetID).
		Str(FieldDetail, detail).
		Msg(msg)
}
