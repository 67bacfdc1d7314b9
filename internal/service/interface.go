package service

import (
	"context"

	"github.com/mnkvreels/vreels-backend/internal/domain"
)

// RelationshipManager mutates the social graph. Every operation commits as
// one transaction and keeps the denormalized counters in step with the edges.
type RelationshipManager interface {
	Follow(ctx context.Context, requesterID, targetID string) (*domain.FollowResult, error)
	// RequestFollow behaves exactly like Follow; it exists for callers that
	// address private accounts explicitly.
	RequestFollow(ctx context.Context, requesterID, targetID string) (*domain.FollowResult, error)
	Unfollow(ctx context.Context, requesterID, targetID string) error
	AcceptRequest(ctx context.Context, targetID, requesterID string) (*domain.FollowResult, error)
	RejectRequest(ctx context.Context, targetID, requesterID string) error
	CancelRequest(ctx context.Context, requesterID, targetID string) error
	Block(ctx context.Context, blockerID, targetID string) (*domain.BlockResult, error)
	Unblock(ctx context.Context, blockerID, targetID string) error
	// Recount rebuilds userID's counters from the edge table.
	Recount(ctx context.Context, userID string) (domain.Counts, error)
}

// ProfileService answers viewer-relative questions about users.
type ProfileService interface {
	ResolveProfileVisibility(ctx context.Context, viewerID, ownerID string) (*domain.Profile, error)
	GetRelationship(ctx context.Context, viewerID, targetID string) (*domain.Relationship, error)
	GetCounts(ctx context.Context, userID string) (domain.Counts, error)
	ListFollowers(ctx context.Context, viewerID, ownerID string, page, limit int) (*domain.UserPage, error)
	ListFollowing(ctx context.Context, viewerID, ownerID string, page, limit int) (*domain.UserPage, error)
	ListIncomingRequests(ctx context.Context, viewerID string) ([]domain.FollowRequest, error)
	ListBlocked(ctx context.Context, viewerID string) ([]domain.UserSummary, error)
}

// FeedService assembles viewer-scoped post feeds and user suggestions.
type FeedService interface {
	ListFeed(ctx context.Context, q domain.FeedQuery) (*domain.FeedPage, error)
	ListSuggestedUsers(ctx context.Context, viewerID string, limit int) (*domain.SuggestionPage, error)
}

// PostService manages posts and the viewer's interactions with them.
type PostService interface {
	CreatePost(ctx context.Context, authorID string, req *domain.CreatePostRequest) (*domain.Post, error)
	ResolvePostVisibility(ctx context.Context, viewerID string, postID uint) (*domain.FeedItem, error)
	Like(ctx context.Context, viewerID string, postID uint) error
	Unlike(ctx context.Context, viewerID string, postID uint) error
	Save(ctx context.Context, viewerID string, postID uint) error
	Unsave(ctx context.Context, viewerID string, postID uint) error

	// DeletePost removes a post. Only its author may delete it.
	DeletePost(ctx context.Context, viewerID string, postID uint) error
	AddComment(ctx context.Context, viewerID string, postID uint, content string) (*domain.Comment, error)
	ListComments(ctx context.Context, viewerID string, postID uint, page, limit int) (*domain.CommentPage, error)
	// DeleteComment removes a comment. The comment author and the post
	// author may delete it.
	DeleteComment(ctx context.Context, viewerID string, postID, commentID uint) error
}

// UserSync applies identity-service user changes to the graph.
type UserSync interface {
	UpsertUser(ctx context.Context, user *domain.User) error
	DeleteUser(ctx context.Context, userID string) error
}

// Notifier is told about committed follow mutations. Implementations must
// not block the caller and their failures never affect the mutation.
type Notifier interface {
	Notify(ctx context.Context, eventType, actorID, targetID string)
}

// NopNotifier discards every notification.
type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, string, string, string) {}
