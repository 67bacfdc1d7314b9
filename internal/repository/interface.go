package repository

import (
	"context"
	"errors"

	"github.com/mnkvreels/vreels-backend/internal/domain"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrPostNotFound = errors.New("post not found")

	// ErrCommentNotFound is returned when a comment does not exist on the post.
	ErrCommentNotFound = errors.New("comment not found")

	// ErrDuplicate is returned when an insert hits a natural-key unique index.
	ErrDuplicate = errors.New("duplicate relationship row")
)

// GraphRepository is the relationship store. Mutating callers run inside
// WithTx and use the transaction-bound repository handed to fn.
type GraphRepository interface {
	WithTx(ctx context.Context, fn func(tx GraphRepository) error) error

	GetUser(ctx context.Context, userID string) (*domain.User, error)

	FollowExists(ctx context.Context, followerID, followingID string) (bool, error)
	CreateFollow(ctx context.Context, followerID, followingID string) error
	DeleteFollow(ctx context.Context, followerID, followingID string) (bool, error)

	RequestExists(ctx context.Context, requesterID, targetID string) (bool, error)
	CreateRequest(ctx context.Context, requesterID, targetID string) error
	DeleteRequest(ctx context.Context, requesterID, targetID string) (bool, error)

	BlockExists(ctx context.Context, blockerID, blockedID string) (bool, error)
	CreateBlock(ctx context.Context, blockerID, blockedID string) error
	DeleteBlock(ctx context.Context, blockerID, blockedID string) (bool, error)

	// AdjustFollowCounts applies delta to follower.following_count and
	// following.followers_count with in-place arithmetic.
	AdjustFollowCounts(ctx context.Context, followerID, followingID string, delta int64) error
	// Recount recomputes both counters of userID from the edge table.
	Recount(ctx context.Context, userID string) (domain.Counts, error)
	// PurgeUser removes the user and everything referencing it, keeping the
	// counters of every counterpart consistent.
	PurgeUser(ctx context.Context, userID string) error

	Facts(ctx context.Context, viewerID, ownerID string) (domain.RelationshipFacts, error)
	ExcludedUserIDs(ctx context.Context, viewerID string) ([]string, error)
	BatchIsFollowing(ctx context.Context, followerID string, targetIDs []string) (map[string]bool, error)
	BatchIsRequested(ctx context.Context, requesterID string, targetIDs []string) (map[string]bool, error)
	FriendsOfFriends(ctx context.Context, viewerID string) (map[string]int, error)
	UnreciprocatedFollowers(ctx context.Context, viewerID string) ([]string, error)
	// NeighborIDs returns every user with a follow edge to or from userID.
	NeighborIDs(ctx context.Context, userID string) ([]string, error)

	ListFollowers(ctx context.Context, userID string, offset, limit int) ([]domain.User, int64, error)
	ListFollowing(ctx context.Context, userID string, offset, limit int) ([]domain.User, int64, error)
	ListIncomingRequests(ctx context.Context, targetID string) ([]domain.FollowRequest, error)
	ListBlocked(ctx context.Context, blockerID string) ([]domain.UserSummary, error)
}

// UserRepository persists the graph-side copy of user accounts.
type UserRepository interface {
	Upsert(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]*domain.User, error)
}

// FeedFilter selects posts for one feed page. Zero-valued fields do not
// constrain the query.
type FeedFilter struct {
	ViewerID         string
	ExcludedAuthors  []string
	AuthorID         string
	FollowedByViewer bool
	Hashtag          string
	Visibility       domain.VisibilityTier
	MediaType        domain.MediaType
	Interaction      Interaction
	Offset           int
	Limit            int
}

// Interaction names a per-user post interaction table. A feed with an
// Interaction holds only posts the viewer liked or saved, most recent
// interaction first.
type Interaction string

const (
	InteractionLiked Interaction = "likes"
	InteractionSaved Interaction = "user_saved_posts"
)

// PostRepository persists posts and per-user post interactions.
type PostRepository interface {
	Create(ctx context.Context, post *domain.Post) error
	GetByID(ctx context.Context, id uint) (*domain.Post, error)
	ListFeed(ctx context.Context, f FeedFilter) ([]domain.Post, int64, error)
	HashtagsFor(ctx context.Context, postIDs []uint) (map[uint][]string, error)
	// Delete removes the post with its likes, saves, hashtag links and
	// comments in one transaction.
	Delete(ctx context.Context, id uint) error

	Like(ctx context.Context, userID string, postID uint) (bool, error)
	Unlike(ctx context.Context, userID string, postID uint) (bool, error)
	Save(ctx context.Context, userID string, postID uint) (bool, error)
	Unsave(ctx context.Context, userID string, postID uint) (bool, error)
	IsLiked(ctx context.Context, userID string, postID uint) (bool, error)
	IsSaved(ctx context.Context, userID string, postID uint) (bool, error)

	CreateComment(ctx context.Context, c *domain.Comment) error
	GetComment(ctx context.Context, postID, commentID uint) (*domain.Comment, error)
	// ListComments pages a post's comments oldest first, skipping authors
	// in excluded and authors without a user row.
	ListComments(ctx context.Context, postID uint, excluded []string, offset, limit int) ([]domain.Comment, int64, error)
	DeleteComment(ctx context.Context, postID, commentID uint) error
}
