package domain

import (
	"fmt"
	"strings"
	"time"
)

// VisibilityTier is the per-post audience policy.
type VisibilityTier string

const (
	VisibilityPublic  VisibilityTier = "public"
	VisibilityPrivate VisibilityTier = "private"
	VisibilityFriends VisibilityTier = "friends"
)

// ParseVisibility parses a tier name. An empty string yields public.
func ParseVisibility(s string) (VisibilityTier, error) {
	switch VisibilityTier(strings.ToLower(strings.TrimSpace(s))) {
	case "", VisibilityPublic:
		return VisibilityPublic, nil
	case VisibilityPrivate:
		return VisibilityPrivate, nil
	case VisibilityFriends:
		return VisibilityFriends, nil
	}
	return "", fmt.Errorf("unknown visibility %q", s)
}

// MediaType classifies the attached media of a post.
type MediaType string

const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
)

// ParseMediaType parses a media type. An empty string yields "" (no media).
func ParseMediaType(s string) (MediaType, error) {
	switch MediaType(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return "", nil
	case MediaImage:
		return MediaImage, nil
	case MediaVideo:
		return MediaVideo, nil
	}
	return "", fmt.Errorf("unknown media type %q", s)
}

// Post is the domain representation of a post.
type Post struct {
	ID               uint           `json:"id"`
	AuthorID         string         `json:"author_id"`
	Content          string         `json:"content"`
	MediaURLs        []string       `json:"media_urls,omitempty"`
	MediaType        MediaType      `json:"media_type,omitempty"`
	Location         string         `json:"location,omitempty"`
	Visibility       VisibilityTier `json:"visibility"`
	Hashtags         []string       `json:"hashtags,omitempty"`
	LikesCount       int64          `json:"likes_count"`
	SaveCount        int64          `json:"save_count"`
	CommentCount     int64          `json:"comment_count"`
	CommentsDisabled bool           `json:"comments_disabled"`
	CreatedAt        time.Time      `json:"created_at"`
}

// CreatePostRequest is the input of CreatePost.
type CreatePostRequest struct {
	Content          string   `json:"content" binding:"max=2200"`
	MediaURLs        []string `json:"media_urls" binding:"max=10,dive,url"`
	MediaType        string   `json:"media_type" binding:"omitempty,oneof=image video"`
	Location         string   `json:"location" binding:"max=255"`
	Visibility       string   `json:"visibility" binding:"omitempty,oneof=public private friends"`
	CommentsDisabled bool     `json:"comments_disabled"`
}

// Comment is a comment on a post. Author is filled when listing.
type Comment struct {
	ID        uint        `json:"id"`
	PostID    uint        `json:"post_id"`
	AuthorID  string      `json:"author_id"`
	Author    UserSummary `json:"author"`
	Content   string      `json:"content"`
	CreatedAt time.Time   `json:"created_at"`
}

// CreateCommentRequest is the input of AddComment.
type CreateCommentRequest struct {
	Content string `json:"content" binding:"required,max=1000"`
}

// FeedKind selects the candidate set of a feed query.
type FeedKind string

const (
	FeedGlobal     FeedKind = "global"
	FeedHashtag    FeedKind = "hashtag"
	FeedFollowing  FeedKind = "following"
	FeedVisibility FeedKind = "visibility"
	FeedUser       FeedKind = "user"
	FeedSaved      FeedKind = "saved"
	FeedLiked      FeedKind = "liked"
)

// FeedQuery describes one page of a viewer-scoped feed.
type FeedQuery struct {
	Kind       FeedKind
	ViewerID   string
	Page       int
	Limit      int
	Hashtag    string
	Visibility VisibilityTier
	AuthorID   string
	MediaType  MediaType
}

// FeedItem is a post annotated for the viewer.
type FeedItem struct {
	Post
	Author  UserSummary `json:"author"`
	IsLiked bool        `json:"is_liked"`
	IsSaved bool        `json:"is_saved"`
}

// FeedPage is a paginated feed response.
type FeedPage struct {
	Data       []FeedItem `json:"data"`
	TotalCount int64      `json:"total_count"`
	TotalPages int64      `json:"total_pages"`
	Page       int        `json:"page"`
	Limit      int        `json:"limit"`
}

// CommentPage is a paginated list of comments, oldest first.
type CommentPage struct {
	Data       []Comment `json:"data"`
	TotalCount int64     `json:"total_count"`
	TotalPages int64     `json:"total_pages"`
	Page       int       `json:"page"`
	Limit      int       `json:"limit"`
}

// UserPage is a paginated list of users.
type UserPage struct {
	Data       []UserSummary `json:"data"`
	TotalCount int64         `json:"total_count"`
	TotalPages int64         `json:"total_pages"`
	Page       int           `json:"page"`
	Limit      int           `json:"limit"`
}

// TotalPages returns ceil(total/limit), zero when limit is not positive.
func TotalPages(total int64, limit int) int64 {
	if limit <= 0 {
		return 0
	}
	return (total + int64(limit) - 1) / int64(limit)
}
