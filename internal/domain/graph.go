package domain

import (
	"strings"
	"time"
)

// AccountType controls whether following a user needs approval.
type AccountType string

const (
	AccountPublic  AccountType = "PUBLIC"
	AccountPrivate AccountType = "PRIVATE"
)

// Normalize maps unknown or lowercase values onto the two supported types.
func (a AccountType) Normalize() AccountType {
	if strings.EqualFold(string(a), string(AccountPrivate)) {
		return AccountPrivate
	}
	return AccountPublic
}

// IsPrivate reports whether the account requires follow approval.
func (a AccountType) IsPrivate() bool {
	return a.Normalize() == AccountPrivate
}

// User is the graph-side view of an account.
type User struct {
	ID             string      `json:"id"`
	Username       string      `json:"username"`
	DisplayName    string      `json:"display_name,omitempty"`
	Phone          string      `json:"-"`
	AvatarURL      string      `json:"avatar_url,omitempty"`
	Bio            string      `json:"bio,omitempty"`
	AccountType    AccountType `json:"account_type"`
	FollowersCount int64       `json:"followers_count"`
	FollowingCount int64       `json:"following_count"`
	CreatedAt      time.Time   `json:"created_at"`
}

// RelationshipFacts is everything the visibility rules need to know about
// an ordered (viewer, owner) pair. It is read from the store at query time.
type RelationshipFacts struct {
	ViewerFollowsOwner bool
	OwnerFollowsViewer bool
	ViewerRequested    bool // pending request viewer -> owner
	OwnerRequested     bool // pending request owner -> viewer
	ViewerBlocksOwner  bool
	OwnerBlocksViewer  bool
}

// Blocked reports whether a block exists in either direction.
func (f RelationshipFacts) Blocked() bool {
	return f.ViewerBlocksOwner || f.OwnerBlocksViewer
}

// Relationship is the viewer-relative flag set returned to clients.
type Relationship struct {
	UserID          string `json:"user_id"`
	IsFollowing     bool   `json:"is_following"`
	IsFollowedBy    bool   `json:"is_followed_by"`
	IsRequested     bool   `json:"is_requested"`
	IsRequestedToMe bool   `json:"is_requested_to_me"`
	IsBlocked       bool   `json:"is_blocked"`
}

// RelationshipFromFacts projects store facts onto client flags.
func RelationshipFromFacts(userID string, f RelationshipFacts) Relationship {
	return Relationship{
		UserID:          userID,
		IsFollowing:     f.ViewerFollowsOwner,
		IsFollowedBy:    f.OwnerFollowsViewer,
		IsRequested:     f.ViewerRequested,
		IsRequestedToMe: f.OwnerRequested,
		IsBlocked:       f.ViewerBlocksOwner,
	}
}

// FollowStatus is the outcome of a successful follow call.
type FollowStatus string

const (
	FollowStatusFollowed         FollowStatus = "followed"
	FollowStatusRequested        FollowStatus = "requested"
	FollowStatusAlreadyFollowing FollowStatus = "already_following"
)

// FollowResult is returned by follow and accept.
type FollowResult struct {
	Status      FollowStatus `json:"status"`
	FollowerID  string       `json:"follower_id"`
	FollowingID string       `json:"following_id"`
}

// BlockStatus is the outcome of a successful block call.
type BlockStatus string

const (
	BlockStatusBlocked        BlockStatus = "blocked"
	BlockStatusAlreadyBlocked BlockStatus = "already_blocked"
)

// BlockResult reports what the block teardown removed.
type BlockResult struct {
	Status          BlockStatus `json:"status"`
	BlockerID       string      `json:"blocker_id"`
	BlockedID       string      `json:"blocked_id"`
	FollowsRemoved  int         `json:"follows_removed"`
	RequestsRemoved int         `json:"requests_removed"`
}

// Counts holds the two denormalized counters of a user.
type Counts struct {
	UserID         string `json:"user_id"`
	FollowersCount int64  `json:"followers_count"`
	FollowingCount int64  `json:"following_count"`
}

// UserSummary is a compact user entry used in lists.
type UserSummary struct {
	ID          string      `json:"id"`
	Username    string      `json:"username"`
	DisplayName string      `json:"display_name,omitempty"`
	AvatarURL   string      `json:"avatar_url,omitempty"`
	AccountType AccountType `json:"account_type"`
}

// Summary returns the compact form of u.
func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		AvatarURL:   u.AvatarURL,
		AccountType: u.AccountType.Normalize(),
	}
}

// FollowRequest is a pending request as seen by its target.
type FollowRequest struct {
	Requester UserSummary `json:"requester"`
	CreatedAt time.Time   `json:"created_at"`
}

// Profile is the resolved profile of a user for a viewer. Full is false
// for a redacted private profile, in which case the counters and bio are
// zeroed.
type Profile struct {
	User         UserSummary  `json:"user"`
	Bio          string       `json:"bio,omitempty"`
	IsPrivate    bool         `json:"is_private"`
	Full         bool         `json:"full"`
	Counts       *Counts      `json:"counts,omitempty"`
	Relationship Relationship `json:"relationship"`
}

// SuggestedUser is one entry of the suggested-users list.
type SuggestedUser struct {
	UserSummary
	MutualCount int  `json:"mutual_count"`
	FollowsYou  bool `json:"follows_you"`
	IsFollowing bool `json:"is_following"`
	IsRequested bool `json:"is_requested"`
}

// SuggestionPage is the suggested-users response.
type SuggestionPage struct {
	Data       []SuggestedUser `json:"data"`
	TotalCount int             `json:"total_count"`
	Limit      int             `json:"limit"`
}
