// Package visibility decides what a viewer may see of a user or a post.
// Every function here is pure: callers load RelationshipFacts from the store
// and pass them in.
package visibility

import "github.com/mnkvreels/vreels-backend/internal/domain"

// ProfileVerdict is the outcome of a profile check.
type ProfileVerdict int

const (
	ProfileForbidden ProfileVerdict = iota
	ProfileRedacted
	ProfileFull
)

func (v ProfileVerdict) String() string {
	switch v {
	case ProfileFull:
		return "full"
	case ProfileRedacted:
		return "redacted"
	default:
		return "forbidden"
	}
}

// PostVerdict is the outcome of a post check.
type PostVerdict int

const (
	PostHidden PostVerdict = iota
	PostBlocked
	PostVisible
)

func (v PostVerdict) String() string {
	switch v {
	case PostVisible:
		return "visible"
	case PostBlocked:
		return "blocked"
	default:
		return "hidden"
	}
}

// Visible reports whether the post may be shown.
func (v PostVerdict) Visible() bool { return v == PostVisible }

// Profile resolves how much of owner's profile viewerID may see.
// Self always wins, then any block forbids, then privacy applies.
func Profile(viewerID, ownerID string, account domain.AccountType, f domain.RelationshipFacts) ProfileVerdict {
	if viewerID == ownerID {
		return ProfileFull
	}
	if f.Blocked() {
		return ProfileForbidden
	}
	if !account.IsPrivate() || f.ViewerFollowsOwner {
		return ProfileFull
	}
	return ProfileRedacted
}

// Post resolves whether viewerID may see a post by authorID with the given
// tier. A block in either direction hides the post whatever its tier.
func Post(viewerID, authorID string, tier domain.VisibilityTier, f domain.RelationshipFacts) PostVerdict {
	if viewerID != authorID && f.Blocked() {
		return PostBlocked
	}
	if viewerID == authorID {
		return PostVisible
	}
	switch tier {
	case domain.VisibilityPublic:
		return PostVisible
	case domain.VisibilityFriends:
		if f.ViewerFollowsOwner {
			return PostVisible
		}
	}
	return PostHidden
}

// AuthorFeed resolves whether viewerID may list authorID's posts at all.
// A private author's post list is closed to non-followers even for public
// posts.
func AuthorFeed(viewerID, authorID string, account domain.AccountType, f domain.RelationshipFacts) bool {
	return Profile(viewerID, authorID, account, f) == ProfileFull
}
