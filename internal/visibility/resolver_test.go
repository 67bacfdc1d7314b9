package visibility_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mnkvreels/vreels-backend/internal/domain"
	"github.com/mnkvreels/vreels-backend/internal/visibility"
)

func TestProfile(t *testing.T) {
	tests := []struct {
		name    string
		viewer  string
		account domain.AccountType
		facts   domain.RelationshipFacts
		want    visibility.ProfileVerdict
	}{
		{"self", "owner", domain.AccountPrivate, domain.RelationshipFacts{}, visibility.ProfileFull},
		{"public stranger", "v", domain.AccountPublic, domain.RelationshipFacts{}, visibility.ProfileFull},
		{"private stranger", "v", domain.AccountPrivate, domain.RelationshipFacts{}, visibility.ProfileRedacted},
		{"private with pending request", "v", domain.AccountPrivate, domain.RelationshipFacts{ViewerRequested: true}, visibility.ProfileRedacted},
		{"private follower", "v", domain.AccountPrivate, domain.RelationshipFacts{ViewerFollowsOwner: true}, visibility.ProfileFull},
		{"private, owner follows viewer only", "v", domain.AccountPrivate, domain.RelationshipFacts{OwnerFollowsViewer: true}, visibility.ProfileRedacted},
		{"viewer blocked owner", "v", domain.AccountPublic, domain.RelationshipFacts{ViewerBlocksOwner: true}, visibility.ProfileForbidden},
		{"owner blocked viewer", "v", domain.AccountPublic, domain.RelationshipFacts{OwnerBlocksViewer: true}, visibility.ProfileForbidden},
		{"block beats follow", "v", domain.AccountPrivate, domain.RelationshipFacts{ViewerFollowsOwner: true, OwnerBlocksViewer: true}, visibility.ProfileForbidden},
		{"lowercase private", "v", domain.AccountType("private"), domain.RelationshipFacts{}, visibility.ProfileRedacted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := visibility.Profile(tt.viewer, "owner", tt.account, tt.facts)
			assert.Equal(t, tt.want, got, "got %s", got)
		})
	}
}

func TestPost(t *testing.T) {
	following := domain.RelationshipFacts{ViewerFollowsOwner: true}
	blocked := domain.RelationshipFacts{OwnerBlocksViewer: true, ViewerFollowsOwner: true}

	tests := []struct {
		name   string
		viewer string
		tier   domain.VisibilityTier
		facts  domain.RelationshipFacts
		want   visibility.PostVerdict
	}{
		{"public to stranger", "v", domain.VisibilityPublic, domain.RelationshipFacts{}, visibility.PostVisible},
		{"friends to stranger", "v", domain.VisibilityFriends, domain.RelationshipFacts{}, visibility.PostHidden},
		{"friends to follower", "v", domain.VisibilityFriends, following, visibility.PostVisible},
		{"friends when author follows viewer", "v", domain.VisibilityFriends, domain.RelationshipFacts{OwnerFollowsViewer: true}, visibility.PostHidden},
		{"private to follower", "v", domain.VisibilityPrivate, following, visibility.PostHidden},
		{"private to author", "author", domain.VisibilityPrivate, domain.RelationshipFacts{}, visibility.PostVisible},
		{"friends to author", "author", domain.VisibilityFriends, domain.RelationshipFacts{}, visibility.PostVisible},
		{"public under block", "v", domain.VisibilityPublic, blocked, visibility.PostBlocked},
		{"friends under block", "v", domain.VisibilityFriends, blocked, visibility.PostBlocked},
		{"viewer-side block", "v", domain.VisibilityPublic, domain.RelationshipFacts{ViewerBlocksOwner: true}, visibility.PostBlocked},
		{"unknown tier", "v", domain.VisibilityTier("secret"), following, visibility.PostHidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := visibility.Post(tt.viewer, "author", tt.tier, tt.facts)
			assert.Equal(t, tt.want, got, "got %s", got)
			assert.Equal(t, tt.want == visibility.PostVisible, got.Visible())
		})
	}
}

func TestAuthorFeed(t *testing.T) {
	assert.True(t, visibility.AuthorFeed("v", "a", domain.AccountPublic, domain.RelationshipFacts{}))
	assert.False(t, visibility.AuthorFeed("v", "a", domain.AccountPrivate, domain.RelationshipFacts{}))
	assert.True(t, visibility.AuthorFeed("v", "a", domain.AccountPrivate, domain.RelationshipFacts{ViewerFollowsOwner: true}))
	assert.False(t, visibility.AuthorFeed("v", "a", domain.AccountPublic, domain.RelationshipFacts{ViewerBlocksOwner: true}))
	assert.True(t, visibility.AuthorFeed("a", "a", domain.AccountPrivate, domain.RelationshipFacts{}))
}
