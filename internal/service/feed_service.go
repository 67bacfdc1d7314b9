package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mnkvreels/vreels-backend/internal/domain"
	"github.com/mnkvreels/vreels-backend/internal/metrics"
	"github.com/mnkvreels/vreels-backend/internal/repository"
	"github.com/mnkvreels/vreels-backend/internal/visibility"
	pkglog "github.com/mnkvreels/vreels-backend/pkg/log"
)

// annotateConcurrency bounds the per-post flag lookups of one feed page.
const annotateConcurrency = 8

// feedService implements FeedService.
type feedService struct {
	graph  repository.GraphRepository
	users  repository.UserRepository
	posts  repository.PostRepository
	paging Paging
}

// NewFeedService creates a FeedService.
func NewFeedService(graph repository.GraphRepository, users repository.UserRepository, posts repository.PostRepository, paging Paging) FeedService {
	return &feedService{
		graph:  graph,
		users:  users,
		posts:  posts,
		paging: paging.withDefaults(),
	}
}

// filterFor validates q and turns it into a repository filter.
func (s *feedService) filterFor(ctx context.Context, q domain.FeedQuery) (repository.FeedFilter, error) {
	f := repository.FeedFilter{ViewerID: q.ViewerID, MediaType: q.MediaType}

	switch q.Kind {
	case domain.FeedGlobal, "":
	case domain.FeedFollowing:
		f.FollowedByViewer = true
	case domain.FeedHashtag:
		tag := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(q.Hashtag), "#"))
		if tag == "" {
			return f, invalidArgument("hashtag is required")
		}
		f.Hashtag = tag
	case domain.FeedVisibility:
		if q.Visibility == "" {
			return f, invalidArgument("visibility is required")
		}
		f.Visibility = q.Visibility
	case domain.FeedUser:
		if q.AuthorID == "" {
			return f, invalidArgument("author is required")
		}
		author, err := s.graph.GetUser(ctx, q.AuthorID)
		if err != nil {
			return f, translate("load author", err)
		}
		var facts domain.RelationshipFacts
		if q.ViewerID != author.ID {
			if facts, err = s.graph.Facts(ctx, q.ViewerID, author.ID); err != nil {
				return f, &StorageError{Op: "load relationship", Err: err}
			}
		}
		if !visibility.AuthorFeed(q.ViewerID, author.ID, author.AccountType, facts) {
			return f, ErrForbidden
		}
		f.AuthorID = author.ID
	case domain.FeedSaved:
		f.Interaction = repository.InteractionSaved
	case domain.FeedLiked:
		f.Interaction = repository.InteractionLiked
	default:
		return f, invalidArgument("unknown feed kind %q", q.Kind)
	}
	return f, nil
}

// ListFeed returns one page of posts visible to q.ViewerID, newest first.
func (s *feedService) ListFeed(ctx context.Context, q domain.FeedQuery) (*domain.FeedPage, error) {
	l := pkglog.Ctx(ctx).With().Str(pkglog.FieldFeedKind, string(q.Kind)).Logger()
	defer metrics.ObserveFeed(string(q.Kind), time.Now())

	filter, err := s.filterFor(ctx, q)
	if err != nil {
		return nil, err
	}

	excluded, err := s.graph.ExcludedUserIDs(ctx, q.ViewerID)
	if err != nil {
		l.Error().Err(err).Msg("failed to load excluded users")
		return nil, &StorageError{Op: "list feed", Err: err}
	}
	page, limit, offset := s.paging.normalize(q.Page, q.Limit)
	filter.ExcludedAuthors = excluded
	filter.Offset = offset
	filter.Limit = limit

	posts, total, err := s.posts.ListFeed(ctx, filter)
	if err != nil {
		l.Error().Err(err).Msg("failed to query feed")
		return nil, &StorageError{Op: "list feed", Err: err}
	}

	items, err := s.assemble(ctx, q.ViewerID, excluded, posts)
	if err != nil {
		l.Error().Err(err).Msg("failed to assemble feed")
		return nil, &StorageError{Op: "list feed", Err: err}
	}
	metrics.RecordFeedDrop(string(q.Kind), len(posts)-len(items))

	return &domain.FeedPage{
		Data:       items,
		TotalCount: total,
		TotalPages: domain.TotalPages(total, limit),
		Page:       page,
		Limit:      limit,
	}, nil
}

// assemble re-checks each row against the post visibility rule, attaches
// the author and fills the viewer's like/save flags.
func (s *feedService) assemble(ctx context.Context, viewerID string, excluded []string, posts []domain.Post) ([]domain.FeedItem, error) {
	items := make([]domain.FeedItem, 0, len(posts))
	if len(posts) == 0 {
		return items, nil
	}

	blocked := make(map[string]bool, len(excluded))
	for _, id := range excluded {
		blocked[id] = true
	}

	authorIDs := make([]string, 0, len(posts))
	seen := make(map[string]struct{}, len(posts))
	for _, p := range posts {
		if _, ok := seen[p.AuthorID]; !ok {
			seen[p.AuthorID] = struct{}{}
			authorIDs = append(authorIDs, p.AuthorID)
		}
	}

	following, err := s.graph.BatchIsFollowing(ctx, viewerID, authorIDs)
	if err != nil {
		return nil, err
	}
	authors, err := s.users.GetByIDs(ctx, authorIDs)
	if err != nil {
		return nil, err
	}

	for _, p := range posts {
		author, ok := authors[p.AuthorID]
		if !ok {
			continue
		}
		facts := domain.RelationshipFacts{
			ViewerFollowsOwner: following[p.AuthorID],
			ViewerBlocksOwner:  blocked[p.AuthorID],
		}
		if !visibility.Post(viewerID, p.AuthorID, p.Visibility, facts).Visible() {
			continue
		}
		items = append(items, domain.FeedItem{Post: p, Author: author.Summary()})
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(annotateConcurrency)
	for i := range items {
		item := &items[i]
		g.Go(func() error {
			liked, err := s.posts.IsLiked(gctx, viewerID, item.ID)
			if err != nil {
				return err
			}
			saved, err := s.posts.IsSaved(gctx, viewerID, item.ID)
			if err != nil {
				return err
			}
			item.IsLiked, item.IsSaved = liked, saved
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return items, nil
}

type suggestionCandidate struct {
	user       *domain.User
	mutual     int
	followsYou bool
}

func (c suggestionCandidate) score() int {
	if c.followsYou {
		return c.mutual + 1
	}
	return c.mutual
}

// ListSuggestedUsers ranks friends-of-friends and unreciprocated followers.
// Ranking is by mutual connections (a follow-back counts as one), then
// followers_count, then id.
func (s *feedService) ListSuggestedUsers(ctx context.Context, viewerID string, limit int) (*domain.SuggestionPage, error) {
	l := pkglog.Ctx(ctx)
	limit = s.paging.suggestionLimit(limit)

	var (
		fof      map[string]int
		reverse  []string
		excluded []string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		fof, err = s.graph.FriendsOfFriends(gctx, viewerID)
		return err
	})
	g.Go(func() error {
		var err error
		reverse, err = s.graph.UnreciprocatedFollowers(gctx, viewerID)
		return err
	})
	g.Go(func() error {
		var err error
		excluded, err = s.graph.ExcludedUserIDs(gctx, viewerID)
		return err
	})
	if err := g.Wait(); err != nil {
		l.Error().Err(err).Msg("failed to collect suggestion candidates")
		return nil, &StorageError{Op: "suggest users", Err: err}
	}

	candidates := make(map[string]*suggestionCandidate, len(fof)+len(reverse))
	for id, n := range fof {
		candidates[id] = &suggestionCandidate{mutual: n}
	}
	for _, id := range reverse {
		c, ok := candidates[id]
		if !ok {
			c = &suggestionCandidate{}
			candidates[id] = c
		}
		c.followsYou = true
	}
	for _, id := range excluded {
		delete(candidates, id)
	}
	delete(candidates, viewerID)

	ids := make([]string, 0, len(candidates))
	for id := range candidates {
		ids = append(ids, id)
	}
	users, err := s.users.GetByIDs(ctx, ids)
	if err != nil {
		l.Error().Err(err).Msg("failed to load suggested users")
		return nil, &StorageError{Op: "suggest users", Err: err}
	}

	ranked := make([]suggestionCandidate, 0, len(candidates))
	for id, c := range candidates {
		u, ok := users[id]
		if !ok {
			continue
		}
		c.user = u
		ranked = append(ranked, *c)
	}
	sort.Slice(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.score() != b.score() {
			return a.score() > b.score()
		}
		if a.user.FollowersCount != b.user.FollowersCount {
			return a.user.FollowersCount > b.user.FollowersCount
		}
		return a.user.ID < b.user.ID
	})

	total := len(ranked)
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	pageIDs := make([]string, 0, len(ranked))
	for _, c := range ranked {
		pageIDs = append(pageIDs, c.user.ID)
	}

	var following, requested map[string]bool
	g, gctx = errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		following, err = s.graph.BatchIsFollowing(gctx, viewerID, pageIDs)
		return err
	})
	g.Go(func() error {
		var err error
		requested, err = s.graph.BatchIsRequested(gctx, viewerID, pageIDs)
		return err
	})
	if err := g.Wait(); err != nil {
		l.Error().Err(err).Msg("failed to annotate suggested users")
		return nil, &StorageError{Op: "suggest users", Err: err}
	}

	data := make([]domain.SuggestedUser, 0, len(ranked))
	for _, c := range ranked {
		data = append(data, domain.SuggestedUser{
			UserSummary: c.user.Summary(),
			MutualCount: c.mutual,
			FollowsYou:  c.followsYou,
			IsFollowing: following[c.user.ID],
			IsRequested: requested[c.user.ID],
		})
	}

	return &domain.SuggestionPage{Data: data, TotalCount: total, Limit: limit}, nil
}

var _ FeedService = (*feedService)(nil)
