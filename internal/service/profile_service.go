package service

import (
	"context"

	"golang.org/x/sync/singleflight"

	"github.com/mnkvreels/vreels-backend/internal/domain"
	"github.com/mnkvreels/vreels-backend/internal/metrics"
	"github.com/mnkvreels/vreels-backend/internal/repository"
	"github.com/mnkvreels/vreels-backend/internal/store"
	"github.com/mnkvreels/vreels-backend/internal/visibility"
	pkglog "github.com/mnkvreels/vreels-backend/pkg/log"
)

// profileService implements ProfileService.
type profileService struct {
	graph  repository.GraphRepository
	users  repository.UserRepository
	cache  store.CountStore
	paging Paging
	fill   singleflight.Group
}

// NewProfileService creates a ProfileService.
func NewProfileService(graph repository.GraphRepository, users repository.UserRepository, cache store.CountStore, paging Paging) ProfileService {
	return &profileService{
		graph:  graph,
		users:  users,
		cache:  cache,
		paging: paging.withDefaults(),
	}
}

// loadSubject fetches the owner and the viewer's relationship facts to it.
func (s *profileService) loadSubject(ctx context.Context, viewerID, ownerID string) (*domain.User, domain.RelationshipFacts, error) {
	owner, err := s.graph.GetUser(ctx, ownerID)
	if err != nil {
		return nil, domain.RelationshipFacts{}, translate("load user", err)
	}
	if viewerID == ownerID {
		return owner, domain.RelationshipFacts{}, nil
	}
	facts, err := s.graph.Facts(ctx, viewerID, ownerID)
	if err != nil {
		return nil, domain.RelationshipFacts{}, &StorageError{Op: "load relationship", Err: err}
	}
	return owner, facts, nil
}

// ResolveProfileVisibility returns the full or redacted profile of ownerID
// as viewerID may see it.
func (s *profileService) ResolveProfileVisibility(ctx context.Context, viewerID, ownerID string) (*domain.Profile, error) {
	l := pkglog.Ctx(ctx)

	owner, facts, err := s.loadSubject(ctx, viewerID, ownerID)
	if err != nil {
		if !isServiceError(err) {
			l.Error().Err(err).Str(pkglog.FieldTargetID, ownerID).Msg("failed to load profile")
		}
		return nil, err
	}

	verdict := visibility.Profile(viewerID, ownerID, owner.AccountType, facts)
	if verdict == visibility.ProfileForbidden {
		return nil, ErrForbidden
	}

	profile := &domain.Profile{
		User:         owner.Summary(),
		IsPrivate:    owner.AccountType.IsPrivate(),
		Relationship: domain.RelationshipFromFacts(owner.ID, facts),
	}
	if verdict == visibility.ProfileRedacted {
		return profile, nil
	}

	counts, err := s.GetCounts(ctx, owner.ID)
	if err != nil {
		return nil, err
	}
	profile.Full = true
	profile.Bio = owner.Bio
	profile.Counts = &counts
	return profile, nil
}

// GetRelationship returns the viewer-relative flags towards targetID.
func (s *profileService) GetRelationship(ctx context.Context, viewerID, targetID string) (*domain.Relationship, error) {
	if viewerID == targetID {
		return nil, ErrSelfReference
	}
	_, facts, err := s.loadSubject(ctx, viewerID, targetID)
	if err != nil {
		return nil, err
	}
	rel := domain.RelationshipFromFacts(targetID, facts)
	return &rel, nil
}

// GetCounts reads both counters through the Redis cache. Concurrent misses
// for the same user share one database read.
func (s *profileService) GetCounts(ctx context.Context, userID string) (domain.Counts, error) {
	l := pkglog.Ctx(ctx)

	if err := s.cache.RecordAccess(ctx, userID); err != nil {
		l.Warn().Err(err).Str(pkglog.FieldUserID, userID).Msg("failed to record hot key access")
	}

	counts, found, err := s.cache.GetCounts(ctx, userID)
	if err != nil {
		l.Warn().Err(err).Str(pkglog.FieldUserID, userID).Msg("redis get counts failed, falling back to db")
	}
	metrics.RecordCountCache(found)
	if found {
		return counts, nil
	}

	// The shared fill outlives any single caller's cancellation.
	fillCtx := context.WithoutCancel(ctx)
	v, err, _ := s.fill.Do(userID, func() (interface{}, error) {
		user, err := s.users.GetByID(fillCtx, userID)
		if err != nil {
			return domain.Counts{}, err
		}
		c := domain.Counts{
			UserID:         user.ID,
			FollowersCount: user.FollowersCount,
			FollowingCount: user.FollowingCount,
		}
		if err := s.cache.SetCounts(fillCtx, c); err != nil {
			l.Warn().Err(err).Str(pkglog.FieldUserID, userID).Msg("failed to set counts in redis")
		}
		return c, nil
	})
	if err != nil {
		err = translate("get counts", err)
		if !isServiceError(err) {
			l.Error().Err(err).Str(pkglog.FieldUserID, userID).Msg("failed to get counts from db")
		}
		return domain.Counts{}, err
	}
	return v.(domain.Counts), nil
}

type edgeLister func(ctx context.Context, userID string, offset, limit int) ([]domain.User, int64, error)

func (s *profileService) listEdges(ctx context.Context, op string, list edgeLister, viewerID, ownerID string, page, limit int) (*domain.UserPage, error) {
	l := pkglog.Ctx(ctx)

	owner, facts, err := s.loadSubject(ctx, viewerID, ownerID)
	if err != nil {
		return nil, err
	}
	if visibility.Profile(viewerID, ownerID, owner.AccountType, facts) != visibility.ProfileFull {
		return nil, ErrForbidden
	}

	page, limit, offset := s.paging.normalize(page, limit)
	users, total, err := list(ctx, ownerID, offset, limit)
	if err != nil {
		l.Error().Err(err).Str(pkglog.FieldTargetID, ownerID).Str("op", op).Msg("failed to list edges")
		return nil, &StorageError{Op: op, Err: err}
	}

	data := make([]domain.UserSummary, 0, len(users))
	for i := range users {
		data = append(data, users[i].Summary())
	}
	return &domain.UserPage{
		Data:       data,
		TotalCount: total,
		TotalPages: domain.TotalPages(total, limit),
		Page:       page,
		Limit:      limit,
	}, nil
}

// ListFollowers lists ownerID's followers if viewerID may see the full profile.
func (s *profileService) ListFollowers(ctx context.Context, viewerID, ownerID string, page, limit int) (*domain.UserPage, error) {
	return s.listEdges(ctx, "list followers", s.graph.ListFollowers, viewerID, ownerID, page, limit)
}

// ListFollowing lists who ownerID follows if viewerID may see the full profile.
func (s *profileService) ListFollowing(ctx context.Context, viewerID, ownerID string, page, limit int) (*domain.UserPage, error) {
	return s.listEdges(ctx, "list following", s.graph.ListFollowing, viewerID, ownerID, page, limit)
}

func (s *profileService) ListIncomingRequests(ctx context.Context, viewerID string) ([]domain.FollowRequest, error) {
	reqs, err := s.graph.ListIncomingRequests(ctx, viewerID)
	if err != nil {
		l := pkglog.Ctx(ctx)
		l.Error().Err(err).Msg("failed to list incoming follow requests")
		return nil, &StorageError{Op: "list requests", Err: err}
	}
	return reqs, nil
}

func (s *profileService) ListBlocked(ctx context.Context, viewerID string) ([]domain.UserSummary, error) {
	blocked, err := s.graph.ListBlocked(ctx, viewerID)
	if err != nil {
		l := pkglog.Ctx(ctx)
		l.Error().Err(err).Msg("failed to list blocked users")
		return nil, &StorageError{Op: "list blocked", Err: err}
	}
	return blocked, nil
}

var _ ProfileService = (*profileService)(nil)
