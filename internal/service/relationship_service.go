package service

import (
	"context"
	"errors"

	"github.com/mnkvreels/vreels-backend/internal/audit"
	"github.com/mnkvreels/vreels-backend/internal/domain"
	"github.com/mnkvreels/vreels-backend/internal/metrics"
	"github.com/mnkvreels/vreels-backend/internal/repository"
	"github.com/mnkvreels/vreels-backend/internal/store"
	pkglog "github.com/mnkvreels/vreels-backend/pkg/log"
	"github.com/mnkvreels/vreels-backend/pkg/pubsub"
)

// relationshipManager implements RelationshipManager.
type relationshipManager struct {
	repo     repository.GraphRepository
	cache    store.CountStore
	notifier Notifier
}

// NewRelationshipManager creates a RelationshipManager. A nil notifier
// disables notifications.
func NewRelationshipManager(repo repository.GraphRepository, cache store.CountStore, notifier Notifier) RelationshipManager {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &relationshipManager{
		repo:     repo,
		cache:    cache,
		notifier: notifier,
	}
}

// requirePair loads both users inside tx and returns the target.
func requirePair(ctx context.Context, tx repository.GraphRepository, actorID, targetID string) (*domain.User, error) {
	if _, err := tx.GetUser(ctx, actorID); err != nil {
		return nil, err
	}
	return tx.GetUser(ctx, targetID)
}

// Follow follows a public account, or files a request against a private one.
func (s *relationshipManager) Follow(ctx context.Context, requesterID, targetID string) (*domain.FollowResult, error) {
	l := pkglog.Ctx(ctx)

	if requesterID == targetID {
		return nil, ErrSelfReference
	}

	result := &domain.FollowResult{FollowerID: requesterID, FollowingID: targetID}
	var attempted domain.FollowStatus

	err := s.repo.WithTx(ctx, func(tx repository.GraphRepository) error {
		target, err := requirePair(ctx, tx, requesterID, targetID)
		if err != nil {
			return err
		}

		facts, err := tx.Facts(ctx, requesterID, targetID)
		if err != nil {
			return err
		}
		if facts.Blocked() {
			return ErrForbidden
		}
		if facts.ViewerFollowsOwner {
			result.Status = domain.FollowStatusAlreadyFollowing
			return nil
		}

		if target.AccountType.IsPrivate() {
			if facts.ViewerRequested {
				return ErrRequestAlreadyPending
			}
			attempted = domain.FollowStatusRequested
			if err := tx.CreateRequest(ctx, requesterID, targetID); err != nil {
				return err
			}
			result.Status = domain.FollowStatusRequested
			return nil
		}

		attempted = domain.FollowStatusFollowed
		if err := tx.CreateFollow(ctx, requesterID, targetID); err != nil {
			return err
		}
		// A request filed while the target was private is now moot.
		if facts.ViewerRequested {
			if _, err := tx.DeleteRequest(ctx, requesterID, targetID); err != nil {
				return err
			}
		}
		if err := tx.AdjustFollowCounts(ctx, requesterID, targetID, 1); err != nil {
			return err
		}
		result.Status = domain.FollowStatusFollowed
		return nil
	})

	// A concurrent caller inserted the same row first.
	if errors.Is(err, repository.ErrDuplicate) {
		if attempted == domain.FollowStatusRequested {
			err = ErrRequestAlreadyPending
		} else {
			err = nil
			result.Status = domain.FollowStatusAlreadyFollowing
		}
	}
	if err != nil {
		metrics.RecordMutation("follow", "error")
		err = translate("follow", err)
		if !isServiceError(err) {
			l.Error().Err(err).
				Str(pkglog.FieldUserID, requesterID).
				Str(pkglog.FieldTargetID, targetID).
				Msg("failed to follow user")
		}
		return nil, err
	}

	metrics.RecordMutation("follow", string(result.Status))
	switch result.Status {
	case domain.FollowStatusFollowed:
		s.adjustCachedCounts(ctx, requesterID, targetID, 1)
		s.notifier.Notify(ctx, pubsub.EventFollowCreated, requesterID, targetID)
		audit.Log(ctx, audit.ActionFollow, requesterID, targetID, "user followed")
	case domain.FollowStatusRequested:
		s.notifier.Notify(ctx, pubsub.EventFollowRequested, requesterID, targetID)
		audit.Log(ctx, audit.ActionFollowRequest, requesterID, targetID, "follow request created")
	}
	return result, nil
}

func (s *relationshipManager) RequestFollow(ctx context.Context, requesterID, targetID string) (*domain.FollowResult, error) {
	return s.Follow(ctx, requesterID, targetID)
}

// Unfollow removes the requester -> target edge.
func (s *relationshipManager) Unfollow(ctx context.Context, requesterID, targetID string) error {
	l := pkglog.Ctx(ctx)

	if requesterID == targetID {
		return ErrSelfReference
	}

	err := s.repo.WithTx(ctx, func(tx repository.GraphRepository) error {
		deleted, err := tx.DeleteFollow(ctx, requesterID, targetID)
		if err != nil {
			return err
		}
		if !deleted {
			return ErrNotFollowing
		}
		return tx.AdjustFollowCounts(ctx, requesterID, targetID, -1)
	})
	if err != nil {
		metrics.RecordMutation("unfollow", "error")
		err = translate("unfollow", err)
		if !isServiceError(err) {
			l.Error().Err(err).
				Str(pkglog.FieldUserID, requesterID).
				Str(pkglog.FieldTargetID, targetID).
				Msg("failed to unfollow user")
		}
		return err
	}

	metrics.RecordMutation("unfollow", "unfollowed")
	s.adjustCachedCounts(ctx, requesterID, targetID, -1)
	audit.Log(ctx, audit.ActionUnfollow, requesterID, targetID, "user unfollowed")
	return nil
}

// AcceptRequest turns requester's pending request to target into a follow.
func (s *relationshipManager) AcceptRequest(ctx context.Context, targetID, requesterID string) (*domain.FollowResult, error) {
	l := pkglog.Ctx(ctx)

	err := s.repo.WithTx(ctx, func(tx repository.GraphRepository) error {
		deleted, err := tx.DeleteRequest(ctx, requesterID, targetID)
		if err != nil {
			return err
		}
		if !deleted {
			return ErrRequestNotFound
		}
		if err := tx.CreateFollow(ctx, requesterID, targetID); err != nil {
			return err
		}
		return tx.AdjustFollowCounts(ctx, requesterID, targetID, 1)
	})
	// Lost a race with another accept of the same request.
	if errors.Is(err, repository.ErrDuplicate) {
		err = ErrRequestNotFound
	}
	if err != nil {
		metrics.RecordMutation("accept_request", "error")
		err = translate("accept request", err)
		if !isServiceError(err) {
			l.Error().Err(err).
				Str(pkglog.FieldUserID, targetID).
				Str(pkglog.FieldTargetID, requesterID).
				Msg("failed to accept follow request")
		}
		return nil, err
	}

	metrics.RecordMutation("accept_request", string(domain.FollowStatusFollowed))
	s.adjustCachedCounts(ctx, requesterID, targetID, 1)
	s.notifier.Notify(ctx, pubsub.EventFollowAccepted, targetID, requesterID)
	audit.Log(ctx, audit.ActionAcceptRequest, targetID, requesterID, "follow request accepted")

	return &domain.FollowResult{
		Status:      domain.FollowStatusFollowed,
		FollowerID:  requesterID,
		FollowingID: targetID,
	}, nil
}

func (s *relationshipManager) RejectRequest(ctx context.Context, targetID, requesterID string) error {
	if err := s.dropRequest(ctx, "reject_request", requesterID, targetID); err != nil {
		return err
	}
	audit.Log(ctx, audit.ActionRejectRequest, targetID, requesterID, "follow request rejected")
	return nil
}

func (s *relationshipManager) CancelRequest(ctx context.Context, requesterID, targetID string) error {
	if err := s.dropRequest(ctx, "cancel_request", requesterID, targetID); err != nil {
		return err
	}
	audit.Log(ctx, audit.ActionCancelRequest, requesterID, targetID, "follow request cancelled")
	return nil
}

func (s *relationshipManager) dropRequest(ctx context.Context, op, requesterID, targetID string) error {
	l := pkglog.Ctx(ctx)

	deleted, err := s.repo.DeleteRequest(ctx, requesterID, targetID)
	if err != nil {
		metrics.RecordMutation(op, "error")
		l.Error().Err(err).
			Str("requester_id", requesterID).
			Str(pkglog.FieldTargetID, targetID).
			Str("op", op).
			Msg("failed to delete follow request")
		return &StorageError{Op: op, Err: err}
	}
	if !deleted {
		metrics.RecordMutation(op, "error")
		return ErrRequestNotFound
	}
	metrics.RecordMutation(op, "deleted")
	return nil
}

// Block tears down every edge and request between the pair, in both
// directions, and records the block, all in one transaction.
func (s *relationshipManager) Block(ctx context.Context, blockerID, targetID string) (*domain.BlockResult, error) {
	l := pkglog.Ctx(ctx)

	if blockerID == targetID {
		return nil, ErrSelfReference
	}

	result := &domain.BlockResult{BlockerID: blockerID, BlockedID: targetID}

	err := s.repo.WithTx(ctx, func(tx repository.GraphRepository) error {
		if _, err := requirePair(ctx, tx, blockerID, targetID); err != nil {
			return err
		}

		exists, err := tx.BlockExists(ctx, blockerID, targetID)
		if err != nil {
			return err
		}
		if exists {
			result.Status = domain.BlockStatusAlreadyBlocked
			return nil
		}

		for _, pair := range [2][2]string{{blockerID, targetID}, {targetID, blockerID}} {
			from, to := pair[0], pair[1]

			removed, err := tx.DeleteFollow(ctx, from, to)
			if err != nil {
				return err
			}
			if removed {
				result.FollowsRemoved++
				if err := tx.AdjustFollowCounts(ctx, from, to, -1); err != nil {
					return err
				}
			}

			removed, err = tx.DeleteRequest(ctx, from, to)
			if err != nil {
				return err
			}
			if removed {
				result.RequestsRemoved++
			}
		}

		if err := tx.CreateBlock(ctx, blockerID, targetID); err != nil {
			return err
		}
		result.Status = domain.BlockStatusBlocked
		return nil
	})

	if errors.Is(err, repository.ErrDuplicate) {
		err = nil
		*result = domain.BlockResult{Status: domain.BlockStatusAlreadyBlocked, BlockerID: blockerID, BlockedID: targetID}
	}
	if err != nil {
		metrics.RecordMutation("block", "error")
		err = translate("block", err)
		if !isServiceError(err) {
			l.Error().Err(err).
				Str(pkglog.FieldUserID, blockerID).
				Str(pkglog.FieldTargetID, targetID).
				Msg("failed to block user")
		}
		return nil, err
	}

	metrics.RecordMutation("block", string(result.Status))
	if result.Status == domain.BlockStatusBlocked {
		if result.FollowsRemoved > 0 {
			if err := s.cache.Invalidate(ctx, blockerID, targetID); err != nil {
				l.Warn().Err(err).Str(pkglog.FieldUserID, blockerID).Msg("failed to invalidate cached counts")
			}
		}
		audit.LogWithDetail(ctx, audit.ActionBlock, blockerID, targetID,
			blockDetail(result), "user blocked")
	}
	return result, nil
}

func blockDetail(r *domain.BlockResult) string {
	switch {
	case r.FollowsRemoved > 0 && r.RequestsRemoved > 0:
		return "follows and requests removed"
	case r.FollowsRemoved > 0:
		return "follows removed"
	case r.RequestsRemoved > 0:
		return "requests removed"
	}
	return "no prior relationship"
}

// Unblock removes the block row. Prior follow state is not restored.
func (s *relationshipManager) Unblock(ctx context.Context, blockerID, targetID string) error {
	l := pkglog.Ctx(ctx)

	if blockerID == targetID {
		return ErrSelfReference
	}

	deleted, err := s.repo.DeleteBlock(ctx, blockerID, targetID)
	if err != nil {
		metrics.RecordMutation("unblock", "error")
		l.Error().Err(err).
			Str(pkglog.FieldUserID, blockerID).
			Str(pkglog.FieldTargetID, targetID).
			Msg("failed to unblock user")
		return &StorageError{Op: "unblock", Err: err}
	}
	if !deleted {
		metrics.RecordMutation("unblock", "error")
		return ErrNotBlocked
	}

	metrics.RecordMutation("unblock", "unblocked")
	audit.Log(ctx, audit.ActionUnblock, blockerID, targetID, "user unblocked")
	return nil
}

// Recount recomputes userID's counters from the edge table and refreshes
// the cache with the result.
func (s *relationshipManager) Recount(ctx context.Context, userID string) (domain.Counts, error) {
	l := pkglog.Ctx(ctx)

	var counts domain.Counts
	err := s.repo.WithTx(ctx, func(tx repository.GraphRepository) error {
		var err error
		counts, err = tx.Recount(ctx, userID)
		return err
	})
	if err != nil {
		err = translate("recount", err)
		if !isServiceError(err) {
			l.Error().Err(err).Str(pkglog.FieldUserID, userID).Msg("failed to recount user")
		}
		return domain.Counts{}, err
	}

	if err := s.cache.SetCounts(ctx, counts); err != nil {
		l.Warn().Err(err).Str(pkglog.FieldUserID, userID).Msg("failed to refresh cached counts")
	}
	audit.Log(ctx, audit.ActionRecount, userID, userID, "counters recomputed")
	return counts, nil
}

// adjustCachedCounts moves already-cached counters after a committed edge
// change. A failure here only leaves the cache stale until its TTL.
func (s *relationshipManager) adjustCachedCounts(ctx context.Context, followerID, followingID string, delta int64) {
	if err := s.cache.AdjustFollow(ctx, followerID, followingID, delta); err != nil {
		l := pkglog.Ctx(ctx)
		l.Warn().Err(err).
			Str(pkglog.FieldUserID, followerID).
			Str(pkglog.FieldTargetID, followingID).
			Msg("failed to adjust cached counts, invalidating")
		_ = s.cache.Invalidate(ctx, followerID, followingID)
	}
}

// Ensure interface is satisfied at compile time.
var _ RelationshipManager = (*relationshipManager)(nil)
