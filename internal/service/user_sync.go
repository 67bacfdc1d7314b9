package service

import (
	"context"

	"github.com/mnkvreels/vreels-backend/internal/audit"
	"github.com/mnkvreels/vreels-backend/internal/domain"
	"github.com/mnkvreels/vreels-backend/internal/repository"
	"github.com/mnkvreels/vreels-backend/internal/store"
	pkglog "github.com/mnkvreels/vreels-backend/pkg/log"
)

type userSync struct {
	graph repository.GraphRepository
	users repository.UserRepository
	cache store.CountStore
}

// NewUserSync creates the handler that mirrors identity-service users into
// the graph tables.
func NewUserSync(graph repository.GraphRepository, users repository.UserRepository, cache store.CountStore) UserSync {
	return &userSync{graph: graph, users: users, cache: cache}
}

// UpsertUser creates the user or refreshes its profile fields. Counters are
// left alone.
func (s *userSync) UpsertUser(ctx context.Context, user *domain.User) error {
	l := pkglog.Ctx(ctx)

	if user == nil || user.ID == "" {
		return invalidArgument("user id is required")
	}
	user.AccountType = user.AccountType.Normalize()

	if err := s.users.Upsert(ctx, user); err != nil {
		l.Error().Err(err).Str(pkglog.FieldUserID, user.ID).Msg("failed to upsert user")
		return &StorageError{Op: "upsert user", Err: err}
	}
	return nil
}

// DeleteUser purges the user with every edge, request, block and post that
// references it. Counterpart counters are decremented in the same
// transaction.
func (s *userSync) DeleteUser(ctx context.Context, userID string) error {
	l := pkglog.Ctx(ctx)

	var neighbors []string
	err := s.graph.WithTx(ctx, func(tx repository.GraphRepository) error {
		var err error
		if neighbors, err = tx.NeighborIDs(ctx, userID); err != nil {
			return err
		}
		return tx.PurgeUser(ctx, userID)
	})
	if err != nil {
		err = translate("purge user", err)
		l.Error().Err(err).Str(pkglog.FieldUserID, userID).Msg("failed to purge user")
		return err
	}

	if err := s.cache.Invalidate(ctx, append(neighbors, userID)...); err != nil {
		l.Warn().Err(err).Str(pkglog.FieldUserID, userID).Msg("failed to invalidate cached counts")
	}
	audit.Log(ctx, audit.ActionUserPurged, userID, userID, "user purged from graph")
	return nil
}

var _ UserSync = (*userSync)(nil)
