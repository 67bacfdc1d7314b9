package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mnkvreels/vreels-backend/internal/domain"
)

// GormUserRepository implements UserRepository using GORM.
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GORM-based user repository.
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// Upsert inserts the user or refreshes its profile columns. Counters are
// never touched on conflict.
func (r *GormUserRepository) Upsert(ctx context.Context, user *domain.User) error {
	model := domain.UserToModel(user)
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"username", "display_name", "phone", "avatar_url", "bio", "account_type", "updated_at",
		}),
	}).Create(model).Error
}

// GetByID retrieves a user by ID.
func (r *GormUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return findUser(r.db.WithContext(ctx), id)
}

// GetByIDs loads users keyed by id. Unknown ids are absent from the map.
func (r *GormUserRepository) GetByIDs(ctx context.Context, ids []string) (map[string]*domain.User, error) {
	return loadUsers(r.db.WithContext(ctx), ids)
}

func loadUsers(db *gorm.DB, ids []string) (map[string]*domain.User, error) {
	out := make(map[string]*domain.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var models []domain.UserModel
	if err := db.Where("id IN ?", ids).Find(&models).Error; err != nil {
		return nil, err
	}
	for i := range models {
		out[models[i].ID] = models[i].ToDomain()
	}
	return out, nil
}

var _ UserRepository = (*GormUserRepository)(nil)
