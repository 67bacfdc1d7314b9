package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/mnkvreels/vreels-backend/internal/domain"
)

// isUniqueViolation reports whether err is a unique-constraint violation.
// database.New enables TranslateError so drivers report gorm.ErrDuplicatedKey.
func isUniqueViolation(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// GormGraphRepository implements GraphRepository using GORM. The same type
// serves both the root handle and the transaction-bound handle.
type GormGraphRepository struct {
	db *gorm.DB
}

// NewGormGraphRepository creates a new GORM-backed relationship store.
func NewGormGraphRepository(db *gorm.DB) *GormGraphRepository {
	return &GormGraphRepository{db: db}
}

// WithTx runs fn in a single database transaction. Any error returned by fn
// rolls the whole unit back.
func (r *GormGraphRepository) WithTx(ctx context.Context, fn func(tx GraphRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormGraphRepository{db: tx})
	})
}

func (r *GormGraphRepository) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	return findUser(r.db.WithContext(ctx), userID)
}

func findUser(db *gorm.DB, userID string) (*domain.User, error) {
	var model domain.UserModel
	if err := db.First(&model, "id = ?", userID).Error; err != nil {
		if isNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

func (r *GormGraphRepository) exists(ctx context.Context, model interface{}, query string, args ...interface{}) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(model).Where(query, args...).Limit(1).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormGraphRepository) create(ctx context.Context, value interface{}) error {
	if err := r.db.WithContext(ctx).Create(value).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *GormGraphRepository) delete(ctx context.Context, model interface{}, query string, args ...interface{}) (bool, error) {
	result := r.db.WithContext(ctx).Where(query, args...).Delete(model)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *GormGraphRepository) FollowExists(ctx context.Context, followerID, followingID string) (bool, error) {
	return r.exists(ctx, &domain.FollowModel{}, "follower_id = ? AND following_id = ?", followerID, followingID)
}

func (r *GormGraphRepository) CreateFollow(ctx context.Context, followerID, followingID string) error {
	return r.create(ctx, &domain.FollowModel{FollowerID: followerID, FollowingID: followingID})
}

func (r *GormGraphRepository) DeleteFollow(ctx context.Context, followerID, followingID string) (bool, error) {
	return r.delete(ctx, &domain.FollowModel{}, "follower_id = ? AND following_id = ?", followerID, followingID)
}

func (r *GormGraphRepository) RequestExists(ctx context.Context, requesterID, targetID string) (bool, error) {
	return r.exists(ctx, &domain.FollowRequestModel{}, "requester_id = ? AND target_id = ?", requesterID, targetID)
}

func (r *GormGraphRepository) CreateRequest(ctx context.Context, requesterID, targetID string) error {
	return r.create(ctx, &domain.FollowRequestModel{RequesterID: requesterID, TargetID: targetID})
}

func (r *GormGraphRepository) DeleteRequest(ctx context.Context, requesterID, targetID string) (bool, error) {
	return r.delete(ctx, &domain.FollowRequestModel{}, "requester_id = ? AND target_id = ?", requesterID, targetID)
}

func (r *GormGraphRepository) BlockExists(ctx context.Context, blockerID, blockedID string) (bool, error) {
	return r.exists(ctx, &domain.BlockModel{}, "blocker_id = ? AND blocked_id = ?", blockerID, blockedID)
}

func (r *GormGraphRepository) CreateBlock(ctx context.Context, blockerID, blockedID string) error {
	return r.create(ctx, &domain.BlockModel{BlockerID: blockerID, BlockedID: blockedID})
}

func (r *GormGraphRepository) DeleteBlock(ctx context.Context, blockerID, blockedID string) (bool, error) {
	return r.delete(ctx, &domain.BlockModel{}, "blocker_id = ? AND blocked_id = ?", blockerID, blockedID)
}

func (r *GormGraphRepository) AdjustFollowCounts(ctx context.Context, followerID, followingID string, delta int64) error {
	db := r.db.WithContext(ctx)

	res := db.Model(&domain.UserModel{}).Where("id = ?", followerID).
		UpdateColumn("following_count", gorm.Expr("following_count + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}

	res = db.Model(&domain.UserModel{}).Where("id = ?", followingID).
		UpdateColumn("followers_count", gorm.Expr("followers_count + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *GormGraphRepository) Recount(ctx context.Context, userID string) (domain.Counts, error) {
	db := r.db.WithContext(ctx)
	counts := domain.Counts{UserID: userID}

	if err := db.Model(&domain.FollowModel{}).Where("following_id = ?", userID).Count(&counts.FollowersCount).Error; err != nil {
		return counts, err
	}
	if err := db.Model(&domain.FollowModel{}).Where("follower_id = ?", userID).Count(&counts.FollowingCount).Error; err != nil {
		return counts, err
	}

	res := db.Model(&domain.UserModel{}).Where("id = ?", userID).UpdateColumns(map[string]interface{}{
		"followers_count": counts.FollowersCount,
		"following_count": counts.FollowingCount,
	})
	if res.Error != nil {
		return counts, res.Error
	}
	if res.RowsAffected == 0 {
		// Unchanged values still match on most drivers; confirm the row exists.
		if _, err := findUser(db, userID); err != nil {
			return counts, err
		}
	}
	return counts, nil
}

func (r *GormGraphRepository) PurgeUser(ctx context.Context, userID string) error {
	db := r.db.WithContext(ctx)

	followers := db.Model(&domain.FollowModel{}).Select("follower_id").Where("following_id = ?", userID)
	if err := db.Model(&domain.UserModel{}).Where("id IN (?)", followers).
		UpdateColumn("following_count", gorm.Expr("following_count - 1")).Error; err != nil {
		return err
	}
	followees := db.Model(&domain.FollowModel{}).Select("following_id").Where("follower_id = ?", userID)
	if err := db.Model(&domain.UserModel{}).Where("id IN (?)", followees).
		UpdateColumn("followers_count", gorm.Expr("followers_count - 1")).Error; err != nil {
		return err
	}

	liked := db.Model(&domain.LikeModel{}).Select("post_id").Where("user_id = ?", userID)
	if err := db.Model(&domain.PostModel{}).Where("id IN (?)", liked).
		UpdateColumn("likes_count", gorm.Expr("likes_count - 1")).Error; err != nil {
		return err
	}
	saved := db.Model(&domain.SavedPostModel{}).Select("post_id").Where("user_id = ?", userID)
	if err := db.Model(&domain.PostModel{}).Where("id IN (?)", saved).
		UpdateColumn("save_count", gorm.Expr("save_count - 1")).Error; err != nil {
		return err
	}
	commented := db.Model(&domain.CommentModel{}).Select("post_id").Where("user_id = ?", userID)
	if err := db.Model(&domain.PostModel{}).Where("id IN (?)", commented).
		UpdateColumn("comment_count", gorm.Expr(
			"comment_count - (SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id AND comments.user_id = ?)", userID,
		)).Error; err != nil {
		return err
	}

	own := db.Model(&domain.PostModel{}).Select("id").Where("author_id = ?", userID)
	steps := []struct {
		model interface{}
		query string
		args  []interface{}
	}{
		{&domain.FollowModel{}, "follower_id = ? OR following_id = ?", []interface{}{userID, userID}},
		{&domain.FollowRequestModel{}, "requester_id = ? OR target_id = ?", []interface{}{userID, userID}},
		{&domain.BlockModel{}, "blocker_id = ? OR blocked_id = ?", []interface{}{userID, userID}},
		{&domain.LikeModel{}, "user_id = ? OR post_id IN (?)", []interface{}{userID, own}},
		{&domain.SavedPostModel{}, "user_id = ? OR post_id IN (?)", []interface{}{userID, own}},
		{&domain.CommentModel{}, "user_id = ? OR post_id IN (?)", []interface{}{userID, own}},
		{&domain.PostHashtagModel{}, "post_id IN (?)", []interface{}{own}},
		{&domain.PostModel{}, "author_id = ?", []interface{}{userID}},
		{&domain.UserModel{}, "id = ?", []interface{}{userID}},
	}
	for _, s := range steps {
		if err := db.Where(s.query, s.args...).Delete(s.model).Error; err != nil {
			return err
		}
	}
	return nil
}

// Ensure interface is satisfied at compile time.
var _ GraphRepository = (*GormGraphRepository)(nil)
