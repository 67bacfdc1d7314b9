package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/mnkvreels/vreels-backend/internal/domain"
)

// CreateComment inserts c and bumps the post's comment_count in one
// transaction. c.ID and c.CreatedAt are filled in on success.
func (r *GormPostRepository) CreateComment(ctx context.Context, c *domain.Comment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.PostModel{}).Where("id = ?", c.PostID).
			UpdateColumn("comment_count", gorm.Expr("comment_count + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrPostNotFound
		}

		model := domain.CommentModel{PostID: c.PostID, UserID: c.AuthorID, Content: c.Content}
		if err := tx.Create(&model).Error; err != nil {
			return err
		}
		c.ID = model.ID
		c.CreatedAt = model.CreatedAt
		return nil
	})
}

func (r *GormPostRepository) GetComment(ctx context.Context, postID, commentID uint) (*domain.Comment, error) {
	var model domain.CommentModel
	err := r.db.WithContext(ctx).First(&model, "id = ? AND post_id = ?", commentID, postID).Error
	if err != nil {
		if isNotFound(err) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

func commentScope(postID uint, excluded []string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		db = db.Where("comments.post_id = ?", postID).
			Where("comments.user_id IN (?)",
				db.Session(&gorm.Session{NewDB: true}).Model(&domain.UserModel{}).Select("id"))
		if len(excluded) > 0 {
			db = db.Where("comments.user_id NOT IN ?", excluded)
		}
		return db
	}
}

func (r *GormPostRepository) ListComments(ctx context.Context, postID uint, excluded []string, offset, limit int) ([]domain.Comment, int64, error) {
	db := r.db.WithContext(ctx)

	var total int64
	if err := db.Model(&domain.CommentModel{}).Scopes(commentScope(postID, excluded)).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if total == 0 || int64(offset) >= total {
		return []domain.Comment{}, total, nil
	}

	var models []domain.CommentModel
	err := db.Model(&domain.CommentModel{}).Scopes(commentScope(postID, excluded)).
		Order("comments.created_at ASC").Order("comments.id ASC").
		Offset(offset).Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, 0, err
	}

	comments := make([]domain.Comment, 0, len(models))
	for i := range models {
		comments = append(comments, *models[i].ToDomain())
	}
	return comments, total, nil
}

// DeleteComment removes one comment and decrements the post's
// comment_count in the same transaction.
func (r *GormPostRepository) DeleteComment(ctx context.Context, postID, commentID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND post_id = ?", commentID, postID).Delete(&domain.CommentModel{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrCommentNotFound
		}
		return tx.Model(&domain.PostModel{}).Where("id = ? AND comment_count > 0", postID).
			UpdateColumn("comment_count", gorm.Expr("comment_count - 1")).Error
	})
}
