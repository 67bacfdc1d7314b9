package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mnkvreels/vreels-backend/internal/domain"
	"github.com/mnkvreels/vreels-backend/pkg/database"
)

// errNoChange aborts an interaction transaction that found nothing to do.
var errNoChange = errors.New("no change")

// GormPostRepository implements PostRepository using GORM.
type GormPostRepository struct {
	db *gorm.DB
}

// NewGormPostRepository creates a new GORM-backed post repository.
func NewGormPostRepository(db *gorm.DB) *GormPostRepository {
	return &GormPostRepository{db: db}
}

// Create inserts the post and links its hashtags in one transaction.
// post.ID and post.CreatedAt are filled in on success.
func (r *GormPostRepository) Create(ctx context.Context, post *domain.Post) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model := domain.PostModel{
			AuthorID:         post.AuthorID,
			Content:          post.Content,
			MediaURLs:        database.StringArray(post.MediaURLs),
			MediaType:        string(post.MediaType),
			Location:         post.Location,
			Visibility:       string(post.Visibility),
			CommentsDisabled: post.CommentsDisabled,
		}
		if err := tx.Create(&model).Error; err != nil {
			return err
		}

		for _, name := range post.Hashtags {
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
				Create(&domain.HashtagModel{Name: name}).Error; err != nil {
				return err
			}
			var tag domain.HashtagModel
			if err := tx.Where("name = ?", name).First(&tag).Error; err != nil {
				return err
			}
			if err := tx.Create(&domain.PostHashtagModel{PostID: model.ID, HashtagID: tag.ID}).Error; err != nil {
				return err
			}
		}

		post.ID = model.ID
		post.CreatedAt = model.CreatedAt
		return nil
	})
}

// GetByID retrieves a post with its hashtags.
func (r *GormPostRepository) GetByID(ctx context.Context, id uint) (*domain.Post, error) {
	var model domain.PostModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if isNotFound(err) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}

	post := model.ToDomain()
	tags, err := r.HashtagsFor(ctx, []uint{id})
	if err != nil {
		return nil, err
	}
	post.Hashtags = tags[id]
	return post, nil
}

// feedScope translates a FeedFilter into WHERE clauses. The tier predicate
// mirrors the post visibility rule and posts without an author row are
// left out, so counts match the rows a feed can render.
func feedScope(f FeedFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if f.Interaction != "" {
			db = db.Joins("JOIN "+string(f.Interaction)+" ix ON ix.post_id = posts.id AND ix.user_id = ?", f.ViewerID)
		}
		db = db.Where("posts.author_id IN (?)",
			db.Session(&gorm.Session{NewDB: true}).Model(&domain.UserModel{}).Select("id"))
		if len(f.ExcludedAuthors) > 0 {
			db = db.Where("posts.author_id NOT IN ?", f.ExcludedAuthors)
		}
		if f.AuthorID != "" {
			db = db.Where("posts.author_id = ?", f.AuthorID)
		}
		if f.FollowedByViewer {
			db = db.Where("posts.author_id IN (?)",
				db.Session(&gorm.Session{NewDB: true}).Model(&domain.FollowModel{}).
					Select("following_id").Where("follower_id = ?", f.ViewerID))
		}
		if f.Hashtag != "" {
			db = db.Where("posts.id IN (?)",
				db.Session(&gorm.Session{NewDB: true}).Table("post_hashtags").
					Select("post_hashtags.post_id").
					Joins("JOIN hashtags ON hashtags.id = post_hashtags.hashtag_id").
					Where("hashtags.name = ?", f.Hashtag))
		}
		if f.Visibility != "" {
			db = db.Where("posts.visibility = ?", string(f.Visibility))
		}
		if f.MediaType != "" {
			db = db.Where("posts.media_type = ?", string(f.MediaType))
		}

		followed := db.Session(&gorm.Session{NewDB: true}).Model(&domain.FollowModel{}).
			Select("following_id").Where("follower_id = ?", f.ViewerID)
		return db.Where(
			"(posts.author_id = ? OR posts.visibility = ? OR (posts.visibility = ? AND posts.author_id IN (?)))",
			f.ViewerID, string(domain.VisibilityPublic), string(domain.VisibilityFriends), followed,
		)
	}
}

// ListFeed returns one page of posts, newest first with id as tie-break,
// plus the total number of matching posts. Interaction feeds order by the
// interaction row instead.
func (r *GormPostRepository) ListFeed(ctx context.Context, f FeedFilter) ([]domain.Post, int64, error) {
	db := r.db.WithContext(ctx)

	var total int64
	if err := db.Model(&domain.PostModel{}).Scopes(feedScope(f)).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if total == 0 || int64(f.Offset) >= total {
		return []domain.Post{}, total, nil
	}

	q := db.Model(&domain.PostModel{}).Select("posts.*").Scopes(feedScope(f))
	if f.Interaction != "" {
		q = q.Order("ix.created_at DESC").Order("ix.id DESC")
	} else {
		q = q.Order("posts.created_at DESC").Order("posts.id DESC")
	}

	var models []domain.PostModel
	err := q.Offset(f.Offset).Limit(f.Limit).Find(&models).Error
	if err != nil {
		return nil, 0, err
	}

	posts := make([]domain.Post, 0, len(models))
	ids := make([]uint, 0, len(models))
	for i := range models {
		posts = append(posts, *models[i].ToDomain())
		ids = append(ids, models[i].ID)
	}

	tags, err := r.HashtagsFor(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	for i := range posts {
		posts[i].Hashtags = tags[posts[i].ID]
	}
	return posts, total, nil
}

// Delete removes the post and every row that hangs off it.
func (r *GormPostRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ?", id).Delete(&domain.PostModel{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrPostNotFound
		}
		for _, model := range []interface{}{
			&domain.LikeModel{},
			&domain.SavedPostModel{},
			&domain.PostHashtagModel{},
			&domain.CommentModel{},
		} {
			if err := tx.Where("post_id = ?", id).Delete(model).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// HashtagsFor returns the hashtag names of each post.
func (r *GormPostRepository) HashtagsFor(ctx context.Context, postIDs []uint) (map[uint][]string, error) {
	out := make(map[uint][]string, len(postIDs))
	if len(postIDs) == 0 {
		return out, nil
	}

	var rows []struct {
		PostID uint
		Name   string
	}
	err := r.db.WithContext(ctx).Table("post_hashtags").
		Select("post_hashtags.post_id, hashtags.name").
		Joins("JOIN hashtags ON hashtags.id = post_hashtags.hashtag_id").
		Where("post_hashtags.post_id IN ?", postIDs).
		Order("hashtags.name").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.PostID] = append(out[row.PostID], row.Name)
	}
	return out, nil
}

// interact inserts or deletes a per-user interaction row and moves the
// matching post counter in the same transaction. It reports whether a row
// changed.
func (r *GormPostRepository) interact(ctx context.Context, model interface{}, row interface{}, counter string, userID string, postID uint, add bool) (bool, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		delta := -1
		if add {
			var count int64
			if err := tx.Model(model).Where("user_id = ? AND post_id = ?", userID, postID).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return errNoChange
			}
			if err := tx.Create(row).Error; err != nil {
				if isUniqueViolation(err) {
					return errNoChange
				}
				return err
			}
			delta = 1
		} else {
			res := tx.Where("user_id = ? AND post_id = ?", userID, postID).Delete(model)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return errNoChange
			}
		}

		res := tx.Model(&domain.PostModel{}).Where("id = ?", postID).
			UpdateColumn(counter, gorm.Expr(counter+" + ?", delta))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrPostNotFound
		}
		return nil
	})
	if errors.Is(err, errNoChange) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *GormPostRepository) Like(ctx context.Context, userID string, postID uint) (bool, error) {
	return r.interact(ctx, &domain.LikeModel{}, &domain.LikeModel{UserID: userID, PostID: postID}, "likes_count", userID, postID, true)
}

func (r *GormPostRepository) Unlike(ctx context.Context, userID string, postID uint) (bool, error) {
	return r.interact(ctx, &domain.LikeModel{}, nil, "likes_count", userID, postID, false)
}

func (r *GormPostRepository) Save(ctx context.Context, userID string, postID uint) (bool, error) {
	return r.interact(ctx, &domain.SavedPostModel{}, &domain.SavedPostModel{UserID: userID, PostID: postID}, "save_count", userID, postID, true)
}

func (r *GormPostRepository) Unsave(ctx context.Context, userID string, postID uint) (bool, error) {
	return r.interact(ctx, &domain.SavedPostModel{}, nil, "save_count", userID, postID, false)
}

func (r *GormPostRepository) pointLookup(ctx context.Context, model interface{}, userID string, postID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(model).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Limit(1).Count(&count).Error
	return count > 0, err
}

// IsLiked reports whether userID liked postID.
func (r *GormPostRepository) IsLiked(ctx context.Context, userID string, postID uint) (bool, error) {
	return r.pointLookup(ctx, &domain.LikeModel{}, userID, postID)
}

// IsSaved reports whether userID saved postID.
func (r *GormPostRepository) IsSaved(ctx context.Context, userID string, postID uint) (bool, error) {
	return r.pointLookup(ctx, &domain.SavedPostModel{}, userID, postID)
}

var _ PostRepository = (*GormPostRepository)(nil)
