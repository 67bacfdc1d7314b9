package domain

import (
	"time"

	"github.com/mnkvreels/vreels-backend/pkg/database"
)

// UserModel is the GORM model for the users table. Counter columns are only
// written by the relationship manager.
type UserModel struct {
	ID             string    `gorm:"type:varchar(36);primaryKey"`
	Username       string    `gorm:"type:varchar(50);uniqueIndex;not null"`
	DisplayName    string    `gorm:"type:varchar(100)"`
	Phone          *string   `gorm:"type:varchar(20);uniqueIndex"`
	AvatarURL      string    `gorm:"type:varchar(512)"`
	Bio            string    `gorm:"type:text"`
	AccountType    string    `gorm:"type:varchar(10);not null;default:'PUBLIC'"`
	FollowersCount int64     `gorm:"not null;default:0"`
	FollowingCount int64     `gorm:"not null;default:0"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime"`
}

func (UserModel) TableName() string { return "users" }

// ToDomain converts UserModel to domain User.
func (m *UserModel) ToDomain() *User {
	u := &User{
		ID:             m.ID,
		Username:       m.Username,
		DisplayName:    m.DisplayName,
		AvatarURL:      m.AvatarURL,
		Bio:            m.Bio,
		AccountType:    AccountType(m.AccountType),
		FollowersCount: m.FollowersCount,
		FollowingCount: m.FollowingCount,
		CreatedAt:      m.CreatedAt,
	}
	if m.Phone != nil {
		u.Phone = *m.Phone
	}
	return u
}

// UserToModel converts domain User to UserModel. Counters are left zero.
func UserToModel(u *User) *UserModel {
	m := &UserModel{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		AvatarURL:   u.AvatarURL,
		Bio:         u.Bio,
		AccountType: string(u.AccountType.Normalize()),
	}
	if u.Phone != "" {
		phone := u.Phone
		m.Phone = &phone
	}
	return m
}

// FollowModel is the GORM model for the follows table.
type FollowModel struct {
	ID          uint      `gorm:"primaryKey;autoIncrement"`
	FollowerID  string    `gorm:"column:follower_id;type:varchar(36);not null;uniqueIndex:uidx_follow_pair,priority:1;check:chk_follows_no_self,follower_id <> following_id"`
	FollowingID string    `gorm:"column:following_id;type:varchar(36);not null;uniqueIndex:uidx_follow_pair,priority:2;index"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
}

func (FollowModel) TableName() string { return "follows" }

// FollowRequestModel is a pending follow against a private account.
type FollowRequestModel struct {
	ID          uint      `gorm:"primaryKey;autoIncrement"`
	RequesterID string    `gorm:"column:requester_id;type:varchar(36);not null;uniqueIndex:uidx_follow_request_pair,priority:1;check:chk_follow_requests_no_self,requester_id <> target_id"`
	TargetID    string    `gorm:"column:target_id;type:varchar(36);not null;uniqueIndex:uidx_follow_request_pair,priority:2;index"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
}

func (FollowRequestModel) TableName() string { return "follow_requests" }

// BlockModel is a directed block row.
type BlockModel struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	BlockerID string    `gorm:"column:blocker_id;type:varchar(36);not null;uniqueIndex:uidx_block_pair,priority:1;check:chk_blocked_users_no_self,blocker_id <> blocked_id"`
	BlockedID string    `gorm:"column:blocked_id;type:varchar(36);not null;uniqueIndex:uidx_block_pair,priority:2;index"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (BlockModel) TableName() string { return "blocked_users" }

// PostModel is the GORM model for the posts table.
type PostModel struct {
	ID               uint                 `gorm:"primaryKey;autoIncrement"`
	AuthorID         string               `gorm:"type:varchar(36);not null;index"`
	Content          string               `gorm:"type:text"`
	MediaURLs        database.StringArray `gorm:"type:text"`
	MediaType        string               `gorm:"type:varchar(10)"`
	Location         string               `gorm:"type:varchar(255)"`
	Visibility       string               `gorm:"type:varchar(10);not null;default:'public';index"`
	LikesCount       int64                `gorm:"not null;default:0"`
	SaveCount        int64                `gorm:"not null;default:0"`
	CommentCount     int64                `gorm:"not null;default:0"`
	CommentsDisabled bool                 `gorm:"not null;default:false"`
	CreatedAt        time.Time            `gorm:"autoCreateTime;index"`
	UpdatedAt        time.Time            `gorm:"autoUpdateTime"`
}

func (PostModel) TableName() string { return "posts" }

// ToDomain converts PostModel to domain Post.
func (m *PostModel) ToDomain() *Post {
	return &Post{
		ID:               m.ID,
		AuthorID:         m.AuthorID,
		Content:          m.Content,
		MediaURLs:        []string(m.MediaURLs),
		MediaType:        MediaType(m.MediaType),
		Location:         m.Location,
		Visibility:       VisibilityTier(m.Visibility),
		LikesCount:       m.LikesCount,
		SaveCount:        m.SaveCount,
		CommentCount:     m.CommentCount,
		CommentsDisabled: m.CommentsDisabled,
		CreatedAt:        m.CreatedAt,
	}
}

// HashtagModel is a distinct lowercase hashtag.
type HashtagModel struct {
	ID   uint   `gorm:"primaryKey;autoIncrement"`
	Name string `gorm:"type:varchar(100);uniqueIndex;not null"`
}

func (HashtagModel) TableName() string { return "hashtags" }

// PostHashtagModel links posts to hashtags.
type PostHashtagModel struct {
	PostID    uint `gorm:"primaryKey"`
	HashtagID uint `gorm:"primaryKey;index"`
}

func (PostHashtagModel) TableName() string { return "post_hashtags" }

type LikeModel struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	UserID    string    `gorm:"type:varchar(36);not null;uniqueIndex:uidx_like_pair,priority:1"`
	PostID    uint      `gorm:"not null;uniqueIndex:uidx_like_pair,priority:2;index"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (LikeModel) TableName() string { return "likes" }

type SavedPostModel struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	UserID    string    `gorm:"type:varchar(36);not null;uniqueIndex:uidx_saved_pair,priority:1"`
	PostID    uint      `gorm:"not null;uniqueIndex:uidx_saved_pair,priority:2;index"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (SavedPostModel) TableName() string { return "user_saved_posts" }

// CommentModel is one comment on a post.
type CommentModel struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	PostID    uint      `gorm:"not null;index:idx_comment_post,priority:1"`
	UserID    string    `gorm:"type:varchar(36);not null;index"`
	Content   string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime;index:idx_comment_post,priority:2"`
}

func (CommentModel) TableName() string { return "comments" }

func (m *CommentModel) ToDomain() *Comment {
	return &Comment{
		ID:        m.ID,
		PostID:    m.PostID,
		AuthorID:  m.UserID,
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
	}
}

// Models lists every table owned by this service, in migration order.
func Models() []interface{} {
	return []interface{}{
		&UserModel{},
		&FollowModel{},
		&FollowRequestModel{},
		&BlockModel{},
		&PostModel{},
		&HashtagModel{},
		&PostHashtagModel{},
		&LikeModel{},
		&SavedPostModel{},
		&CommentModel{},
	}
}
