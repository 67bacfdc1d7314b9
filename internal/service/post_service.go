package service

import (
	"context"
	"regexp"
	"strings"

	"github.com/mnkvreels/vreels-backend/internal/audit"
	"github.com/mnkvreels/vreels-backend/internal/domain"
	"github.com/mnkvreels/vreels-backend/internal/repository"
	"github.com/mnkvreels/vreels-backend/internal/visibility"
	pkglog "github.com/mnkvreels/vreels-backend/pkg/log"
)

var hashtagPattern = regexp.MustCompile(`#([\p{L}\p{N}_]+)`)

// ExtractHashtags returns the lowercased, de-duplicated hashtags of content
// in order of first appearance.
func ExtractHashtags(content string) []string {
	matches := hashtagPattern.FindAllStringSubmatch(content, -1)
	tags := make([]string, 0, len(matches))
	seen := make(map[string]struct{}, len(matches))
	for _, m := range matches {
		tag := strings.ToLower(m[1])
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}
	return tags
}

// postService implements PostService.
type postService struct {
	graph  repository.GraphRepository
	users  repository.UserRepository
	posts  repository.PostRepository
	paging Paging
}

// NewPostService creates a PostService. paging bounds comment pages.
func NewPostService(graph repository.GraphRepository, users repository.UserRepository, posts repository.PostRepository, paging Paging) PostService {
	return &postService{graph: graph, users: users, posts: posts, paging: paging.withDefaults()}
}

// CreatePost stores a post authored by authorID.
func (s *postService) CreatePost(ctx context.Context, authorID string, req *domain.CreatePostRequest) (*domain.Post, error) {
	l := pkglog.Ctx(ctx)

	tier, err := domain.ParseVisibility(req.Visibility)
	if err != nil {
		return nil, invalidArgument("%v", err)
	}
	mediaType, err := domain.ParseMediaType(req.MediaType)
	if err != nil {
		return nil, invalidArgument("%v", err)
	}
	if strings.TrimSpace(req.Content) == "" && len(req.MediaURLs) == 0 {
		return nil, invalidArgument("post needs content or media")
	}
	if len(req.MediaURLs) > 0 && mediaType == "" {
		return nil, invalidArgument("media_type is required with media_urls")
	}

	if _, err := s.users.GetByID(ctx, authorID); err != nil {
		return nil, translate("create post", err)
	}

	post := &domain.Post{
		AuthorID:         authorID,
		Content:          req.Content,
		MediaURLs:        req.MediaURLs,
		MediaType:        mediaType,
		Location:         req.Location,
		Visibility:       tier,
		Hashtags:         ExtractHashtags(req.Content),
		CommentsDisabled: req.CommentsDisabled,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		l.Error().Err(err).Msg("failed to create post")
		return nil, &StorageError{Op: "create post", Err: err}
	}

	audit.LogWithDetail(ctx, audit.ActionCreatePost, authorID, authorID, string(tier), "post created")
	return post, nil
}

// ResolvePostVisibility returns the post annotated for viewerID, or
// ErrForbidden when the viewer may not see it.
func (s *postService) ResolvePostVisibility(ctx context.Context, viewerID string, postID uint) (*domain.FeedItem, error) {
	l := pkglog.Ctx(ctx)

	post, err := s.visiblePost(ctx, viewerID, postID)
	if err != nil {
		return nil, err
	}

	author, err := s.users.GetByID(ctx, post.AuthorID)
	if err != nil {
		return nil, translate("load author", err)
	}

	item := &domain.FeedItem{Post: *post, Author: author.Summary()}
	if item.IsLiked, err = s.posts.IsLiked(ctx, viewerID, postID); err == nil {
		item.IsSaved, err = s.posts.IsSaved(ctx, viewerID, postID)
	}
	if err != nil {
		l.Error().Err(err).Uint(pkglog.FieldPostID, postID).Msg("failed to load post flags")
		return nil, &StorageError{Op: "resolve post", Err: err}
	}
	return item, nil
}

// visiblePost loads postID and applies the post visibility rule for viewerID.
func (s *postService) visiblePost(ctx context.Context, viewerID string, postID uint) (*domain.Post, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, translate("load post", err)
	}

	var facts domain.RelationshipFacts
	if viewerID != post.AuthorID {
		if facts, err = s.graph.Facts(ctx, viewerID, post.AuthorID); err != nil {
			return nil, &StorageError{Op: "load relationship", Err: err}
		}
	}
	if !visibility.Post(viewerID, post.AuthorID, post.Visibility, facts).Visible() {
		return nil, ErrForbidden
	}
	return post, nil
}

type interaction func(ctx context.Context, userID string, postID uint) (bool, error)

func (s *postService) interact(ctx context.Context, op string, fn interaction, viewerID string, postID uint) error {
	l := pkglog.Ctx(ctx)

	if _, err := s.visiblePost(ctx, viewerID, postID); err != nil {
		return err
	}
	if _, err := fn(ctx, viewerID, postID); err != nil {
		err = translate(op, err)
		if !isServiceError(err) {
			l.Error().Err(err).Uint(pkglog.FieldPostID, postID).Str("op", op).Msg("post interaction failed")
		}
		return err
	}
	return nil
}

func (s *postService) Like(ctx context.Context, viewerID string, postID uint) error {
	return s.interact(ctx, "like", s.posts.Like, viewerID, postID)
}

func (s *postService) Unlike(ctx context.Context, viewerID string, postID uint) error {
	return s.interact(ctx, "unlike", s.posts.Unlike, viewerID, postID)
}

func (s *postService) Save(ctx context.Context, viewerID string, postID uint) error {
	return s.interact(ctx, "save", s.posts.Save, viewerID, postID)
}

func (s *postService) Unsave(ctx context.Context, viewerID string, postID uint) error {
	return s.interact(ctx, "unsave", s.posts.Unsave, viewerID, postID)
}

// DeletePost removes postID with its likes, saves, hashtag links and
// comments. Only the author may delete a post.
func (s *postService) DeletePost(ctx context.Context, viewerID string, postID uint) error {
	l := pkglog.Ctx(ctx)

	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return translate("load post", err)
	}
	if post.AuthorID != viewerID {
		return ErrForbidden
	}

	if err := s.posts.Delete(ctx, postID); err != nil {
		err = translate("delete post", err)
		if !isServiceError(err) {
			l.Error().Err(err).Uint(pkglog.FieldPostID, postID).Msg("failed to delete post")
		}
		return err
	}

	audit.Log(ctx, audit.ActionDeletePost, viewerID, viewerID, "post deleted")
	return nil
}

// AddComment stores a comment by viewerID on a post the viewer can see.
func (s *postService) AddComment(ctx context.Context, viewerID string, postID uint, content string) (*domain.Comment, error) {
	l := pkglog.Ctx(ctx)

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, invalidArgument("comment content is required")
	}

	post, err := s.visiblePost(ctx, viewerID, postID)
	if err != nil {
		return nil, err
	}
	if post.CommentsDisabled {
		return nil, ErrForbidden
	}

	comment := &domain.Comment{PostID: postID, AuthorID: viewerID, Content: content}
	if err := s.posts.CreateComment(ctx, comment); err != nil {
		err = translate("add comment", err)
		if !isServiceError(err) {
			l.Error().Err(err).Uint(pkglog.FieldPostID, postID).Msg("failed to add comment")
		}
		return nil, err
	}

	if author, err := s.users.GetByID(ctx, viewerID); err == nil {
		comment.Author = author.Summary()
	}
	audit.Log(ctx, audit.ActionComment, viewerID, post.AuthorID, "comment added")
	return comment, nil
}

// ListComments pages the comments of a post the viewer can see, oldest
// first. Comments by users in a block relationship with the viewer are
// left out.
func (s *postService) ListComments(ctx context.Context, viewerID string, postID uint, page, limit int) (*domain.CommentPage, error) {
	l := pkglog.Ctx(ctx)

	if _, err := s.visiblePost(ctx, viewerID, postID); err != nil {
		return nil, err
	}

	excluded, err := s.graph.ExcludedUserIDs(ctx, viewerID)
	if err != nil {
		l.Error().Err(err).Msg("failed to load excluded users")
		return nil, &StorageError{Op: "list comments", Err: err}
	}

	page, limit, offset := s.paging.normalize(page, limit)
	comments, total, err := s.posts.ListComments(ctx, postID, excluded, offset, limit)
	if err != nil {
		l.Error().Err(err).Uint(pkglog.FieldPostID, postID).Msg("failed to list comments")
		return nil, &StorageError{Op: "list comments", Err: err}
	}

	ids := make([]string, 0, len(comments))
	for _, c := range comments {
		ids = append(ids, c.AuthorID)
	}
	authors, err := s.users.GetByIDs(ctx, ids)
	if err != nil {
		return nil, &StorageError{Op: "list comments", Err: err}
	}
	for i := range comments {
		if author, ok := authors[comments[i].AuthorID]; ok {
			comments[i].Author = author.Summary()
		}
	}

	return &domain.CommentPage{
		Data:       comments,
		TotalCount: total,
		TotalPages: domain.TotalPages(total, limit),
		Page:       page,
		Limit:      limit,
	}, nil
}

// DeleteComment removes commentID from postID when the viewer wrote the
// comment or authored the post.
func (s *postService) DeleteComment(ctx context.Context, viewerID string, postID, commentID uint) error {
	l := pkglog.Ctx(ctx)

	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return translate("load post", err)
	}
	comment, err := s.posts.GetComment(ctx, postID, commentID)
	if err != nil {
		return translate("load comment", err)
	}
	if viewerID != comment.AuthorID && viewerID != post.AuthorID {
		return ErrForbidden
	}

	if err := s.posts.DeleteComment(ctx, postID, commentID); err != nil {
		err = translate("delete comment", err)
		if !isServiceError(err) {
			l.Error().Err(err).Uint(pkglog.FieldPostID, postID).Msg("failed to delete comment")
		}
		return err
	}

	audit.Log(ctx, audit.ActionDeleteComment, viewerID, comment.AuthorID, "comment deleted")
	return nil
}

var _ PostService = (*postService)(nil)
