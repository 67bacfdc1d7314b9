package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mnkvreels/vreels-backend/internal/domain"
	"github.com/mnkvreels/vreels-backend/internal/handler"
	"github.com/mnkvreels/vreels-backend/internal/repository"
	"github.com/mnkvreels/vreels-backend/internal/service"
	"github.com/mnkvreels/vreels-backend/internal/store"
	"github.com/mnkvreels/vreels-backend/internal/testutil"
	"github.com/mnkvreels/vreels-backend/pkg/jwt"
	"github.com/mnkvreels/vreels-backend/pkg/middleware"
)

type server struct {
	t      *testing.T
	router *gin.Engine
	tokens *jwt.Manager
}

func newServer(t *testing.T) *server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewDB(t)
	_, client := testutil.NewRedis(t)
	cache := store.NewRedisCountStoreFromClient(client, time.Minute)

	graph := repository.NewGormGraphRepository(db)
	users := repository.NewGormUserRepository(db)
	posts := repository.NewGormPostRepository(db)

	for id, account := range map[string]domain.AccountType{
		"alice": domain.AccountPublic,
		"bob":   domain.AccountPublic,
		"carol": domain.AccountPrivate,
	} {
		testutil.SeedUser(t, db, id, account)
	}

	tokens, err := jwt.NewManager("test-secret", "", time.Minute)
	require.NoError(t, err)

	h := handler.NewHandler(
		service.NewRelationshipManager(graph, cache, service.NopNotifier{}),
		service.NewProfileService(graph, users, cache, service.DefaultPaging),
		service.NewFeedService(graph, users, posts, service.DefaultPaging),
		service.NewPostService(graph, users, posts, service.DefaultPaging),
		middleware.NewAuthMiddleware(tokens),
	)
	r := gin.New()
	h.RegisterRoutes(r)

	return &server{t: t, router: r, tokens: tokens}
}

func (s *server) do(method, path, as string, body interface{}, roles ...string) (int, map[string]interface{}) {
	s.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if as != "" {
		token, _, err := s.tokens.GenerateAccessToken(as, as, roles)
		require.NoError(s.t, err)
		req.Header.Set(middleware.AuthHeaderKey, middleware.BearerPrefix+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var out map[string]interface{}
	if w.Body.Len() > 0 {
		require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return w.Code, out
}

func data(body map[string]interface{}) map[string]interface{} {
	d, _ := body["data"].(map[string]interface{})
	return d
}

func TestFollowLifecycle(t *testing.T) {
	s := newServer(t)

	code, _ := s.do(http.MethodPost, "/api/v1/users/bob/follow", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, body := s.do(http.MethodPost, "/api/v1/users/bob/follow", "alice", nil)
	assert.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "followed", data(body)["status"])

	code, body = s.do(http.MethodPost, "/api/v1/users/bob/follow", "alice", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "already_following", data(body)["status"])

	code, _ = s.do(http.MethodPost, "/api/v1/users/alice/follow", "alice", nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = s.do(http.MethodPost, "/api/v1/users/nobody/follow", "alice", nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, body = s.do(http.MethodGet, "/api/v1/users/bob/counts", "alice", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 1, data(body)["followers_count"])

	code, _ = s.do(http.MethodDelete, "/api/v1/users/bob/follow", "alice", nil)
	assert.Equal(t, http.StatusNoContent, code)
	code, _ = s.do(http.MethodDelete, "/api/v1/users/bob/follow", "alice", nil)
	assert.Equal(t, http.StatusConflict, code)
}

func TestPrivateAccountRequests(t *testing.T) {
	s := newServer(t)

	code, body := s.do(http.MethodPost, "/api/v1/users/carol/follow-request", "alice", nil)
	assert.Equal(t, http.StatusAccepted, code)
	assert.Equal(t, "requested", data(body)["status"])

	code, _ = s.do(http.MethodPost, "/api/v1/users/carol/follow", "alice", nil)
	assert.Equal(t, http.StatusConflict, code)

	code, body = s.do(http.MethodGet, "/api/v1/users/carol/profile", "alice", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, false, data(body)["full"])

	code, _ = s.do(http.MethodGet, "/api/v1/users/carol/counts", "alice", nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, body = s.do(http.MethodGet, "/api/v1/me/follow-requests", "carol", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Len(t, data(body)["data"], 1)

	code, _ = s.do(http.MethodPost, "/api/v1/me/follow-requests/alice/accept", "carol", nil)
	assert.Equal(t, http.StatusOK, code)
	code, _ = s.do(http.MethodPost, "/api/v1/me/follow-requests/alice/accept", "carol", nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, body = s.do(http.MethodGet, "/api/v1/users/carol/followers", "alice", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 1, data(body)["total_count"])
}

func TestPostsAndBlocks(t *testing.T) {
	s := newServer(t)

	code, body := s.do(http.MethodPost, "/api/v1/posts", "bob", map[string]interface{}{
		"content": "hello #World",
	})
	require.Equal(t, http.StatusCreated, code)
	postID := int(data(body)["id"].(float64))
	assert.Equal(t, []interface{}{"world"}, data(body)["hashtags"])

	code, _ = s.do(http.MethodPost, "/api/v1/posts", "bob", map[string]interface{}{"visibility": "secret"})
	assert.Equal(t, http.StatusBadRequest, code)

	postPath := fmt.Sprintf("/api/v1/posts/%d", postID)
	code, _ = s.do(http.MethodPost, postPath+"/like", "alice", nil)
	assert.Equal(t, http.StatusNoContent, code)

	code, body = s.do(http.MethodGet, postPath, "alice", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, data(body)["is_liked"])

	code, body = s.do(http.MethodGet, "/api/v1/feed?kind=hashtag&hashtag=world", "alice", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 1, data(body)["total_count"])

	code, _ = s.do(http.MethodGet, "/api/v1/feed?kind=bogus", "alice", nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = s.do(http.MethodPost, "/api/v1/users/alice/block", "bob", nil)
	assert.Equal(t, http.StatusCreated, code)
	code, _ = s.do(http.MethodPost, "/api/v1/users/alice/block", "bob", nil)
	assert.Equal(t, http.StatusOK, code)

	code, _ = s.do(http.MethodGet, postPath, "alice", nil)
	assert.Equal(t, http.StatusForbidden, code)
	code, _ = s.do(http.MethodGet, "/api/v1/users/bob/profile", "alice", nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, body = s.do(http.MethodGet, "/api/v1/me/blocks", "bob", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Len(t, data(body)["data"], 1)

	code, _ = s.do(http.MethodGet, "/api/v1/posts/abc", "alice", nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = s.do(http.MethodDelete, "/api/v1/users/alice/block", "bob", nil)
	assert.Equal(t, http.StatusNoContent, code)
	code, _ = s.do(http.MethodDelete, "/api/v1/users/alice/block", "bob", nil)
	assert.Equal(t, http.StatusConflict, code)
}

func TestAdminRecount(t *testing.T) {
	s := newServer(t)

	code, _ := s.do(http.MethodPost, "/api/v1/admin/users/bob/recount", "alice", nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, body := s.do(http.MethodPost, "/api/v1/admin/users/bob/recount", "alice", nil, middleware.RoleAdmin)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "bob", data(body)["user_id"])
}

func TestCommentsAndInteractionLists(t *testing.T) {
	s := newServer(t)

	code, body := s.do(http.MethodPost, "/api/v1/posts", "bob", map[string]interface{}{"content": "lunch"})
	require.Equal(t, http.StatusCreated, code)
	postPath := fmt.Sprintf("/api/v1/posts/%d", int(data(body)["id"].(float64)))

	code, _ = s.do(http.MethodPost, postPath+"/save", "alice", nil)
	assert.Equal(t, http.StatusNoContent, code)
	code, body = s.do(http.MethodGet, "/api/v1/me/saved-posts", "alice", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 1, data(body)["total_count"])
	code, body = s.do(http.MethodGet, "/api/v1/me/liked-posts", "alice", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 0, data(body)["total_count"])

	code, _ = s.do(http.MethodPost, postPath+"/comments", "alice", map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, code)
	code, body = s.do(http.MethodPost, postPath+"/comments", "alice", map[string]interface{}{"content": "looks good"})
	require.Equal(t, http.StatusCreated, code)
	commentPath := fmt.Sprintf("%s/comments/%d", postPath, int(data(body)["id"].(float64)))

	code, body = s.do(http.MethodGet, postPath+"/comments", "bob", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 1, data(body)["total_count"])
	assert.Len(t, data(body)["data"], 1)

	code, _ = s.do(http.MethodDelete, commentPath, "carol", nil)
	assert.Equal(t, http.StatusForbidden, code)
	code, _ = s.do(http.MethodDelete, commentPath, "bob", nil)
	assert.Equal(t, http.StatusNoContent, code)
	code, _ = s.do(http.MethodDelete, commentPath, "bob", nil)
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = s.do(http.MethodDelete, postPath+"/comments/x", "bob", nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = s.do(http.MethodDelete, postPath, "alice", nil)
	assert.Equal(t, http.StatusForbidden, code)
	code, _ = s.do(http.MethodDelete, postPath, "bob", nil)
	assert.Equal(t, http.StatusNoContent, code)
	code, _ = s.do(http.MethodGet, postPath, "bob", nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, body = s.do(http.MethodGet, "/api/v1/me/saved-posts", "alice", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 0, data(body)["total_count"])
}
