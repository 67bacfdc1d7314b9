package repository

import (
	"context"

	"github.com/mnkvreels/vreels-backend/internal/domain"
)

// Facts loads every edge, request and block between viewer and owner with
// one query per table.
func (r *GormGraphRepository) Facts(ctx context.Context, viewerID, ownerID string) (domain.RelationshipFacts, error) {
	var facts domain.RelationshipFacts
	db := r.db.WithContext(ctx)

	var follows []domain.FollowModel
	if err := db.Where("(follower_id = ? AND following_id = ?) OR (follower_id = ? AND following_id = ?)",
		viewerID, ownerID, ownerID, viewerID).Find(&follows).Error; err != nil {
		return facts, err
	}
	for _, f := range follows {
		if f.FollowerID == viewerID {
			facts.ViewerFollowsOwner = true
		} else {
			facts.OwnerFollowsViewer = true
		}
	}

	var requests []domain.FollowRequestModel
	if err := db.Where("(requester_id = ? AND target_id = ?) OR (requester_id = ? AND target_id = ?)",
		viewerID, ownerID, ownerID, viewerID).Find(&requests).Error; err != nil {
		return facts, err
	}
	for _, q := range requests {
		if q.RequesterID == viewerID {
			facts.ViewerRequested = true
		} else {
			facts.OwnerRequested = true
		}
	}

	var blocks []domain.BlockModel
	if err := db.Where("(blocker_id = ? AND blocked_id = ?) OR (blocker_id = ? AND blocked_id = ?)",
		viewerID, ownerID, ownerID, viewerID).Find(&blocks).Error; err != nil {
		return facts, err
	}
	for _, b := range blocks {
		if b.BlockerID == viewerID {
			facts.ViewerBlocksOwner = true
		} else {
			facts.OwnerBlocksViewer = true
		}
	}

	return facts, nil
}

// ExcludedUserIDs returns the users blocked by, or blocking, viewerID.
func (r *GormGraphRepository) ExcludedUserIDs(ctx context.Context, viewerID string) ([]string, error) {
	var blocks []domain.BlockModel
	err := r.db.WithContext(ctx).
		Where("blocker_id = ? OR blocked_id = ?", viewerID, viewerID).
		Find(&blocks).Error
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(blocks))
	ids := make([]string, 0, len(blocks))
	for _, b := range blocks {
		other := b.BlockedID
		if other == viewerID {
			other = b.BlockerID
		}
		if _, ok := seen[other]; ok {
			continue
		}
		seen[other] = struct{}{}
		ids = append(ids, other)
	}
	return ids, nil
}

// BatchIsFollowing checks if followerID follows each of the targetIDs.
func (r *GormGraphRepository) BatchIsFollowing(ctx context.Context, followerID string, targetIDs []string) (map[string]bool, error) {
	result := make(map[string]bool, len(targetIDs))
	for _, id := range targetIDs {
		result[id] = false
	}
	if len(targetIDs) == 0 {
		return result, nil
	}

	var ids []string
	err := r.db.WithContext(ctx).Model(&domain.FollowModel{}).
		Where("follower_id = ? AND following_id IN ?", followerID, targetIDs).
		Pluck("following_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		result[id] = true
	}
	return result, nil
}

// BatchIsRequested checks if requesterID has a pending request to each target.
func (r *GormGraphRepository) BatchIsRequested(ctx context.Context, requesterID string, targetIDs []string) (map[string]bool, error) {
	result := make(map[string]bool, len(targetIDs))
	for _, id := range targetIDs {
		result[id] = false
	}
	if len(targetIDs) == 0 {
		return result, nil
	}

	var ids []string
	err := r.db.WithContext(ctx).Model(&domain.FollowRequestModel{}).
		Where("requester_id = ? AND target_id IN ?", requesterID, targetIDs).
		Pluck("target_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		result[id] = true
	}
	return result, nil
}

// FriendsOfFriends returns users followed by someone viewerID follows,
// excluding viewerID and anyone viewerID already follows, mapped to the
// number of distinct followees that lead to them.
func (r *GormGraphRepository) FriendsOfFriends(ctx context.Context, viewerID string) (map[string]int, error) {
	var rows []struct {
		UserID string
		Mutual int
	}
	err := r.db.WithContext(ctx).Raw(`
		SELECT f2.following_id AS user_id, COUNT(DISTINCT f1.following_id) AS mutual
		FROM follows f1
		JOIN follows f2 ON f2.follower_id = f1.following_id
		WHERE f1.follower_id = ?
		  AND f2.following_id <> ?
		  AND f2.following_id NOT IN (SELECT following_id FROM follows WHERE follower_id = ?)
		GROUP BY f2.following_id`,
		viewerID, viewerID, viewerID,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make(map[string]int, len(rows))
	for _, row := range rows {
		out[row.UserID] = row.Mutual
	}
	return out, nil
}

// UnreciprocatedFollowers returns users who follow viewerID but are not
// followed back.
func (r *GormGraphRepository) UnreciprocatedFollowers(ctx context.Context, viewerID string) ([]string, error) {
	db := r.db.WithContext(ctx)
	followed := db.Model(&domain.FollowModel{}).Select("following_id").Where("follower_id = ?", viewerID)

	var ids []string
	err := db.Model(&domain.FollowModel{}).
		Where("following_id = ? AND follower_id NOT IN (?)", viewerID, followed).
		Pluck("follower_id", &ids).Error
	return ids, err
}

func (r *GormGraphRepository) NeighborIDs(ctx context.Context, userID string) ([]string, error) {
	var edges []domain.FollowModel
	err := r.db.WithContext(ctx).
		Where("follower_id = ? OR following_id = ?", userID, userID).
		Find(&edges).Error
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(edges))
	ids := make([]string, 0, len(edges))
	for _, e := range edges {
		other := e.FollowingID
		if other == userID {
			other = e.FollowerID
		}
		if _, ok := seen[other]; ok {
			continue
		}
		seen[other] = struct{}{}
		ids = append(ids, other)
	}
	return ids, nil
}

func (r *GormGraphRepository) listEdgeUsers(ctx context.Context, joinCol, whereCol, userID string, offset, limit int) ([]domain.User, int64, error) {
	db := r.db.WithContext(ctx)

	var total int64
	if err := db.Model(&domain.FollowModel{}).Where(whereCol+" = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if total == 0 || offset >= int(total) {
		return []domain.User{}, total, nil
	}

	var models []domain.UserModel
	err := db.Model(&domain.UserModel{}).
		Joins("JOIN follows ON follows."+joinCol+" = users.id").
		Where("follows."+whereCol+" = ?", userID).
		Order("follows.created_at DESC").Order("follows.id DESC").
		Offset(offset).Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, 0, err
	}

	users := make([]domain.User, 0, len(models))
	for i := range models {
		users = append(users, *models[i].ToDomain())
	}
	return users, total, nil
}

// ListFollowers lists users following userID, newest edge first.
func (r *GormGraphRepository) ListFollowers(ctx context.Context, userID string, offset, limit int) ([]domain.User, int64, error) {
	return r.listEdgeUsers(ctx, "follower_id", "following_id", userID, offset, limit)
}

// ListFollowing lists users userID follows, newest edge first.
func (r *GormGraphRepository) ListFollowing(ctx context.Context, userID string, offset, limit int) ([]domain.User, int64, error) {
	return r.listEdgeUsers(ctx, "following_id", "follower_id", userID, offset, limit)
}

func (r *GormGraphRepository) ListIncomingRequests(ctx context.Context, targetID string) ([]domain.FollowRequest, error) {
	var reqs []domain.FollowRequestModel
	db := r.db.WithContext(ctx)
	if err := db.Where("target_id = ?", targetID).Order("created_at DESC").Order("id DESC").Find(&reqs).Error; err != nil {
		return nil, err
	}
	if len(reqs) == 0 {
		return []domain.FollowRequest{}, nil
	}

	ids := make([]string, 0, len(reqs))
	for _, q := range reqs {
		ids = append(ids, q.RequesterID)
	}
	users, err := loadUsers(db, ids)
	if err != nil {
		return nil, err
	}

	out := make([]domain.FollowRequest, 0, len(reqs))
	for _, q := range reqs {
		u, ok := users[q.RequesterID]
		if !ok {
			continue
		}
		out = append(out, domain.FollowRequest{Requester: u.Summary(), CreatedAt: q.CreatedAt})
	}
	return out, nil
}

func (r *GormGraphRepository) ListBlocked(ctx context.Context, blockerID string) ([]domain.UserSummary, error) {
	var models []domain.UserModel
	err := r.db.WithContext(ctx).Model(&domain.UserModel{}).
		Joins("JOIN blocked_users ON blocked_users.blocked_id = users.id").
		Where("blocked_users.blocker_id = ?", blockerID).
		Order("blocked_users.created_at DESC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	out := make([]domain.UserSummary, 0, len(models))
	for i := range models {
		out = append(out, models[i].ToDomain().Summary())
	}
	return out, nil
}
