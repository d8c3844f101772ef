// SPDX-License-Identifier: GPL-3.0-only

package store

import (
	"context"
	"fmt"
	"time"
	"usercred-server/models"
)

func (s *Store) CreateSession(ctx context.Context, session *models.Session) error {
	if err := s.conn(ctx).Omit("User").Create(session).Error; err != nil {
		return fmt.Errorf("create session: %w", translate(err))
	}
	return nil
}

func (s *Store) FindSession(ctx context.Context, id uint, userID uint, token string) (*models.Session, error) {
	var session models.Session
	if err := s.conn(ctx).
		Where("id = ? AND user_id = ? AND token = ?", id, userID, token).
		First(&session).Error; err != nil {
		return nil, translate(err)
	}
	return &session, nil
}

func (s *Store) TouchSession(ctx context.Context, session *models.Session, at time.Time) error {
	session.LastUsedAt = &at
	return s.conn(ctx).Model(session).Update("last_used_at", at).Error
}

func (s *Store) DeleteSession(ctx context.Context, id uint) error {
	return s.conn(ctx).Unscoped().Delete(&models.Session{}, id).Error
}

// DeleteUserSessions removes every session of userID.
func (s *Store) DeleteUserSessions(ctx context.Context, userID uint) error {
	if err := s.conn(ctx).Unscoped().Where("user_id = ?", userID).Delete(&models.Session{}).Error; err != nil {
		return fmt.Errorf("delete sessions: %w", err)
	}
	return nil
}

func (s *Store) CountUserSessions(ctx context.Context, userID uint) (int64, error) {
	var total int64
	err := s.conn(ctx).Model(&models.Session{}).Where("user_id = ?", userID).Count(&total).Error
	return total, err
}

// ListUserSessions returns one page of userID's sessions, most recently used first.
func (s *Store) ListUserSessions(ctx context.Context, userID uint, limit, offset int) ([]models.Session, int64, error) {
	total, err := s.CountUserSessions(ctx, userID)
	if err != nil {
		return nil, 0, fmt.Errorf("count sessions: %w", err)
	}

	var sessions []models.Session
	if err := s.conn(ctx).Where("user_id = ?", userID).
		Order("last_used_at DESC, created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&sessions).Error; err != nil {
		return nil, 0, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, total, nil
}

// DeleteUserSession removes session id only when it belongs to userID.
func (s *Store) DeleteUserSession(ctx context.Context, userID, id uint) error {
	result := s.conn(ctx).Unscoped().Where("id = ? AND user_id = ?", id, userID).Delete(&models.Session{})
	if result.Error != nil {
		return fmt.Errorf("delete session: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteOtherSessions removes every session of userID except keepID.
func (s *Store) DeleteOtherSessions(ctx context.Context, userID, keepID uint) (int64, error) {
	result := s.conn(ctx).Unscoped().Where("user_id = ? AND id != ?", userID, keepID).Delete(&models.Session{})
	if result.Error != nil {
		return 0, fmt.Errorf("delete sessions: %w", result.Error)
	}
	return result.RowsAffected, nil
}
