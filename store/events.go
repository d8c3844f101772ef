// SPDX-License-Identifier: GPL-3.0-only

package store

import (
	"context"
	"usercred-server/commons"
	"usercred-server/models"
)

// RecordEvent appends to the audit trail. Failures are logged, not returned.
func (s *Store) RecordEvent(ctx context.Context, userID uint, eventType models.AuthEventType, description string, ip string) {
	event := models.EventLog{UserID: userID, Type: eventType}
	if description != "" {
		event.Description = &description
	}
	if ip != "" {
		event.IPAddress = &ip
	}
	if err := s.conn(ctx).Omit("User").Create(&event).Error; err != nil {
		commons.Logger.Errorf("Failed to record %s event: %v", eventType, err)
	}
}

func (s *Store) ListEvents(ctx context.Context, userID uint, limit int) ([]models.EventLog, error) {
	var events []models.EventLog
	err := s.conn(ctx).Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&events).Error
	return events, err
}
