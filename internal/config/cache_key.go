package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// DraftKey returns the cache key for a draft editing session.
func (r *CacheKeyStruct) DraftKey(draftID string) string {
	return fmt.Sprintf("draft:%s", draftID)
}

// UserDraftsKey returns the set key tracking a teacher's open drafts.
func (r *CacheKeyStruct) UserDraftsKey(telegramID int64) string {
	return fmt.Sprintf("user:%d:drafts", telegramID)
}

// AttemptKey returns the cache key for a student answer-sheet session.
func (r *CacheKeyStruct) AttemptKey(attemptID string) string {
	return fmt.Sprintf("attempt:%s", attemptID)
}

// StudentNameKey returns the cache key for a student's display name,
// carried from the code-login screen to the answering screen.
func (r *CacheKeyStruct) StudentNameKey(telegramID int64) string {
	return fmt.Sprintf("student:%d:name", telegramID)
}

// ExpiryScheduleKey is the sorted set of attempt IDs scored by their
// exam deadline (unix seconds). Consumed by the expiry worker.
func (r *CacheKeyStruct) ExpiryScheduleKey() string {
	return "attempts:expiry_schedule"
}

// BroadcastHistoryKey returns the cached broadcast history blob for an admin.
func (r *CacheKeyStruct) BroadcastHistoryKey(telegramID int64) string {
	return fmt.Sprintf("admin:%d:broadcast_history", telegramID)
}

// BroadcastWatchersKey is the set of admin Telegram IDs whose broadcast
// history the poller keeps fresh.
func (r *CacheKeyStruct) BroadcastWatchersKey() string {
	return "admin:broadcast_watchers"
}

// BroadcastFailureKey returns the list of background send/edit failures
// awaiting delivery to an admin on their next history fetch.
func (r *CacheKeyStruct) BroadcastFailureKey(telegramID int64) string {
	return fmt.Sprintf("admin:%d:broadcast_failures", telegramID)
}

var CacheKey = NewCacheKeyStruct()
