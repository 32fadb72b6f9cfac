package config

import "fmt"

type CacheKeyStruct struct{}

// SessionKey returns the cache key for an exam session.
func (r *CacheKeyStruct) SessionKey(sessionID string) string {
	return fmt.Sprintf("session:%s", sessionID)
}

// PoolKey returns the cache key for a generated question pool.
func (r *CacheKeyStruct) PoolKey(poolID string) string {
	return fmt.Sprintf("pool:%s", poolID)
}

// GenerationJobKey returns the cache key for a generation job's status.
func (r *CacheKeyStruct) GenerationJobKey(jobID string) string {
	return fmt.Sprintf("genjob:%s", jobID)
}

// GenerationEventsChannel returns the PubSub channel for a generation
// job's progress events.
func (r *CacheKeyStruct) GenerationEventsChannel(jobID string) string {
	return fmt.Sprintf("genjob:%s:events", jobID)
}

var CacheKey = &CacheKeyStruct{}
