package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// BlueprintKey returns the cache key for a question bank's blueprint
func (r *CacheKeyStruct) BlueprintKey(questionBankID int64) string {
	return fmt.Sprintf("blueprint:%d", questionBankID)
}

// AssessmentMonitorChannel returns the Redis PubSub channel name for an
// assessment's live session monitor
func (r *CacheKeyStruct) AssessmentMonitorChannel(assessmentID int64) string {
	return fmt.Sprintf("assessment:%d:monitor", assessmentID)
}

var CacheKey = NewCacheKeyStruct()
