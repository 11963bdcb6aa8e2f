package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/stemsi/skillcheck-backend/internal/config"
)

// Monitor event types.
const (
	EventSessionStarted  = "session_started"
	EventAnswerSubmitted = "answer_submitted"
	EventSessionFinished = "session_finished"
)

// MonitorEvent is one live-monitor notification, published per assessment.
type MonitorEvent struct {
	Type               string    `json:"type"`
	SessionID          int64     `json:"session_id"`
	AssessmentID       int64     `json:"assessment_id"`
	ExamineeIdentifier string    `json:"examinee_identifier,omitempty"`
	QuestionID         int64     `json:"question_id,omitempty"`
	TotalScore         int       `json:"total_score"`
	At                 time.Time `json:"at"`
}

// MonitorService fans session lifecycle events out to admin dashboards via
// Redis Pub/Sub, one channel per assessment. Publishing is best-effort:
// a failed publish never fails the request that produced the event.
type MonitorService struct {
	rdb *redis.Client
}

// NewMonitorService creates a new MonitorService.
func NewMonitorService(rdb *redis.Client) *MonitorService {
	return &MonitorService{rdb: rdb}
}

// Publish sends an event to the assessment's monitor channel.
func (s *MonitorService) Publish(ctx context.Context, ev MonitorEvent) {
	if s.rdb == nil {
		return
	}
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		log.Error().Err(err).Str("type", ev.Type).Msg("monitor event marshal failed")
		return
	}

	channel := config.CacheKey.AssessmentMonitorChannel(ev.AssessmentID)
	if err := s.rdb.Publish(ctx, channel, payload).Err(); err != nil {
		log.Warn().Err(err).Str("channel", channel).Msg("monitor publish failed")
	}
}

// Subscribe opens a subscription on the assessment's monitor channel. The
// caller owns the returned PubSub and must Close it.
func (s *MonitorService) Subscribe(ctx context.Context, assessmentID int64) *redis.PubSub {
	return s.rdb.Subscribe(ctx, config.CacheKey.AssessmentMonitorChannel(assessmentID))
}
