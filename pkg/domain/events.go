package domain

import (
	"strings"
	"time"
)

// EventType discriminates the wire records pushed to live clients.
type EventType string

const (
	EventTypeActivity EventType = "activity_update"
	EventTypeResult   EventType = "result"
)

// OriginOrchestrator is the agent name used for plan-level progress events.
const OriginOrchestrator = "orchestrator"

// TaskStatus is the status carried by a result event for async submissions.
type TaskStatus string

const (
	TaskStatusSuccess TaskStatus = "SUCCESS"
	TaskStatusFailure TaskStatus = "FAILURE"
)

// ProgressEvent is a transient, fire-and-forget activity notification.
// Timestamps are ISO-8601 strings on the wire.
type ProgressEvent struct {
	Type      EventType `json:"type"`
	Agent     string    `json:"agent"`
	Message   string    `json:"message"`
	IsError   bool      `json:"is_error"`
	Timestamp string    `json:"timestamp"`
}

// NewProgressEvent builds an activity event stamped with the current time.
func NewProgressEvent(agent, message string, isError bool) ProgressEvent {
	return ProgressEvent{
		Type:      EventTypeActivity,
		Agent:     agent,
		Message:   message,
		IsError:   isError,
		Timestamp: time.Now().Format(time.RFC3339),
	}
}

// ResultEvent is the reserved event delivering an async execution outcome.
type ResultEvent struct {
	Type      EventType         `json:"type"`
	TaskID    string            `json:"task_id"`
	Status    TaskStatus        `json:"status"`
	Result    *ExecutionOutcome `json:"result,omitempty"`
	Error     string            `json:"error,omitempty"`
	Timestamp string            `json:"timestamp"`
}

// Bus channel namespaces. Activity and result events travel on distinct
// channels, both suffixed with the client identifier.
const (
	activityPrefix = "agent_activity:"
	resultsPrefix  = "agent_results:"

	ActivityPattern = activityPrefix + "*"
	ResultsPattern  = resultsPrefix + "*"
)

// ActivityChannel returns the bus channel carrying activity events for a client.
func ActivityChannel(clientID string) string {
	return activityPrefix + clientID
}

// ResultsChannel returns the bus channel carrying result events for a client.
func ResultsChannel(clientID string) string {
	return resultsPrefix + clientID
}

// ClientFromChannel extracts the client identifier from a namespaced bus
// channel. The second return is false for channels outside both namespaces.
func ClientFromChannel(channel string) (string, bool) {
	for _, prefix := range []string{activityPrefix, resultsPrefix} {
		if strings.HasPrefix(channel, prefix) && len(channel) > len(prefix) {
			return channel[len(prefix):], true
		}
	}
	return "", false
}
