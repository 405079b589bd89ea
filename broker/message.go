package broker

import (
	"fmt"
	"strings"
	"time"

	"github.com/mmdatafocus/sitesync/reportsync"
	"github.com/mmdatafocus/sitesync/utils"
)

// Message is the body of a change event. It names what changed, never the
// new state: handlers always re-read the source.
type Message struct {
	NaturalId string            `json:"naturalId"`
	Action    reportsync.Action `json:"action"`
	Timestamp time.Time         `json:"timestamp"`
}

func RoutingKey(entity string, action reportsync.Action) string {
	return entity + "." + string(action)
}

// ParseRoutingKey splits "{entity}.{action}".
func ParseRoutingKey(key string) (string, reportsync.Action, error) {
	i := strings.LastIndex(key, ".")
	if i <= 0 || i == len(key)-1 {
		return "", "", fmt.Errorf("malformed routing key %q", key)
	}
	action, err := reportsync.ParseAction(key[i+1:])
	if err != nil {
		return "", "", fmt.Errorf("routing key %q: %w", key, err)
	}
	return key[:i], action, nil
}

// DecodeMessage parses a body. A missing action falls back to the one in the
// routing key.
func DecodeMessage(body []byte, keyAction reportsync.Action) (Message, error) {
	var m Message
	if err := utils.UnmarshalFromJSON(body, &m); err != nil {
		return Message{}, fmt.Errorf("decode message: %w", err)
	}
	if strings.TrimSpace(m.NaturalId) == "" {
		return Message{}, fmt.Errorf("decode message: naturalId is required")
	}
	if m.Action == "" {
		m.Action = keyAction
	}
	if _, err := reportsync.ParseAction(string(m.Action)); err != nil {
		return Message{}, fmt.Errorf("decode message: %w", err)
	}
	return m, nil
}
