package pubsub

import (
	"encoding/json"
	"strings"
	"time"

	"marketplace/internal/domain/service"
	"marketplace/internal/errors"
)

// envelope is a state change encoded once for any transport.
type envelope struct {
	data        []byte
	attributes  map[string]string
	orderingKey string
}

// encodeEvent serializes the event and derives the routing attributes subscribers filter on:
// event_type, entity_kind ("order", "account", "role_profile"), entity_id, and when set
// account_id and request_id.
func encodeEvent(event *service.StateChangeEvent) (*envelope, error) {
	if event == nil || event.Type == "" || event.EntityID == "" {
		return nil, errors.New("state change event needs a type and an entity id")
	}

	data, err := json.Marshal(event)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode state change event")
	}

	attributes := map[string]string{
		"event_type":  string(event.Type),
		"entity_kind": entityKind(event.Type),
		"entity_id":   event.EntityID,
	}
	if event.AccountID != "" {
		attributes["account_id"] = event.AccountID
	}
	if event.RequestID != "" {
		attributes["request_id"] = event.RequestID
	}
	if !event.OccurredAt.IsZero() {
		attributes["occurred_at"] = event.OccurredAt.UTC().Format(time.RFC3339Nano)
	}

	return &envelope{data: data, attributes: attributes, orderingKey: event.EntityID}, nil
}

func entityKind(eventType service.EventType) string {
	kind, _, _ := strings.Cut(string(eventType), ".")

	return kind
}
