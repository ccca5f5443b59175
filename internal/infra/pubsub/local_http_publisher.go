package pubsub

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	deliverycontext "marketplace/internal/delivery/context"
	"marketplace/internal/domain/service"
	"marketplace/internal/errors"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
)

const (
	localSubscription   = "projects/local/subscriptions/state-changes-sub"
	localPublishTimeout = 10 * time.Second
	localPublishTries   = 3
	localRetryDelay     = 200 * time.Millisecond
)

// localHTTPPublisher pushes state changes to a development endpoint in the JSON shape
// Google Pub/Sub uses for push subscriptions. 5xx answers and transport errors are
// retried a few times; 4xx answers are not.
type localHTTPPublisher struct {
	endpoint   string
	httpClient *http.Client
	retryDelay time.Duration
	logger     *slog.Logger
}

// PubSubPushMessage is the push-subscription body the local endpoint receives.
type PubSubPushMessage struct {
	Message struct {
		Data        string            `json:"data"`
		Attributes  map[string]string `json:"attributes,omitempty"`
		MessageID   string            `json:"messageId"`
		PublishTime string            `json:"publishTime"`
		OrderingKey string            `json:"orderingKey,omitempty"`
	} `json:"message"`
	Subscription string `json:"subscription"`
}

// NewLocalHTTPPublisher creates the push-emulating publisher for local runs.
func NewLocalHTTPPublisher(endpoint string, logger *slog.Logger) service.EventPublisher {
	return &localHTTPPublisher{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: localPublishTimeout},
		retryDelay: localRetryDelay,
		logger:     logger,
	}
}

// Publish posts one push message per event.
func (p *localHTTPPublisher) Publish(ctx context.Context, event *service.StateChangeEvent) error {
	env, err := encodeEvent(event)
	if err != nil {
		return err
	}

	var push PubSubPushMessage
	push.Subscription = localSubscription
	push.Message.Data = base64.StdEncoding.EncodeToString(env.data)
	push.Message.Attributes = env.attributes
	push.Message.MessageID = uuid.NewString()
	push.Message.PublishTime = time.Now().UTC().Format(time.RFC3339)
	push.Message.OrderingKey = env.orderingKey

	body, err := json.Marshal(push)
	if err != nil {
		return errors.Wrap(err, "failed to encode push message")
	}

	_, err = backoff.Retry(ctx, func() (struct{}, error) {
		return struct{}{}, p.post(ctx, body, event.RequestID)
	},
		backoff.WithBackOff(backoff.NewConstantBackOff(p.retryDelay)),
		backoff.WithMaxTries(localPublishTries),
		backoff.WithMaxElapsedTime(0),
	)
	if err != nil {
		return err
	}

	p.logger.DebugContext(ctx, "State change pushed to local endpoint",
		slog.String("endpoint", p.endpoint),
		slog.String("event_type", string(event.Type)),
		slog.String("entity_id", event.EntityID),
	)

	return nil
}

func (p *localHTTPPublisher) post(ctx context.Context, body []byte, requestID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return backoff.Permanent(errors.Wrap(err, "failed to build push request"))
	}
	req.Header.Set("Content-Type", "application/json")
	if requestID != "" {
		req.Header.Set(deliverycontext.HeaderXRequestID, requestID)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "push request failed")
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= http.StatusInternalServerError:
		return errors.Errorf("event endpoint returned status %d", resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return backoff.Permanent(errors.Errorf("event endpoint rejected the event with status %d", resp.StatusCode))
	}

	return nil
}

// Close releases idle keep-alive connections.
func (p *localHTTPPublisher) Close() error {
	p.httpClient.CloseIdleConnections()

	return nil
}
