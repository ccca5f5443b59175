// Package pubsub publishes committed state changes (registrations, approvals, order
// creation and order status moves) as service.StateChangeEvent messages. Every provider
// uses the event's EntityID as the ordering key, so the events of one order or one
// account arrive in commit order.
package pubsub

import (
	"context"
	"log/slog"

	"marketplace/config"
	"marketplace/internal/domain/constants"
	"marketplace/internal/domain/service"
	"marketplace/internal/errors"

	"go.uber.org/fx"
)

// discardPublisher drops events when no provider is configured. Usecases treat
// publishing as best-effort, so running without a broker changes nothing they return.
type discardPublisher struct {
	logger *slog.Logger
}

func (p *discardPublisher) Publish(ctx context.Context, event *service.StateChangeEvent) error {
	p.logger.DebugContext(ctx, "State change not published, no provider configured",
		slog.String("event_type", string(event.Type)),
		slog.String("entity_id", event.EntityID),
	)

	return nil
}

func (p *discardPublisher) Close() error {
	return nil
}

// PublisherParams holds dependencies for EventPublisher, injected by Fx
type PublisherParams struct {
	fx.In

	Lc     fx.Lifecycle
	Ctx    context.Context
	Config *config.Config
	Logger *slog.Logger
}

// NewEventPublisher selects the state-change publisher from the pubsub config section:
// none, the local push emulator over HTTP, or a Google Pub/Sub topic with message
// ordering enabled. Configured publishers are closed on shutdown.
func NewEventPublisher(params PublisherParams) (service.EventPublisher, error) {
	cfg := params.Config.PubSub
	logger := params.Logger

	if cfg == nil || cfg.Provider == "" {
		logger.Info("PubSub not configured, state changes will not be published")

		return &discardPublisher{logger: logger}, nil
	}
	if err := validatePubSubConfig(cfg); err != nil {
		return nil, err
	}

	var (
		publisher service.EventPublisher
		err       error
	)
	switch cfg.Provider {
	case constants.PubSubProviderLocal:
		logger.Info("Publishing state changes to local push endpoint",
			slog.String("endpoint", cfg.LocalEndpoint),
		)
		publisher = NewLocalHTTPPublisher(cfg.LocalEndpoint, logger)

	case constants.PubSubProviderGoogle:
		logger.Info("Publishing state changes to Google Pub/Sub",
			slog.String("project_id", cfg.ProjectID),
			slog.String("topic_id", cfg.TopicID),
		)
		publisher, err = NewGooglePubSubPublisher(params.Ctx, cfg.ProjectID, cfg.TopicID, logger)
		if err != nil {
			return nil, err
		}
	}

	params.Lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			logger.Info("Closing state change publisher")

			return publisher.Close()
		},
	})

	return publisher, nil
}

func validatePubSubConfig(cfg *config.PubSubConfig) error {
	switch cfg.Provider {
	case constants.PubSubProviderLocal:
		if cfg.LocalEndpoint == "" {
			return errors.New("pubsub.localEndpoint is required for the local provider")
		}
	case constants.PubSubProviderGoogle:
		if cfg.ProjectID == "" || cfg.TopicID == "" {
			return errors.New("pubsub.projectId and pubsub.topicId are required for the google provider")
		}
	default:
		return errors.Errorf("unknown pubsub provider %q", cfg.Provider)
	}

	return nil
}
