// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"log/slog"
	"strings"
	"time"

	deliverycontext "marketplace/internal/delivery/context"
	domainerrors "marketplace/internal/domain/errors"
	"marketplace/internal/domain/lifecycle"
	"marketplace/internal/domain/repository"
	"marketplace/internal/domain/service"
	"marketplace/internal/errors"

	"github.com/go-playground/validator/v10"
)

// inputValidator checks usecase DTOs and reports failures as InvalidInput.
type inputValidator struct {
	validate *validator.Validate
}

func newInputValidator() *inputValidator {
	return &inputValidator{validate: validator.New(validator.WithRequiredStructEnabled())}
}

func (v *inputValidator) check(input any) error {
	err := v.validate.Struct(input)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return errors.Wrap(domainerrors.ErrInvalidInput, err.Error())
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fieldMessage(fe))
	}

	return errors.Wrap(domainerrors.ErrInvalidInput, strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "e164":
		return field + " must be an E.164 phone number"
	case "oneof":
		return field + " must be one of: " + fe.Param()
	case "min", "gte":
		return field + " must be at least " + fe.Param()
	case "max":
		return field + " must be at most " + fe.Param()
	default:
		return field + " is invalid"
	}
}

// surfaceError returns caller-recoverable errors unchanged. Anything else is logged with
// the request correlation id and replaced by a generic internal error.
func surfaceError(ctx context.Context, logger *slog.Logger, operation string, err error) error {
	if err == nil || domainerrors.IsCallerRecoverable(err) {
		return err
	}
	if errors.Is(err, repository.ErrTxConflict) {
		logger.Warn("Transaction lost to a concurrent writer",
			slog.String("operation", operation),
			slog.String("request_id", deliverycontext.GetRequestIDFromContext(ctx)),
			slog.Any("error", err),
		)

		return domainerrors.ErrConcurrentUpdate
	}

	logger.Error("Operation failed with an internal error",
		slog.String("operation", operation),
		slog.String("request_id", deliverycontext.GetRequestIDFromContext(ctx)),
		slog.Any("error", err),
		slog.Any("cause", errors.Cause(err)),
	)

	return domainerrors.ErrInternal
}

// publishEvent sends a state change after commit. Failures are logged and never
// change the outcome of the committed operation.
func publishEvent(ctx context.Context, publisher service.EventPublisher, logger *slog.Logger, event *service.StateChangeEvent) {
	if publisher == nil {
		return
	}

	event.RequestID = deliverycontext.GetRequestIDFromContext(ctx)
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	publishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), lifecycle.DefaultTimeout)
	defer cancel()

	if err := publisher.Publish(publishCtx, event); err != nil {
		logger.Warn("Failed to publish state change event",
			slog.String("event_type", string(event.Type)),
			slog.String("entity_id", event.EntityID),
			slog.Any("error", err),
		)
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
