package handler

import (
	"marketplace/internal/delivery/api/middleware"
	"marketplace/internal/domain/entity"
	domainerrors "marketplace/internal/domain/errors"
	"marketplace/internal/errors"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// bindAndValidate binds the request into req and runs the echo validator on it.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return errors.Wrap(domainerrors.ErrInvalidInput, "malformed request body")
	}

	return c.Validate(req)
}

func pathUUID(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, errors.Wrapf(domainerrors.ErrInvalidInput, "%s must be a UUID", name)
	}

	return id, nil
}

func actorOf(c echo.Context) (entity.Actor, error) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return entity.Actor{}, domainerrors.ErrUnauthenticated
	}

	return actor, nil
}
