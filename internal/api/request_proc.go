package api

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/yakoovad/planner/internal/service"
)

// ProcessRequest runs steps against req in order and stops at the first error.
func ProcessRequest[T any](e echo.Context, req *T, steps ...func(echo.Context, *T) error) error {
	for _, step := range steps {
		if err := step(e, req); err != nil {
			return err
		}
	}
	return nil
}

func decodeRequest[T any](e echo.Context, req *T) *service.Error {
	err := ProcessRequest(e, req, bindBody[T], validateBody[T])

	var res *service.Error
	errors.As(err, &res)
	return res
}

func bindBody[T any](e echo.Context, req *T) error {
	if err := e.Bind(req); err != nil {
		return service.NewError(service.ErrorCodeInvalidBody, "invalid request body")
	}
	return nil
}

func validateBody[T any](e echo.Context, req *T) error {
	if err := e.Validate(req); err != nil {
		return service.NewError(service.ErrorCodeInvalidBody, errors.Wrap(err, "request validation failed").Error())
	}
	return nil
}
