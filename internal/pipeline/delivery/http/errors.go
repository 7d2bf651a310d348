package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"golang-legal-news-pipeline/internal/pipeline/dto"
)

// errorJSON maps domain errors to HTTP status codes: bad input is the
// caller's fault, taxonomy conflicts are a 409, everything else is a 500.
func errorJSON(c echo.Context, err error) error {
	switch {
	case errors.Is(err, dto.ErrInvalidInput):
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, dto.ErrTopicConflict), errors.Is(err, dto.ErrStorageConflict):
		return c.JSON(http.StatusConflict, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, dto.ErrStorageUnavailable):
		return c.JSON(http.StatusServiceUnavailable, dto.ErrorResponse{Error: err.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
	}
}
