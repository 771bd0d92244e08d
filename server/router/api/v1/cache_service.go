package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	apierrors "github.com/hrygo/agenda/server/internal/errors"
)

// PurgeCache drops the cached LLM replies of the configured model.
func (s *APIV1Service) PurgeCache(c echo.Context) error {
	if s.Extractor == nil {
		return apierrors.LLMUnavailable("LLM is not configured")
	}
	if err := s.Extractor.PurgeCache(c.Request().Context()); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
