package handler

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"marketplace-service/internal/apperr"
)

// respondError maps an engine error onto the wire: the stable kind code plus a
// message, with the HTTP status derived from the kind.
func respondError(c echo.Context, log *zap.Logger, err error) error {
	kind := apperr.KindOf(err)
	if kind == apperr.KindInternal {
		log.Error("Request failed", zap.Error(err))
		return c.JSON(apperr.HTTPStatus(kind), echo.Map{
			"code":  kind,
			"error": "internal error",
		})
	}
	log.Warn("Request rejected", zap.String("code", string(kind)), zap.Error(err))
	return c.JSON(apperr.HTTPStatus(kind), echo.Map{
		"code":  kind,
		"error": err.Error(),
	})
}
