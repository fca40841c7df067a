package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"marketplace-service/internal/middleware"
	"marketplace-service/internal/model"
	"marketplace-service/internal/role"
	"marketplace-service/pkg/database"
	"marketplace-service/pkg/logger"
)

// UpdateMyProfile lets a user change their own business name. Tier and banned
// flag are admin-only mutations.
func UpdateMyProfile(c echo.Context) error {
	log := logger.FromContext(c)

	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	var req struct {
		BusinessName string `json:"business_name"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}

	result := database.GetDB().Model(&model.Profile{}).
		Where("id = ?", actor.ID).
		Update("business_name", req.BusinessName)
	if result.Error != nil {
		log.Error("Failed to update profile", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update profile"})
	}
	if result.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "profile not found"})
	}

	log.Info("Profile updated", zap.Uint("user_id", actor.ID))
	return c.JSON(http.StatusOK, echo.Map{"message": "profile updated"})
}

// SetProfileTier changes a profile's tier. Admin only; this is the privileged
// correction path for account placement in the hierarchy.
func SetProfileTier(c echo.Context) error {
	log := logger.FromContext(c)

	actor, ok := middleware.ActorFromContext(c)
	if !ok || !actor.IsAdmin() {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "admin access required"})
	}

	id, err := parseID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid profile id"})
	}

	var req struct {
		Tier string `json:"tier"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}

	tier := role.Tier(req.Tier)
	switch tier {
	case role.TierAdmin, role.TierImporter, role.TierWholesaler, role.TierRetailer, role.TierCustomer:
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unrecognized tier"})
	}

	result := database.GetDB().Model(&model.Profile{}).Where("id = ?", id).Update("tier", tier)
	if result.Error != nil {
		log.Error("Failed to update tier", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update tier"})
	}
	if result.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "profile not found"})
	}

	log.Info("Profile tier updated",
		zap.Uint("profile_id", id),
		zap.String("tier", string(tier)),
		zap.Uint("admin_id", actor.ID))
	return c.JSON(http.StatusOK, echo.Map{"message": "tier updated"})
}

// SetProfileBan sets or clears a profile's banned flag. Admin only. Banned
// callers are rejected at the auth boundary on their next request.
func SetProfileBan(c echo.Context) error {
	log := logger.FromContext(c)

	actor, ok := middleware.ActorFromContext(c)
	if !ok || !actor.IsAdmin() {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "admin access required"})
	}

	id, err := parseID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid profile id"})
	}

	var req struct {
		Banned bool `json:"banned"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}

	result := database.GetDB().Model(&model.Profile{}).Where("id = ?", id).Update("banned", req.Banned)
	if result.Error != nil {
		log.Error("Failed to update ban flag", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update ban flag"})
	}
	if result.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "profile not found"})
	}

	log.Info("Profile ban flag updated",
		zap.Uint("profile_id", id),
		zap.Bool("banned", req.Banned),
		zap.Uint("admin_id", actor.ID))
	return c.JSON(http.StatusOK, echo.Map{"message": "ban flag updated"})
}
