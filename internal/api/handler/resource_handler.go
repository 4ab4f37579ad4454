package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ResourceHandler serves the sample resources behind each access level.
type ResourceHandler struct{}

func NewResourceHandler() *ResourceHandler {
	return &ResourceHandler{}
}

type resourceResponse struct {
	Message     string `json:"message"`
	AccessLevel string `json:"access_level"`
	Username    string `json:"username,omitempty"`
}

// Public is reachable without a token.
//
// @Summary      Public content
// @Tags         resources
// @Produce      json
// @Success      200  {object}  resourceResponse
// @Router       /api/test/all [get]
func (h *ResourceHandler) Public(c echo.Context) error {
	return c.JSON(http.StatusOK, resourceResponse{Message: "public content", AccessLevel: "public"})
}

// User requires ROLE_USER or ROLE_ADMIN.
//
// @Summary      User content
// @Tags         resources
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  resourceResponse
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /api/test/user [get]
func (h *ResourceHandler) User(c echo.Context) error {
	return h.gated(c, "user content", "user")
}

// Admin requires ROLE_ADMIN.
//
// @Summary      Admin panel
// @Tags         resources
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  resourceResponse
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /api/test/admin [get]
func (h *ResourceHandler) Admin(c echo.Context) error {
	return h.gated(c, "admin panel", "admin")
}

func (h *ResourceHandler) gated(c echo.Context, message, level string) error {
	claims, err := currentClaims(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resourceResponse{Message: message, AccessLevel: level, Username: claims.Subject})
}
