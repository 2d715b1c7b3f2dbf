// handlers_policy.go - Upload policy handler
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/md2xlsx/webui/internal/intake"
	"github.com/md2xlsx/webui/internal/policy"
)

// PolicyResponse is the browser view of the upload policy. The thin client uses it
// to withhold the content of files the server would reject for size anyway.
type PolicyResponse struct {
	MaxFileSize      int64    `json:"maxFileSize"`
	MaxFileSizeHuman string   `json:"maxFileSizeHuman"`
	AllowedSuffixes  []string `json:"allowedSuffixes"`
	Endpoint         string   `json:"endpoint"`
}

// PolicyHandlerImpl implements the PolicyHandler interface
type PolicyHandlerImpl struct {
	policy policy.Policy
}

// NewPolicyHandler creates a new policy handler
func NewPolicyHandler(p policy.Policy) PolicyHandler {
	return &PolicyHandlerImpl{policy: p}
}

// HandleGetPolicy returns the active policy
func (h *PolicyHandlerImpl) HandleGetPolicy(c echo.Context) error {
	return c.JSON(http.StatusOK, PolicyResponse{
		MaxFileSize:      h.policy.MaxFileSize(),
		MaxFileSizeHuman: intake.FormatSize(h.policy.MaxFileSize()),
		AllowedSuffixes:  h.policy.Suffixes(),
		Endpoint:         h.policy.Endpoint(),
	})
}
