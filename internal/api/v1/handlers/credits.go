package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"media-notes/internal/api/middleware"
	"media-notes/internal/api/v1/dto"
	"media-notes/internal/api/v1/services"
)

type CreditHandler struct {
	service services.CreditService
}

func NewCreditHandler(service services.CreditService) *CreditHandler {
	return &CreditHandler{service: service}
}

// Get handles GET /api/v1/credits
//
// @Summary Current balance and recent credit changes
// @Tags credits
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.CreditsResponse "Balance"
// @Router /credits [get]
func (h *CreditHandler) Get(c *gin.Context) {
	accountID, ok := accountID(c)
	if !ok {
		return
	}

	response, err := h.service.GetCredits(c.Request.Context(), accountID)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, response)
}

// TopUp handles POST /api/v1/credits/topups
//
// @Summary Apply a completed payment
// @Description Called by the payment provider. Requires the X-Webhook-Secret header.
// @Tags credits
// @Accept json
// @Produce json
// @Param topup body dto.TopUpRequest true "Purchased units"
// @Success 200 {object} dto.TopUpResponse "Credits granted"
// @Failure 403 {object} errors.APIError "Invalid webhook secret"
// @Failure 404 {object} errors.APIError "Account not found"
// @Router /credits/topups [post]
func (h *CreditHandler) TopUp(c *gin.Context) {
	var req dto.TopUpRequest
	if err := middleware.ValidateRequest(c, &req); err != nil {
		middleware.HandleError(c, err)
		return
	}

	response, err := h.service.TopUp(c.Request.Context(), req)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, response)
}
