package handlers

import (
	"net/http"

	portssvc "github.com/SscSPs/banking_ledger/internal/core/ports/services"
	"github.com/SscSPs/banking_ledger/internal/dto"
	"github.com/SscSPs/banking_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// accountHandler handles HTTP requests related to accounts.
type accountHandler struct {
	accountService portssvc.AccountSvc
}

// registerAccountRoutes registers routes related to accounts.
func registerAccountRoutes(rg *gin.RouterGroup, accountService portssvc.AccountSvc) {
	h := &accountHandler{accountService: accountService}
	rg.POST("/accounts", h.openAccount)
}

// openAccount godoc
// @Summary Open an account
// @Description Creates an account with a zero balance
// @Tags accounts
// @Accept  json
// @Produce  json
// @Param   X-Tenant-Id header string false "Tenant override"
// @Param   account body dto.OpenAccountRequest true "Account details"
// @Success 201 {object} dto.AccountResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse "Account already exists"
// @Security BearerAuth
// @Router /ledger/accounts [post]
func (h *accountHandler) openAccount(c *gin.Context) {
	var req dto.OpenAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	account, err := h.accountService.OpenAccount(c.Request.Context(), req.ToCommand(middleware.ResolveTenant(c, req.TenantID)))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToAccountResponse(account))
}
