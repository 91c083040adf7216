package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/SscSPs/banking_ledger/internal/apperrors"
	portssvc "github.com/SscSPs/banking_ledger/internal/core/ports/services"
	"github.com/SscSPs/banking_ledger/internal/dto"
	"github.com/SscSPs/banking_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// ledgerHandler handles HTTP requests for postings, transfers and balances.
type ledgerHandler struct {
	poster portssvc.JournalPosterSvc
	fast   portssvc.FastTransferSvc
	query  portssvc.LedgerQuerySvc
}

func newLedgerHandler(services *portssvc.ServiceContainer) *ledgerHandler {
	return &ledgerHandler{
		poster: services.Poster,
		fast:   services.FastTransfer,
		query:  services.Query,
	}
}

// registerLedgerRoutes registers the posting, transfer and query routes on rg.
func registerLedgerRoutes(rg *gin.RouterGroup, services *portssvc.ServiceContainer) {
	h := newLedgerHandler(services)

	rg.POST("/entries", h.postEntry)
	rg.GET("/entries/:entryID", h.getEntry)
	rg.POST("/fast-transfer", h.fastTransfer)
	rg.GET("/accounts/:accountID/balance", h.getBalance)
	rg.GET("/accounts/:accountID/entries", h.listAccountEntries)
}

// postEntry godoc
// @Summary Post a journal entry
// @Description Posts a balanced multi-line journal entry in one serializable transaction
// @Tags ledger
// @Accept  json
// @Produce  json
// @Param   X-Tenant-Id header string false "Tenant override"
// @Param   entry body dto.PostJournalEntryRequest true "Journal entry"
// @Success 202 {object} dto.PostJournalEntryResponse
// @Success 200 {object} dto.PostJournalEntryResponse "Idempotent replay"
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /ledger/entries [post]
func (h *ledgerHandler) postEntry(c *gin.Context) {
	var req dto.PostJournalEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	tenant := middleware.ResolveTenant(c, req.TenantID)
	result, err := h.poster.Handle(c.Request.Context(), req.ToCommand(tenant))
	if err != nil {
		respondError(c, err)
		return
	}

	status := http.StatusAccepted
	if result.Duplicate {
		status = http.StatusOK
	}
	c.JSON(status, dto.ToPostJournalEntryResponse(result))
}

// getEntry godoc
// @Summary Get a journal entry
// @Description Retrieves a posted journal entry with its lines
// @Tags ledger
// @Produce  json
// @Param   X-Tenant-Id header string false "Tenant"
// @Param   entryID path string true "Journal entry ID"
// @Success 200 {object} dto.JournalEntryResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /ledger/entries/{entryID} [get]
func (h *ledgerHandler) getEntry(c *gin.Context) {
	tenant := middleware.ResolveTenant(c, c.Query("tenantId"))
	entry, err := h.query.GetJournalEntry(c.Request.Context(), tenant, c.Param("entryID"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToJournalEntryResponse(entry))
}

// fastTransfer godoc
// @Summary Fast transfer
// @Description Moves money between two accounts in a single store-side call. Safe to retry with the same idempotency key.
// @Tags ledger
// @Accept  json
// @Produce  json
// @Param   X-Tenant-Id header string false "Tenant override"
// @Param   transfer body dto.FastTransferRequest true "Transfer"
// @Success 200 {object} dto.FastTransferResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /ledger/fast-transfer [post]
func (h *ledgerHandler) fastTransfer(c *gin.Context) {
	var req dto.FastTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	tenant := middleware.ResolveTenant(c, req.TenantID)
	result, err := h.fast.Execute(c.Request.Context(), req.ToCommand(tenant))
	if err != nil {
		respondError(c, err)
		return
	}
	if result.Duplicate {
		middleware.GetLoggerFromContext(c).Info("Duplicate fast transfer", slog.String("idempotency_key", req.IdempotencyKey))
	}
	c.JSON(http.StatusOK, dto.ToFastTransferResponse(result))
}

// getBalance godoc
// @Summary Get account balance
// @Description Returns the balance of an account, from the cache when available
// @Tags ledger
// @Produce  json
// @Param   X-Tenant-Id header string false "Tenant"
// @Param   accountID path string true "Account ID"
// @Success 200 {object} dto.AccountBalanceResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /ledger/accounts/{accountID}/balance [get]
func (h *ledgerHandler) getBalance(c *gin.Context) {
	tenant := middleware.ResolveTenant(c, c.Query("tenantId"))
	view, err := h.query.GetBalance(c.Request.Context(), tenant, c.Param("accountID"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountBalanceResponse(view))
}

// listAccountEntries godoc
// @Summary List account entries
// @Description Lists posted journal entries touching an account, newest first
// @Tags ledger
// @Produce  json
// @Param   X-Tenant-Id header string false "Tenant"
// @Param   accountID path string true "Account ID"
// @Param   limit query int false "Page size (default 50, max 200)"
// @Param   pageToken query string false "Token from the previous page"
// @Success 200 {object} dto.JournalEntryPageResponse
// @Failure 400 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /ledger/accounts/{accountID}/entries [get]
func (h *ledgerHandler) listAccountEntries(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			respondError(c, apperrors.Validation("INVALID_LIMIT", "limit must be an integer"))
			return
		}
		limit = n
	}

	tenant := middleware.ResolveTenant(c, c.Query("tenantId"))
	page, err := h.query.ListAccountEntries(c.Request.Context(), tenant, c.Param("accountID"), limit, c.Query("pageToken"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToJournalEntryPageResponse(page))
}
