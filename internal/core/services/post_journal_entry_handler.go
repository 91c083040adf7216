package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SscSPs/banking_ledger/internal/apperrors"
	"github.com/SscSPs/banking_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/banking_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/banking_ledger/internal/core/ports/services"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const maxReferenceLength = 128

// postJournalEntryHandler posts balanced entries through the unit of work.
type postJournalEntryHandler struct {
	BaseService
	uow portsrepo.UnitOfWork
	cfg serviceConfig
}

// NewPostJournalEntryHandler creates the posting handler
func NewPostJournalEntryHandler(unitOfWork portsrepo.UnitOfWork, options ...ServiceOption) portssvc.JournalPosterSvc {
	cfg := newServiceConfig(options)
	return &postJournalEntryHandler{
		BaseService: BaseService{Logger: cfg.logger},
		uow:         unitOfWork,
		cfg:         cfg,
	}
}

var _ portssvc.JournalPosterSvc = (*postJournalEntryHandler)(nil)

type postingLine struct {
	accountID domain.AccountID
	lineType  domain.LineType
	amount    domain.Money
}

type validatedPosting struct {
	tenantID   domain.TenantID
	reference  string
	narrative  string
	key        *domain.IdempotencyKey
	lines      []postingLine
	accountIDs []domain.AccountID
}

// Handle validates cmd, then posts it in one serializable transaction.
// A replayed idempotency key returns the recorded entry id with Duplicate set.
func (h *postJournalEntryHandler) Handle(ctx context.Context, cmd portssvc.PostJournalEntryCommand) (*portssvc.PostJournalEntryResult, error) {
	ctx, span := tracer.Start(ctx, "PostJournalEntry")
	defer span.End()

	posting, err := validatePosting(cmd)
	if err != nil {
		h.LogDebug(ctx, "Rejected journal entry command", slog.String("error", err.Error()))
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(
		attribute.String("ledger.tenant_id", posting.tenantID.String()),
		attribute.Int("ledger.lines", len(posting.lines)),
	)

	entryID := domain.GenerateEntityID()
	if posting.reference == "" {
		posting.reference = entryID.String()
	}

	var result *portssvc.PostJournalEntryResult
	err = h.uow.ExecuteInTransaction(ctx, h.cfg.policy.MaxAttempts, func(ctx context.Context, stores portsrepo.TxStores) error {
		result = nil
		res, err := h.post(ctx, stores, posting, entryID)
		if err != nil {
			return err
		}
		result = res
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if apperrors.KindOf(err) == apperrors.KindInternal {
			h.LogError(ctx, err, "Failed to post journal entry",
				slog.String("tenant_id", posting.tenantID.String()),
				slog.String("reference", posting.reference))
		} else {
			h.LogInfo(ctx, "Journal entry rejected",
				slog.String("tenant_id", posting.tenantID.String()),
				slog.String("code", apperrors.CodeOf(err)))
		}
		return nil, err
	}

	if result.Duplicate {
		span.SetAttributes(attribute.Bool("ledger.duplicate", true))
		h.LogInfo(ctx, "Replayed idempotent journal entry",
			slog.String("tenant_id", posting.tenantID.String()),
			slog.String("idempotency_key", posting.key.String()))
		return result, nil
	}

	h.invalidateBalances(ctx, h.cfg.cache, posting.tenantID, result.Entry.AccountIDs()...)
	h.LogInfo(ctx, "Journal entry posted",
		slog.String("tenant_id", posting.tenantID.String()),
		slog.String("entry_id", result.Entry.ID.String()),
		slog.String("total", result.Entry.TotalDebits().String()))
	return result, nil
}

func (h *postJournalEntryHandler) post(ctx context.Context, stores portsrepo.TxStores, p validatedPosting, entryID domain.EntityID) (*portssvc.PostJournalEntryResult, error) {
	now := h.cfg.now()

	if p.key != nil {
		processed, err := stores.Idempotency.CheckAndMark(ctx, p.tenantID, *p.key, now)
		if err != nil {
			return nil, err
		}
		if processed {
			record, err := stores.Idempotency.Lookup(ctx, p.tenantID, *p.key)
			if err != nil {
				return nil, err
			}
			return &portssvc.PostJournalEntryResult{EntryID: record.EntryID, Duplicate: true}, nil
		}
	}

	accounts, err := stores.Accounts.GetBatch(ctx, p.tenantID, p.accountIDs)
	if err != nil {
		return nil, err
	}
	for _, id := range p.accountIDs {
		if _, ok := accounts[id]; !ok {
			return nil, apperrors.NotFound("ACCOUNT_NOT_FOUND", fmt.Sprintf("account %s not found", id))
		}
	}

	entry := domain.NewJournalEntry(entryID, p.tenantID, p.reference, p.narrative, now)
	net := make(map[domain.AccountID]domain.Money, len(p.accountIDs))
	for _, line := range p.lines {
		account := accounts[line.accountID]
		sum, ok := net[line.accountID]
		if !ok {
			sum = domain.Zero(account.Currency)
		}
		sum, err = sum.Add(account.DeltaFor(line.lineType, line.amount))
		if err != nil {
			return nil, fmt.Errorf("account %s: %w", line.accountID, err)
		}
		net[line.accountID] = sum
		if err := entry.AddLine(line.accountID, line.lineType, line.amount); err != nil {
			return nil, err
		}
	}
	// Legs on the same account are netted so the overdraft floor applies to the final balance.
	for _, id := range p.accountIDs {
		if err := accounts[id].ApplyNet(net[id]); err != nil {
			return nil, fmt.Errorf("account %s: %w", id, err)
		}
	}
	if err := entry.Post(now); err != nil {
		return nil, err
	}

	touched := make([]*domain.Account, 0, len(p.accountIDs))
	for _, id := range p.accountIDs {
		acc := accounts[id]
		acc.UpdatedAt = now
		touched = append(touched, acc)
	}
	if err := stores.Accounts.SaveBatch(ctx, touched); err != nil {
		return nil, err
	}
	if err := stores.Journals.Save(ctx, entry); err != nil {
		return nil, err
	}

	msg, err := domain.NewJournalEntryPostedMessage(entry)
	if err != nil {
		return nil, err
	}
	if err := stores.Outbox.Append(ctx, msg); err != nil {
		return nil, err
	}

	if p.key != nil {
		if err := stores.Idempotency.Record(ctx, p.tenantID, *p.key, entry.ID); err != nil {
			return nil, err
		}
	}

	id := entry.ID
	return &portssvc.PostJournalEntryResult{EntryID: &id, Entry: entry}, nil
}

// validatePosting runs every check that needs no storage.
func validatePosting(cmd portssvc.PostJournalEntryCommand) (validatedPosting, error) {
	var p validatedPosting

	tenantID, err := domain.NewTenantID(cmd.TenantID)
	if err != nil {
		return p, err
	}
	p.tenantID = tenantID

	p.narrative = strings.TrimSpace(cmd.Narrative)
	if p.narrative == "" {
		return p, apperrors.Validation("NARRATION_REQUIRED", "narrative is required")
	}
	p.reference = strings.TrimSpace(cmd.Reference)
	if len(p.reference) > maxReferenceLength {
		return p, apperrors.Validation("INVALID_REFERENCE", fmt.Sprintf("reference must be at most %d characters", maxReferenceLength))
	}

	if strings.TrimSpace(cmd.IdempotencyKey) != "" {
		key, err := domain.NewIdempotencyKey(cmd.IdempotencyKey)
		if err != nil {
			return p, err
		}
		p.key = &key
	}

	if len(cmd.Debits) == 0 || len(cmd.Credits) == 0 {
		return p, apperrors.Wrap(apperrors.KindValidation, "TOO_FEW_LINES", domain.ErrTooFewLines,
			"at least one debit and one credit are required")
	}

	p.lines = make([]postingLine, 0, len(cmd.Debits)+len(cmd.Credits))
	for _, side := range []struct {
		lineType domain.LineType
		amounts  []portssvc.LineAmount
	}{{domain.Debit, cmd.Debits}, {domain.Credit, cmd.Credits}} {
		for i, la := range side.amounts {
			line, err := parseLine(side.lineType, la)
			if err != nil {
				return p, fmt.Errorf("%s line %d: %w", strings.ToLower(string(side.lineType)), i+1, err)
			}
			p.lines = append(p.lines, line)
		}
	}

	currency := p.lines[0].amount.Currency()
	debits, credits := domain.Zero(currency), domain.Zero(currency)
	seen := make(map[domain.AccountID]struct{}, len(p.lines))
	for _, line := range p.lines {
		var err error
		if line.lineType == domain.Debit {
			debits, err = debits.Add(line.amount)
		} else {
			credits, err = credits.Add(line.amount)
		}
		if err != nil {
			return p, err
		}
		if _, ok := seen[line.accountID]; !ok {
			seen[line.accountID] = struct{}{}
			p.accountIDs = append(p.accountIDs, line.accountID)
		}
	}
	if !debits.Equal(credits) {
		return p, apperrors.Wrap(apperrors.KindValidation, "UNBALANCED_ENTRY", domain.ErrUnbalanced,
			fmt.Sprintf("debits %s do not equal credits %s", debits, credits))
	}
	return p, nil
}

func parseLine(lineType domain.LineType, la portssvc.LineAmount) (postingLine, error) {
	accountID, err := domain.NewAccountID(la.AccountID)
	if err != nil {
		return postingLine{}, err
	}
	currency, err := domain.ParseCurrency(la.Currency)
	if err != nil {
		return postingLine{}, err
	}
	amount, err := domain.NewMoney(la.Amount, currency)
	if err != nil {
		return postingLine{}, err
	}
	if !amount.IsPositive() {
		return postingLine{}, apperrors.Wrap(apperrors.KindValidation, "NON_POSITIVE_AMOUNT", domain.ErrNonPositiveAmount,
			fmt.Sprintf("amount %s must be positive", amount))
	}
	return postingLine{accountID: accountID, lineType: lineType, amount: amount}, nil
}
