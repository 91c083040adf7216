package services

import (
	"context"
	"log/slog"

	"github.com/SscSPs/banking_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/banking_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/banking_ledger/internal/core/ports/services"
	"github.com/SscSPs/banking_ledger/internal/utils/pagination"
	"go.opentelemetry.io/otel/attribute"
)

type ledgerQueryService struct {
	BaseService
	accounts portsrepo.AccountReader
	journals portsrepo.JournalReader
	cfg      serviceConfig
}

// NewLedgerQueryService creates the read-side service. Balances are served from
// the cache when present and from the database otherwise.
func NewLedgerQueryService(accounts portsrepo.AccountReader, journals portsrepo.JournalReader, options ...ServiceOption) portssvc.LedgerQuerySvc {
	cfg := newServiceConfig(options)
	return &ledgerQueryService{
		BaseService: BaseService{Logger: cfg.logger},
		accounts:    accounts,
		journals:    journals,
		cfg:         cfg,
	}
}

var _ portssvc.LedgerQuerySvc = (*ledgerQueryService)(nil)

func (s *ledgerQueryService) GetBalance(ctx context.Context, tenantID, accountID string) (*portssvc.BalanceView, error) {
	ctx, span := tracer.Start(ctx, "GetBalance")
	defer span.End()

	tenant, err := domain.NewTenantID(tenantID)
	if err != nil {
		return nil, err
	}
	id, err := domain.NewAccountID(accountID)
	if err != nil {
		return nil, err
	}

	if view := s.cachedBalance(ctx, tenant, id); view != nil {
		span.SetAttributes(attribute.String("ledger.balance_source", string(view.Source)))
		return view, nil
	}

	account, err := s.accounts.FindAccountByID(ctx, tenant, id)
	if err != nil {
		return nil, err
	}
	balance := account.Balance()
	s.fillCache(ctx, tenant, account)

	span.SetAttributes(attribute.String("ledger.balance_source", string(portssvc.SourceDatabase)))
	return &portssvc.BalanceView{AccountID: id, Balance: balance, Source: portssvc.SourceDatabase}, nil
}

// fillCache stores the balance read from account. The read holds no lock, so a
// posting may commit and invalidate the key between the read and the Set; the
// version is re-read afterwards and the fill is dropped if it moved.
func (s *ledgerQueryService) fillCache(ctx context.Context, tenant domain.TenantID, account *domain.Account) {
	if s.cfg.cache == nil {
		return
	}
	balance := account.Balance()
	entry := portsrepo.CachedBalance{
		AccountID:   account.ID,
		AmountMinor: balance.MinorUnits(),
		Currency:    balance.Currency(),
		Version:     account.Version,
		CachedAt:    s.cfg.now(),
	}
	if err := s.cfg.cache.Set(ctx, tenant, entry); err != nil {
		s.LogWarn(ctx, err, "Failed to cache balance", slog.String("account_id", account.ID.String()))
		return
	}

	current, err := s.accounts.FindAccountByID(ctx, tenant, account.ID)
	if err == nil && current.Version == account.Version {
		return
	}
	if err := s.cfg.cache.Invalidate(ctx, tenant, account.ID); err != nil {
		s.LogWarn(ctx, err, "Failed to drop stale cached balance", slog.String("account_id", account.ID.String()))
	}
}

// cachedBalance returns nil on a miss or any cache failure.
func (s *ledgerQueryService) cachedBalance(ctx context.Context, tenant domain.TenantID, id domain.AccountID) *portssvc.BalanceView {
	if s.cfg.cache == nil {
		return nil
	}
	cached, err := s.cfg.cache.Get(ctx, tenant, id)
	if err != nil {
		s.LogWarn(ctx, err, "Balance cache read failed, using database", slog.String("account_id", id.String()))
		return nil
	}
	if cached == nil {
		return nil
	}
	balance, err := domain.NewMoneyFromMinor(cached.AmountMinor, cached.Currency)
	if err != nil {
		s.LogWarn(ctx, err, "Discarding unreadable cached balance", slog.String("account_id", id.String()))
		return nil
	}
	return &portssvc.BalanceView{AccountID: id, Balance: balance, Source: portssvc.SourceCache}
}

func (s *ledgerQueryService) GetJournalEntry(ctx context.Context, tenantID, entryID string) (*domain.JournalEntry, error) {
	tenant, err := domain.NewTenantID(tenantID)
	if err != nil {
		return nil, err
	}
	id, err := domain.NewEntityID(entryID)
	if err != nil {
		return nil, err
	}
	return s.journals.FindByID(ctx, tenant, id)
}

// ListAccountEntries returns posted entries touching accountID, newest first.
// An empty NextPageToken marks the last page.
func (s *ledgerQueryService) ListAccountEntries(ctx context.Context, tenantID, accountID string, limit int, pageToken string) (*portssvc.EntryPage, error) {
	ctx, span := tracer.Start(ctx, "ListAccountEntries")
	defer span.End()

	tenant, err := domain.NewTenantID(tenantID)
	if err != nil {
		return nil, err
	}
	id, err := domain.NewAccountID(accountID)
	if err != nil {
		return nil, err
	}
	limit = pagination.ClampLimit(limit)

	var after *portsrepo.EntryCursor
	if pageToken != "" {
		cursor, err := pagination.DecodeToken(pageToken)
		if err != nil {
			return nil, err
		}
		after = &portsrepo.EntryCursor{PostedAt: cursor.PostedAt, EntryID: domain.EntityID(cursor.ID)}
	}

	entries, err := s.journals.ListByAccount(ctx, tenant, id, limit+1, after)
	if err != nil {
		return nil, err
	}

	page := &portssvc.EntryPage{Entries: entries}
	if len(entries) > limit {
		page.Entries = entries[:limit]
		last := page.Entries[limit-1]
		if last.PostedAt != nil {
			page.NextPageToken = pagination.EncodeToken(pagination.Cursor{PostedAt: *last.PostedAt, ID: last.ID.String()})
		}
	}
	span.SetAttributes(attribute.Int("ledger.page_size", len(page.Entries)))
	return page, nil
}
