package services_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/SscSPs/banking_ledger/internal/apperrors"
	"github.com/SscSPs/banking_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/banking_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/banking_ledger/internal/core/ports/services"
	"github.com/SscSPs/banking_ledger/internal/core/services"
	"github.com/SscSPs/banking_ledger/internal/core/uow"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

var fixedNow = time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

func wallet(id string, minor int64) *domain.Account {
	acc, err := domain.NewAccount(domain.AccountID(id), "acme", "100"+id, "wallet "+id, domain.Liability, domain.NGN, fixedNow)
	if err != nil {
		panic(err)
	}
	balance, err := domain.NewMoneyFromMinor(minor, domain.NGN)
	if err != nil {
		panic(err)
	}
	if err := acc.RestoreBalance(balance); err != nil {
		panic(err)
	}
	return acc
}

func ngn(accountID string, major int64) portssvc.LineAmount {
	return portssvc.LineAmount{AccountID: accountID, Amount: decimal.NewFromInt(major), Currency: "NGN"}
}

func transferCmd(from, to string, major int64) portssvc.PostJournalEntryCommand {
	return portssvc.PostJournalEntryCommand{
		TenantID:  "acme",
		Reference: "ref-" + from + "-" + to,
		Narrative: "wallet transfer",
		Debits:    []portssvc.LineAmount{ngn(from, major)},
		Credits:   []portssvc.LineAmount{ngn(to, major)},
	}
}

type PostJournalEntryHandlerTestSuite struct {
	suite.Suite
	accounts    *MockAccountStore
	journals    *MockJournalRepository
	idempotency *MockIdempotencyStore
	outbox      *MockOutboxWriter
	cache       *MockBalanceCache
	uow         *fakeUnitOfWork
	logs        *bytes.Buffer
	handler     portssvc.JournalPosterSvc
	ctx         context.Context
}

func (s *PostJournalEntryHandlerTestSuite) SetupTest() {
	s.accounts = new(MockAccountStore)
	s.journals = new(MockJournalRepository)
	s.idempotency = new(MockIdempotencyStore)
	s.outbox = new(MockOutboxWriter)
	s.cache = new(MockBalanceCache)
	s.uow = &fakeUnitOfWork{stores: portsrepo.TxStores{
		Accounts:    s.accounts,
		Journals:    s.journals,
		Idempotency: s.idempotency,
		Outbox:      s.outbox,
	}}
	s.logs = new(bytes.Buffer)
	logger := slog.New(slog.NewTextHandler(s.logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	s.handler = services.NewPostJournalEntryHandler(s.uow,
		services.WithLogger(logger),
		services.WithBalanceCache(s.cache),
		services.WithClock(func() time.Time { return fixedNow }),
		services.WithRetryPolicy(uow.Policy{MaxAttempts: 3, BaseDelay: time.Millisecond}),
	)
	s.ctx = context.Background()
}

func TestPostJournalEntryHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(PostJournalEntryHandlerTestSuite))
}

func (s *PostJournalEntryHandlerTestSuite) expectWrites() {
	s.accounts.On("SaveBatch", mock.Anything, mock.Anything).Return(nil)
	s.journals.On("Save", mock.Anything, mock.MatchedBy(func(e *domain.JournalEntry) bool {
		return e.Status == domain.Posted
	})).Return(nil)
	s.outbox.On("Append", mock.Anything, mock.MatchedBy(func(m *domain.OutboxMessage) bool {
		return m.Topic == domain.TopicJournalEntryPosted
	})).Return(nil)
}

func (s *PostJournalEntryHandlerTestSuite) TestPostsSimpleTransfer() {
	a, b := wallet("A", 10000), wallet("B", 0)
	s.accounts.On("GetBatch", mock.Anything, domain.TenantID("acme"), []domain.AccountID{"A", "B"}).
		Return(map[domain.AccountID]*domain.Account{"A": a, "B": b}, nil)
	s.expectWrites()
	s.cache.On("Invalidate", mock.Anything, domain.TenantID("acme"), []domain.AccountID{"A", "B"}).Return(nil)

	result, err := s.handler.Handle(s.ctx, transferCmd("A", "B", 15))

	s.Require().NoError(err)
	s.False(result.Duplicate)
	s.Require().NotNil(result.EntryID)
	s.Equal(*result.EntryID, result.Entry.ID)
	s.Equal(domain.Posted, result.Entry.Status)
	s.Equal(int64(1500), result.Entry.TotalDebits().MinorUnits())
	s.Equal(int64(8500), a.Balance().MinorUnits())
	s.Equal(int64(1500), b.Balance().MinorUnits())
	s.Equal(1, s.uow.commits)
	s.Equal(3, s.uow.requestedMax)
	s.accounts.AssertExpectations(s.T())
	s.journals.AssertExpectations(s.T())
	s.outbox.AssertExpectations(s.T())
	s.cache.AssertExpectations(s.T())
	s.idempotency.AssertNotCalled(s.T(), "CheckAndMark", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *PostJournalEntryHandlerTestSuite) TestPostsMultiLegEntryAndSavesEveryAccount() {
	cmd := portssvc.PostJournalEntryCommand{
		TenantID:  "acme",
		Narrative: "split payout",
		Debits:    []portssvc.LineAmount{ngn("A", 30)},
		Credits:   []portssvc.LineAmount{ngn("B", 10), ngn("C", 20)},
	}
	s.accounts.On("GetBatch", mock.Anything, domain.TenantID("acme"), []domain.AccountID{"A", "B", "C"}).
		Return(map[domain.AccountID]*domain.Account{"A": wallet("A", 5000), "B": wallet("B", 0), "C": wallet("C", 0)}, nil)
	s.accounts.On("SaveBatch", mock.Anything, mock.MatchedBy(func(accs []*domain.Account) bool {
		return len(accs) == 3 && accs[0].Balance().MinorUnits() == 2000
	})).Return(nil)
	s.journals.On("Save", mock.Anything, mock.Anything).Return(nil)
	s.outbox.On("Append", mock.Anything, mock.Anything).Return(nil)
	s.cache.On("Invalidate", mock.Anything, domain.TenantID("acme"), []domain.AccountID{"A", "B", "C"}).Return(nil)

	result, err := s.handler.Handle(s.ctx, cmd)

	s.Require().NoError(err)
	s.Len(result.Entry.Lines(), 3)
	s.Equal(result.Entry.ID.String(), result.Entry.Reference, "missing reference defaults to the entry id")
	s.accounts.AssertExpectations(s.T())
}

func (s *PostJournalEntryHandlerTestSuite) TestNetsLegsOnTheSameAccount() {
	src, a, fee := wallet("SRC", 10000), wallet("A", 0), wallet("FEE", 0)
	cmd := portssvc.PostJournalEntryCommand{
		TenantID:  "acme",
		Narrative: "payout less fee",
		Debits:    []portssvc.LineAmount{ngn("SRC", 100), ngn("A", 30)},
		Credits:   []portssvc.LineAmount{ngn("A", 100), ngn("FEE", 30)},
	}
	s.accounts.On("GetBatch", mock.Anything, domain.TenantID("acme"), []domain.AccountID{"SRC", "A", "FEE"}).
		Return(map[domain.AccountID]*domain.Account{"SRC": src, "A": a, "FEE": fee}, nil)
	s.expectWrites()
	s.cache.On("Invalidate", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	_, err := s.handler.Handle(s.ctx, cmd)

	s.Require().NoError(err)
	s.Equal(int64(0), src.Balance().MinorUnits())
	s.Equal(int64(7000), a.Balance().MinorUnits())
	s.Equal(int64(3000), fee.Balance().MinorUnits())
	s.Equal(a.LoadedVersion()+1, a.Version, "netted legs bump the version once")
}

func (s *PostJournalEntryHandlerTestSuite) TestNetOverdraftStillRejected() {
	cmd := portssvc.PostJournalEntryCommand{
		TenantID:  "acme",
		Narrative: "fee larger than payout",
		Debits:    []portssvc.LineAmount{ngn("SRC", 100), ngn("A", 130)},
		Credits:   []portssvc.LineAmount{ngn("A", 100), ngn("FEE", 130)},
	}
	s.accounts.On("GetBatch", mock.Anything, mock.Anything, mock.Anything).
		Return(map[domain.AccountID]*domain.Account{"SRC": wallet("SRC", 10000), "A": wallet("A", 0), "FEE": wallet("FEE", 0)}, nil)

	_, err := s.handler.Handle(s.ctx, cmd)

	s.ErrorIs(err, domain.ErrInsufficientBalance)
	s.Equal("INSUFFICIENT_FUNDS", apperrors.CodeOf(err))
	s.accounts.AssertNotCalled(s.T(), "SaveBatch", mock.Anything, mock.Anything)
}

func (s *PostJournalEntryHandlerTestSuite) TestRecordsIdempotencyKey() {
	cmd := transferCmd("A", "B", 10)
	cmd.IdempotencyKey = "req-1"
	s.idempotency.On("CheckAndMark", mock.Anything, domain.TenantID("acme"), domain.IdempotencyKey("req-1"), fixedNow).Return(false, nil)
	s.accounts.On("GetBatch", mock.Anything, mock.Anything, mock.Anything).
		Return(map[domain.AccountID]*domain.Account{"A": wallet("A", 1000), "B": wallet("B", 0)}, nil)
	s.expectWrites()
	s.idempotency.On("Record", mock.Anything, domain.TenantID("acme"), domain.IdempotencyKey("req-1"), mock.AnythingOfType("domain.EntityID")).Return(nil)
	s.cache.On("Invalidate", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	result, err := s.handler.Handle(s.ctx, cmd)

	s.Require().NoError(err)
	s.False(result.Duplicate)
	s.idempotency.AssertExpectations(s.T())
}

func (s *PostJournalEntryHandlerTestSuite) TestDuplicateKeyReplaysWithoutWrites() {
	cmd := transferCmd("A", "B", 10)
	cmd.IdempotencyKey = "req-1"
	prior := domain.EntityID("je-prior")
	s.idempotency.On("CheckAndMark", mock.Anything, domain.TenantID("acme"), domain.IdempotencyKey("req-1"), fixedNow).Return(true, nil)
	s.idempotency.On("Lookup", mock.Anything, domain.TenantID("acme"), domain.IdempotencyKey("req-1")).
		Return(&domain.IdempotencyRecord{TenantID: "acme", Key: "req-1", EntryID: &prior}, nil)

	result, err := s.handler.Handle(s.ctx, cmd)

	s.Require().NoError(err)
	s.True(result.Duplicate)
	s.Require().NotNil(result.EntryID)
	s.Equal(prior, *result.EntryID)
	s.Nil(result.Entry)
	s.accounts.AssertNotCalled(s.T(), "GetBatch", mock.Anything, mock.Anything, mock.Anything)
	s.outbox.AssertNotCalled(s.T(), "Append", mock.Anything, mock.Anything)
	s.cache.AssertNotCalled(s.T(), "Invalidate", mock.Anything, mock.Anything, mock.Anything)
}

func (s *PostJournalEntryHandlerTestSuite) TestMissingAccountIsNotFound() {
	s.accounts.On("GetBatch", mock.Anything, mock.Anything, mock.Anything).
		Return(map[domain.AccountID]*domain.Account{"A": wallet("A", 1000)}, nil)

	_, err := s.handler.Handle(s.ctx, transferCmd("A", "B", 5))

	s.Equal(apperrors.KindNotFound, apperrors.KindOf(err))
	s.Equal("ACCOUNT_NOT_FOUND", apperrors.CodeOf(err))
	s.accounts.AssertNotCalled(s.T(), "SaveBatch", mock.Anything, mock.Anything)
	s.Equal(0, s.uow.commits)
}

func (s *PostJournalEntryHandlerTestSuite) TestDomainFailuresAbortBeforeWrites() {
	tests := []struct {
		name     string
		source   func() *domain.Account
		sentinel error
		code     string
	}{
		{
			name:     "insufficient funds",
			source:   func() *domain.Account { return wallet("A", 1000) },
			sentinel: domain.ErrInsufficientBalance,
			code:     "INSUFFICIENT_FUNDS",
		},
		{
			name: "inactive source",
			source: func() *domain.Account {
				a := wallet("A", 100000)
				a.IsActive = false
				return a
			},
			sentinel: domain.ErrInactiveAccount,
			code:     "ACCOUNT_INACTIVE",
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.SetupTest()
			s.accounts.On("GetBatch", mock.Anything, mock.Anything, mock.Anything).
				Return(map[domain.AccountID]*domain.Account{"A": tt.source(), "B": wallet("B", 0)}, nil)

			_, err := s.handler.Handle(s.ctx, transferCmd("A", "B", 15))

			s.ErrorIs(err, tt.sentinel)
			s.Equal(apperrors.KindDomainConflict, apperrors.KindOf(err))
			s.Equal(tt.code, apperrors.CodeOf(err))
			s.accounts.AssertNotCalled(s.T(), "SaveBatch", mock.Anything, mock.Anything)
			s.journals.AssertNotCalled(s.T(), "Save", mock.Anything, mock.Anything)
		})
	}
}

func (s *PostJournalEntryHandlerTestSuite) TestAccountCurrencyMismatch() {
	usd, err := domain.NewAccount("U", "acme", "1", "usd wallet", domain.Liability, domain.USD, fixedNow)
	s.Require().NoError(err)
	s.accounts.On("GetBatch", mock.Anything, mock.Anything, mock.Anything).
		Return(map[domain.AccountID]*domain.Account{"A": wallet("A", 10000), "U": usd}, nil)

	_, err = s.handler.Handle(s.ctx, transferCmd("A", "U", 1))

	s.ErrorIs(err, domain.ErrCurrencyMismatch)
	s.Equal(apperrors.KindValidation, apperrors.KindOf(err))
}

func (s *PostJournalEntryHandlerTestSuite) TestValidationHappensBeforeAnyTransaction() {
	tests := []struct {
		name string
		cmd  func() portssvc.PostJournalEntryCommand
		code string
	}{
		{
			name: "empty narrative",
			cmd: func() portssvc.PostJournalEntryCommand {
				c := transferCmd("A", "B", 1)
				c.Narrative = "  "
				return c
			},
			code: "NARRATION_REQUIRED",
		},
		{
			name: "malformed tenant",
			cmd: func() portssvc.PostJournalEntryCommand {
				c := transferCmd("A", "B", 1)
				c.TenantID = "acme bank"
				return c
			},
			code: "INVALID_TENANT_ID",
		},
		{
			name: "no credits",
			cmd: func() portssvc.PostJournalEntryCommand {
				c := transferCmd("A", "B", 1)
				c.Credits = nil
				return c
			},
			code: "TOO_FEW_LINES",
		},
		{
			name: "zero amount",
			cmd:  func() portssvc.PostJournalEntryCommand { return transferCmd("A", "B", 0) },
			code: "NON_POSITIVE_AMOUNT",
		},
		{
			name: "negative amount",
			cmd:  func() portssvc.PostJournalEntryCommand { return transferCmd("A", "B", -5) },
			code: "NON_POSITIVE_AMOUNT",
		},
		{
			name: "unsupported currency",
			cmd: func() portssvc.PostJournalEntryCommand {
				c := transferCmd("A", "B", 1)
				c.Debits[0].Currency = "JPY"
				return c
			},
			code: "UNSUPPORTED_CURRENCY",
		},
		{
			name: "mixed currencies",
			cmd: func() portssvc.PostJournalEntryCommand {
				c := transferCmd("A", "B", 1)
				c.Credits[0].Currency = "USD"
				return c
			},
			code: "CURRENCY_MISMATCH",
		},
		{
			name: "unbalanced",
			cmd: func() portssvc.PostJournalEntryCommand {
				c := transferCmd("A", "B", 15)
				c.Credits[0].Amount = decimal.NewFromInt(14)
				return c
			},
			code: "UNBALANCED_ENTRY",
		},
		{
			name: "malformed account id",
			cmd:  func() portssvc.PostJournalEntryCommand { return transferCmd("A/1", "B", 1) },
			code: "INVALID_ACCOUNT_ID",
		},
		{
			name: "idempotency key too long",
			cmd: func() portssvc.PostJournalEntryCommand {
				c := transferCmd("A", "B", 1)
				c.IdempotencyKey = strings.Repeat("k", 256)
				return c
			},
			code: "INVALID_IDEMPOTENCY_KEY",
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.SetupTest()

			result, err := s.handler.Handle(s.ctx, tt.cmd())

			s.Nil(result)
			s.Equal(apperrors.KindValidation, apperrors.KindOf(err))
			s.Equal(tt.code, apperrors.CodeOf(err))
			s.False(apperrors.IsRetriable(err))
			s.Equal(0, s.uow.attempts, "no transaction may start for an invalid command")
		})
	}
}

func (s *PostJournalEntryHandlerTestSuite) TestRetriesSerializationConflictThenCommits() {
	s.uow.commitConflicts = 1
	s.accounts.On("GetBatch", mock.Anything, mock.Anything, mock.Anything).
		Return(func() map[domain.AccountID]*domain.Account {
			return map[domain.AccountID]*domain.Account{"A": wallet("A", 10000), "B": wallet("B", 0)}
		}, nil)
	s.expectWrites()
	s.cache.On("Invalidate", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	result, err := s.handler.Handle(s.ctx, transferCmd("A", "B", 15))

	s.Require().NoError(err)
	s.Equal(2, s.uow.attempts)
	s.Equal(1, s.uow.commits)
	s.Equal(int64(1500), result.Entry.TotalDebits().MinorUnits())
	s.accounts.AssertNumberOfCalls(s.T(), "GetBatch", 2)
	s.cache.AssertNumberOfCalls(s.T(), "Invalidate", 1)
}

func (s *PostJournalEntryHandlerTestSuite) TestRetriesExhausted() {
	s.uow.commitConflicts = 10
	s.accounts.On("GetBatch", mock.Anything, mock.Anything, mock.Anything).
		Return(func() map[domain.AccountID]*domain.Account {
			return map[domain.AccountID]*domain.Account{"A": wallet("A", 10000), "B": wallet("B", 0)}
		}, nil)
	s.expectWrites()

	_, err := s.handler.Handle(s.ctx, transferCmd("A", "B", 15))

	s.ErrorIs(err, apperrors.ErrRetriesExhausted)
	s.Equal("RETRIES_EXHAUSTED", apperrors.CodeOf(err))
	s.Equal(3, s.uow.attempts)
	s.Equal(0, s.uow.commits)
	s.cache.AssertNotCalled(s.T(), "Invalidate", mock.Anything, mock.Anything, mock.Anything)
	s.Contains(s.logs.String(), "Failed to post journal entry")
}

func (s *PostJournalEntryHandlerTestSuite) TestCacheInvalidationFailureIsLoggedNotReturned() {
	s.accounts.On("GetBatch", mock.Anything, mock.Anything, mock.Anything).
		Return(map[domain.AccountID]*domain.Account{"A": wallet("A", 10000), "B": wallet("B", 0)}, nil)
	s.expectWrites()
	s.cache.On("Invalidate", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("redis: connection refused"))

	result, err := s.handler.Handle(s.ctx, transferCmd("A", "B", 15))

	s.Require().NoError(err)
	s.NotNil(result.Entry)
	s.Contains(s.logs.String(), "Failed to invalidate cached balances")
	s.Contains(s.logs.String(), "connection refused")
}

func (s *PostJournalEntryHandlerTestSuite) TestStoreFailureRollsBack() {
	s.accounts.On("GetBatch", mock.Anything, mock.Anything, mock.Anything).
		Return(map[domain.AccountID]*domain.Account{"A": wallet("A", 10000), "B": wallet("B", 0)}, nil)
	s.accounts.On("SaveBatch", mock.Anything, mock.Anything).Return(nil)
	s.journals.On("Save", mock.Anything, mock.Anything).
		Return(apperrors.DomainConflict("DUPLICATE_REFERENCE", "reference already used"))

	_, err := s.handler.Handle(s.ctx, transferCmd("A", "B", 15))

	s.Equal("DUPLICATE_REFERENCE", apperrors.CodeOf(err))
	s.Equal(0, s.uow.commits)
	s.outbox.AssertNotCalled(s.T(), "Append", mock.Anything, mock.Anything)
}
