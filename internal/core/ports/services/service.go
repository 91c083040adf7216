package services

// ServiceContainer holds the service interfaces consumed by the transports.
type ServiceContainer struct {
	Accounts     AccountSvc
	Poster       JournalPosterSvc
	FastTransfer FastTransferSvc
	Query        LedgerQuerySvc
}
