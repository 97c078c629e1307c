// Package endpoints holds the relative paths of every Peerberry investor
// API endpoint the client consumes. Paths are joined onto the session's
// base URL by the requester.
package endpoints

const (
	BaseURL = "https://api.peerberry.com"

	Login  = "/v1/investor/login"
	TFA    = "/v1/investor/login/2fa"
	Logout = "/v1/investor/logout"

	Overview       = "/v1/investor/overview"
	ProfitOverview = "/v1/investor/overview/profit"
	Loyalty        = "/v1/investor/loyalty"

	InvestmentStatus     = "/v2/investor/overview/investment_statuses/current"
	Investments          = "/v1/investor/investments"
	InvestmentsExport    = "/v1/investor/investments/export"
	InvestmentAgreements = "/v1/investments"

	Loans              = "/v1/loans"
	Transactions       = "/v2/investor/transactions"
	TransactionsExport = "/v2/investor/transactions/import"
	AccountSummary     = "/v2/investor/account-summary"

	Profile = "/v1/investor/profile"
	Globals = "/v1/globals"
)
