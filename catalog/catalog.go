// Package catalog holds the static lookup tables of the Peerberry API:
// loan and transaction type identifiers, the sort-key maps that translate
// caller-facing sort names into the API's camel-cased keys, and the
// supported periodicities. Lookups fail with an error listing the valid
// alternatives so a caller never has to guess.
package catalog

import (
	"fmt"
	"sort"
	"strings"
)

const (
	// MaxLoanPageSize is the largest page the loan listing endpoint serves.
	MaxLoanPageSize = 40

	// MaxInvestmentPageSize is the largest page the investment listing
	// endpoint serves.
	MaxInvestmentPageSize = 40
)

// ProfitPeriodicities are the intervals accepted by the profit overview
// endpoint.
var ProfitPeriodicities = map[string]struct{}{
	"day":   {},
	"month": {},
	"year":  {},
}

// TransactionPeriodicities are the shortcut ranges accepted by the
// transaction listing endpoint.
var TransactionPeriodicities = map[string]struct{}{
	"today":     {},
	"thisWeek":  {},
	"thisMonth": {},
}

// LoanTypes maps caller-facing loan type names to the API's numeric IDs.
var LoanTypes = map[string]int{
	"short_term":  1,
	"long_term":   2,
	"real_estate": 3,
	"leasing":     4,
	"business":    5,
}

// TransactionTypes maps caller-facing transaction type names to the API's
// numeric IDs.
var TransactionTypes = map[string]int{
	"deposit":             1,
	"withdrawal":          2,
	"principal_repayment": 3,
	"interest_payment":    4,
	"investment":          11,
	"fees_and_bonuses":    16,
}

// LoanSortKeys maps sort names for the loan listing to API query keys.
var LoanSortKeys = map[string]string{
	"loan_id":       "loanId",
	"term":          "term",
	"issued_date":   "issuedDate",
	"interest_rate": "interestRate",
	"loan_amount":   "availableToInvest",
}

// CurrentInvestmentSortKeys maps sort names for current investments.
var CurrentInvestmentSortKeys = map[string]string{
	"purchase_date":                "dateOfPurchase",
	"interest_rate":                "interestRate",
	"loan_amount":                  "amount",
	"estimated_final_payment_date": "estimatedFinalPaymentDate",
}

// FinishedInvestmentSortKeys maps sort names for finished investments.
var FinishedInvestmentSortKeys = map[string]string{
	"final_payment_date":           "finishedAt",
	"purchase_date":                "dateOfPurchase",
	"interest_rate":                "interestRate",
	"loan_amount":                  "amount",
	"estimated_final_payment_date": "estimatedFinalPaymentDate",
}

// ExportSortColumns maps sort names for the investment export to the
// spreadsheet column headers the export ships with.
var ExportSortColumns = map[string]string{
	"date_of_purchase":                  "Date of purchase",
	"interest_rate":                     "Interest rate",
	"invested_amount":                   "Invested amount",
	"estimated_final_payment_date":      "Estimated final payment date",
	"estimated_next_principal_payment":  "Estimated next payment (principal)",
	"estimated_next_interest_payment":   "Estimated next payment (interest)",
	"term_until_estimated_payment_date": "Left term till estimated payment date",
	"received_payments":                 "Received payments",
	"last_received_payment_date":        "Last received payment date",
	"remaining_principal":               "Remaining principal",
	"status":                            "Status",
}

// TransactionSortColumns maps sort names for the transaction export to its
// spreadsheet column headers.
var TransactionSortColumns = map[string]string{
	"amount": "Amount",
}

// LoanType resolves a loan type name to its API ID.
func LoanType(name string) (int, error) {
	id, ok := LoanTypes[name]
	if !ok {
		return 0, fmt.Errorf("%q must be one of the following loan types: %s", name, keysOf(LoanTypes))
	}
	return id, nil
}

// TransactionType resolves a transaction type name to its API ID.
func TransactionType(name string) (int, error) {
	id, ok := TransactionTypes[name]
	if !ok {
		return 0, fmt.Errorf("%q must be one of the following transaction types: %s", name, keysOf(TransactionTypes))
	}
	return id, nil
}

// Names returns the sorted key set of any of the catalog maps, for error
// messages that enumerate valid values.
func Names[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func keysOf[V any](m map[string]V) string {
	return strings.Join(Names(m), ", ")
}
