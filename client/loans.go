package client

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/peerberrygo/peerberry/catalog"
	"github.com/peerberrygo/peerberry/endpoints"
	"github.com/peerberrygo/peerberry/requester"
)

// LoanFilter narrows the loan listing. Nil pointer fields are omitted from
// the query; list fields use the API's bracketed-index encoding. Country,
// originator and loan type names are the display names from Countries,
// Originators and the catalog tables.
type LoanFilter struct {
	MaxRemainingTerm   *int
	MinRemainingTerm   *int
	MaxInterestRate    *decimal.Decimal
	MinInterestRate    *decimal.Decimal
	MaxAvailableAmount *decimal.Decimal
	MinAvailableAmount *decimal.Decimal
	Countries          []string
	Originators        []string
	LoanTypes          []string
	// Sort defaults to "loan_amount". Descending unless Ascending is set.
	Sort            string
	Ascending       bool
	GroupGuarantee  *bool
	ExcludeInvested *bool
}

// LoanPage is one page of the loan listing.
type LoanPage struct {
	Data  []map[string]any `json:"data"`
	Total int              `json:"total"`
}

// Loans fetches up to quantity investable loans starting at startPage,
// paging through the listing at the maximum page size and stopping early
// when a page comes back short (end of data).
func (c *Client) Loans(quantity, startPage int, filter LoanFilter) ([]map[string]any, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	pageSize := quantity
	if pageSize > catalog.MaxLoanPageSize {
		pageSize = catalog.MaxLoanPageSize
	}
	totalPages := (quantity + pageSize - 1) / pageSize

	var loans []map[string]any
	for pageIndex := 0; pageIndex < totalPages; pageIndex++ {
		page, err := c.LoansPage(startPage+pageIndex, pageSize, filter)
		if err != nil {
			return nil, err
		}
		if len(page.Data) == 0 {
			break
		}
		loans = append(loans, page.Data...)
		if len(page.Data) < pageSize {
			break
		}
	}

	if len(loans) > quantity {
		loans = loans[:quantity]
	}
	return loans, nil
}

// LoansPage fetches a single page of the loan listing. quantity is the
// page size, capped at catalog.MaxLoanPageSize; the page offset is
// pageNum*quantity.
func (c *Client) LoansPage(pageNum, quantity int, filter LoanFilter) (*LoanPage, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	if quantity > catalog.MaxLoanPageSize {
		return nil, fmt.Errorf("page size can be at most %d loans", catalog.MaxLoanPageSize)
	}

	sortName := filter.Sort
	if sortName == "" {
		sortName = "loan_amount"
	}
	sortKey, ok := catalog.LoanSortKeys[sortName]
	if !ok {
		return nil, &InvalidSortError{Sort: sortName, Valid: catalog.Names(catalog.LoanSortKeys)}
	}
	if !filter.Ascending {
		sortKey = "-" + sortKey
	}

	query := url.Values{}
	query.Set("sort", sortKey)
	query.Set("pageSize", strconv.Itoa(quantity))
	query.Set("offset", strconv.Itoa(quantity*pageNum))

	setInt(query, "maxRemainingTerm", filter.MaxRemainingTerm)
	setInt(query, "minRemainingTerm", filter.MinRemainingTerm)
	setDecimal(query, "maxInterestRate", filter.MaxInterestRate)
	setDecimal(query, "minInterestRate", filter.MinInterestRate)
	setDecimal(query, "maxRemainingAmount", filter.MaxAvailableAmount)
	setDecimal(query, "minRemainingAmount", filter.MinAvailableAmount)
	setBool(query, "groupGuarantee", filter.GroupGuarantee)
	setBool(query, "hideInvested", filter.ExcludeInvested)

	if len(filter.Countries) > 0 {
		ids, err := c.countryIDs(filter.Countries)
		if err != nil {
			return nil, err
		}
		requester.AddIndexed(query, "countryIds", ids)
	}
	if len(filter.Originators) > 0 {
		ids, err := c.originatorIDs(filter.Originators)
		if err != nil {
			return nil, err
		}
		requester.AddIndexed(query, "loanOriginators", ids)
	}
	if len(filter.LoanTypes) > 0 {
		ids, err := loanTypeIDs(filter.LoanTypes)
		if err != nil {
			return nil, err
		}
		requester.AddIndexed(query, "loanTermId", ids)
	}

	var page LoanPage
	if err := c.session.DoJSON(requester.Request{Path: endpoints.Loans, Query: query}, &page); err != nil {
		return nil, errors.Wrap(err, "[Client.LoansPage]")
	}
	return &page, nil
}

// LoanDetails is the full record of a single loan.
type LoanDetails struct {
	Borrower   json.RawMessage  `json:"borrower"`
	Loan       json.RawMessage  `json:"loan"`
	Originator json.RawMessage  `json:"originator"`
	Pledge     json.RawMessage  `json:"pledge"`
	Schedule   []map[string]any `json:"-"`
}

// LoanDetails returns the borrower data, loan data, originator, pledge and
// repayment schedule of one loan.
func (c *Client) LoanDetails(loanID int64) (*LoanDetails, error) {
	var resp struct {
		LoanDetails
		Schedule struct {
			Data []map[string]any `json:"data"`
		} `json:"schedule"`
	}
	path := fmt.Sprintf("%s/%d", endpoints.Loans, loanID)
	if err := c.session.DoJSON(requester.Request{Path: path}, &resp); err != nil {
		return nil, errors.Wrap(err, "[Client.LoanDetails]")
	}

	details := resp.LoanDetails
	details.Schedule = resp.Schedule.Data
	return &details, nil
}

// Agreement downloads the loan agreement document (only available for
// purchased loans). lang is an ISO language code, "en" when empty.
func (c *Client) Agreement(loanID int64, lang string) ([]byte, error) {
	if lang == "" {
		lang = "en"
	}
	query := url.Values{}
	query.Set("lang", lang)

	path := fmt.Sprintf("%s/%d/agreement", endpoints.InvestmentAgreements, loanID)
	document, err := c.session.Do(requester.Request{Path: path, Query: query})
	if err != nil {
		return nil, errors.Wrap(err, "[Client.Agreement]")
	}
	return document, nil
}

// PurchaseLoan places a purchase order for amount euros of the loan. A
// rejection for business reasons surfaces as ErrInsufficientFunds; the
// response carries the order (not transaction) ID.
func (c *Client) PurchaseLoan(loanID int64, amount decimal.Decimal) (map[string]any, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	form := url.Values{}
	form.Set("amount", amount.String())

	var order map[string]any
	err := c.session.DoJSON(requester.Request{
		Path:      fmt.Sprintf("%s/%d", endpoints.Loans, loanID),
		Method:    http.MethodPost,
		Form:      form,
		OnFailure: ErrInsufficientFunds,
	}, &order)
	if err != nil {
		return nil, errors.Wrap(err, "[Client.PurchaseLoan]")
	}
	return order, nil
}

func loanTypeIDs(names []string) ([]string, error) {
	ids := make([]string, 0, len(names))
	for _, name := range names {
		id, ok := catalog.LoanTypes[name]
		if !ok {
			return nil, &InvalidTypeError{Type: name, Valid: catalog.Names(catalog.LoanTypes)}
		}
		ids = append(ids, strconv.Itoa(id))
	}
	return ids, nil
}

func setInt(query url.Values, key string, value *int) {
	if value != nil {
		query.Set(key, strconv.Itoa(*value))
	}
}

func setDecimal(query url.Values, key string, value *decimal.Decimal) {
	if value != nil {
		query.Set(key, value.String())
	}
}

func setBool(query url.Values, key string, value *bool) {
	if value == nil {
		return
	}
	// The API expects 0/1, not true/false.
	if *value {
		query.Set(key, "1")
	} else {
		query.Set(key, "0")
	}
}
