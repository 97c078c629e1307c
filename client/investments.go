package client

import (
	"net/url"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/peerberrygo/peerberry/catalog"
	"github.com/peerberrygo/peerberry/endpoints"
	"github.com/peerberrygo/peerberry/requester"
	"github.com/peerberrygo/peerberry/spreadsheet"
)

// InvestmentFilter narrows the investment listing. The sort-key set
// depends on whether current or finished investments are requested.
type InvestmentFilter struct {
	MaxDateOfPurchase *time.Time
	MinDateOfPurchase *time.Time
	MaxInterestRate   *decimal.Decimal
	MinInterestRate   *decimal.Decimal
	MaxInvestedAmount *decimal.Decimal
	MinInvestedAmount *decimal.Decimal
	Countries         []string
	LoanTypes         []string
	// Sort defaults to "loan_amount". Descending unless Ascending is set.
	Sort      string
	Ascending bool
	// Finished selects closed investments instead of current ones.
	Finished bool
}

// Investments fetches up to quantity current or finished investments. For
// more than a few hundred investments MassInvestments is considerably
// faster and more detailed, at the cost of fewer filters.
func (c *Client) Investments(quantity, startPage int, filter InvestmentFilter) ([]map[string]any, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	sortKeys := catalog.CurrentInvestmentSortKeys
	if filter.Finished {
		sortKeys = catalog.FinishedInvestmentSortKeys
	}
	sortName := filter.Sort
	if sortName == "" {
		sortName = "loan_amount"
	}
	sortKey, ok := sortKeys[sortName]
	if !ok {
		return nil, &InvalidSortError{Sort: sortName, Valid: catalog.Names(sortKeys)}
	}
	if !filter.Ascending {
		sortKey = "-" + sortKey
	}

	query := url.Values{}
	query.Set("sort", sortKey)
	query.Set("pageSize", strconv.Itoa(quantity))
	query.Set("offset", strconv.Itoa(quantity*startPage))
	query.Set("type", investmentKind(filter.Finished))

	setDate(query, "maxDateOfPurchase", filter.MaxDateOfPurchase)
	setDate(query, "minDateOfPurchase", filter.MinDateOfPurchase)
	setDecimal(query, "maxInterestRate", filter.MaxInterestRate)
	setDecimal(query, "minInterestRate", filter.MinInterestRate)
	setDecimal(query, "maxAmount", filter.MaxInvestedAmount)
	setDecimal(query, "minAmount", filter.MinInvestedAmount)

	if len(filter.Countries) > 0 {
		ids, err := c.countryIDs(filter.Countries)
		if err != nil {
			return nil, err
		}
		requester.AddIndexed(query, "countryIds", ids)
	}
	if len(filter.LoanTypes) > 0 {
		ids, err := loanTypeIDs(filter.LoanTypes)
		if err != nil {
			return nil, err
		}
		requester.AddIndexed(query, "loanTermId", ids)
	}

	var resp struct {
		Data []map[string]any `json:"data"`
	}
	if err := c.session.DoJSON(requester.Request{Path: endpoints.Investments, Query: query}, &resp); err != nil {
		return nil, errors.Wrap(err, "[Client.Investments]")
	}
	return resp.Data, nil
}

// MassInvestmentsExport downloads the raw xlsx export of all current or
// finished investments, optionally restricted to countries.
func (c *Client) MassInvestmentsExport(countries []string, finished bool) ([]byte, error) {
	query := url.Values{}
	query.Set("type", investmentKind(finished))
	query.Set("lang", "en")

	if len(countries) > 0 {
		ids, err := c.countryIDs(countries)
		if err != nil {
			return nil, err
		}
		requester.AddIndexed(query, "countryIds", ids)
	}

	workbook, err := c.session.Do(requester.Request{Path: endpoints.InvestmentsExport, Query: query})
	if err != nil {
		return nil, errors.Wrap(err, "[Client.MassInvestmentsExport]")
	}
	return workbook, nil
}

// MassInvestments downloads the bulk investment export and returns up to
// quantity records sorted by the named export column. It is the fast path
// for large portfolios: one export call instead of dozens of pages.
func (c *Client) MassInvestments(quantity int, sortName string, countries []string, ascending, finished bool) ([]spreadsheet.Row, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	column, ok := catalog.ExportSortColumns[sortName]
	if !ok {
		return nil, &InvalidSortError{Sort: sortName, Valid: catalog.Names(catalog.ExportSortColumns)}
	}

	workbook, err := c.MassInvestmentsExport(countries, finished)
	if err != nil {
		return nil, err
	}
	rows, err := spreadsheet.Rows(workbook)
	if err != nil {
		return nil, errors.Wrap(err, "[Client.MassInvestments]")
	}
	spreadsheet.SortBy(rows, column, ascending)
	return spreadsheet.Limit(rows, quantity), nil
}

func investmentKind(finished bool) string {
	if finished {
		return "FINISHED"
	}
	return "CURRENT"
}

func setDate(query url.Values, key string, value *time.Time) {
	if value != nil {
		query.Set(key, value.Format(dateLayout))
	}
}
