package client

import (
	"net/url"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"github.com/peerberrygo/peerberry/catalog"
	"github.com/peerberrygo/peerberry/endpoints"
	"github.com/peerberrygo/peerberry/requester"
	"github.com/peerberrygo/peerberry/spreadsheet"
)

// TransactionFilter narrows the transaction listing. Periodicity is one of
// the shortcut ranges ("today", "thisWeek", "thisMonth"); Types are
// catalog.TransactionTypes names.
type TransactionFilter struct {
	StartDate   *time.Time
	EndDate     *time.Time
	Periodicity string
	Types       []string
}

// Transactions fetches up to quantity cash-flow transactions starting at
// startPage. For the spreadsheet form of the same data use
// MassTransactions.
func (c *Client) Transactions(quantity, startPage int, filter TransactionFilter) ([]map[string]any, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	query := url.Values{}
	query.Set("pageSize", strconv.Itoa(quantity))
	query.Set("offset", strconv.Itoa(quantity*startPage))
	setDate(query, "startDate", filter.StartDate)
	setDate(query, "endDate", filter.EndDate)

	if err := addTransactionFilters(query, filter.Types, filter.Periodicity); err != nil {
		return nil, err
	}

	var transactions []map[string]any
	if err := c.session.DoJSON(requester.Request{Path: endpoints.Transactions, Query: query}, &transactions); err != nil {
		return nil, errors.Wrap(err, "[Client.Transactions]")
	}
	return transactions, nil
}

// MassTransactionsExport downloads the raw xlsx export of transactions in
// the given range.
func (c *Client) MassTransactionsExport(start, end *time.Time, types []string, periodicity string) ([]byte, error) {
	query := url.Values{}
	query.Set("lang", "en")
	setDate(query, "startDate", start)
	setDate(query, "endDate", end)

	if err := addTransactionFilters(query, types, periodicity); err != nil {
		return nil, err
	}

	workbook, err := c.session.Do(requester.Request{Path: endpoints.TransactionsExport, Query: query})
	if err != nil {
		return nil, errors.Wrap(err, "[Client.MassTransactionsExport]")
	}
	return workbook, nil
}

// MassTransactions downloads the bulk transaction export and returns up to
// quantity records sorted by the named export column.
func (c *Client) MassTransactions(quantity int, start, end *time.Time, types []string, periodicity, sortName string, ascending bool) ([]spreadsheet.Row, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	column, ok := catalog.TransactionSortColumns[sortName]
	if !ok {
		return nil, &InvalidSortError{Sort: sortName, Valid: catalog.Names(catalog.TransactionSortColumns)}
	}

	workbook, err := c.MassTransactionsExport(start, end, types, periodicity)
	if err != nil {
		return nil, err
	}
	rows, err := spreadsheet.Rows(workbook)
	if err != nil {
		return nil, errors.Wrap(err, "[Client.MassTransactions]")
	}
	spreadsheet.SortBy(rows, column, ascending)
	return spreadsheet.Limit(rows, quantity), nil
}

// addTransactionFilters validates and encodes the type and periodicity
// filters shared by the listing and the export.
func addTransactionFilters(query url.Values, types []string, periodicity string) error {
	if len(types) > 0 {
		ids := make([]string, 0, len(types))
		for _, name := range types {
			id, ok := catalog.TransactionTypes[name]
			if !ok {
				return &InvalidTypeError{Type: name, Valid: catalog.Names(catalog.TransactionTypes)}
			}
			ids = append(ids, strconv.Itoa(id))
		}
		requester.AddIndexed(query, "transactionType", ids)
	}

	if periodicity != "" {
		if _, ok := catalog.TransactionPeriodicities[periodicity]; !ok {
			return &InvalidPeriodicityError{Periodicity: periodicity, Valid: catalog.Names(catalog.TransactionPeriodicities)}
		}
		query.Set("periodicity", periodicity)
	}
	return nil
}
