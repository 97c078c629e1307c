package client

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/peerberrygo/peerberry/catalog"
	"github.com/peerberrygo/peerberry/endpoints"
	"github.com/peerberrygo/peerberry/requester"
)

// Profile returns the investor's basic information, accounts and balance
// figures as the API reports them.
func (c *Client) Profile() (map[string]any, error) {
	var profile map[string]any
	if err := c.session.DoJSON(requester.Request{Path: endpoints.Profile}, &profile); err != nil {
		return nil, errors.Wrap(err, "[Client.Profile]")
	}
	return profile, nil
}

// Overview returns the portfolio overview: available balance, total
// invested, total profit, net annual return and related figures.
func (c *Client) Overview() (map[string]any, error) {
	var overview map[string]any
	if err := c.session.DoJSON(requester.Request{Path: endpoints.Overview}, &overview); err != nil {
		return nil, errors.Wrap(err, "[Client.Overview]")
	}
	return overview, nil
}

// InvestmentStatus returns the share of funds in current and late loans
// (1-15, 16-30 and 31-60 day buckets).
func (c *Client) InvestmentStatus() (map[string]any, error) {
	var status map[string]any
	if err := c.session.DoJSON(requester.Request{Path: endpoints.InvestmentStatus}, &status); err != nil {
		return nil, errors.Wrap(err, "[Client.InvestmentStatus]")
	}
	return status, nil
}

// LoyaltyTier describes the highest loyalty tier the account has unlocked.
type LoyaltyTier struct {
	Tier        string
	ExtraReturn string
	MaxAmount   decimal.Decimal
	MinAmount   decimal.Decimal
}

// LoyaltyTier returns the highest unlocked loyalty tier, or nil when the
// account has unlocked none.
func (c *Client) LoyaltyTier() (*LoyaltyTier, error) {
	var resp struct {
		Items []struct {
			Title     string          `json:"title"`
			Percent   decimal.Decimal `json:"percent"`
			MaxAmount decimal.Decimal `json:"maxAmount"`
			MinAmount decimal.Decimal `json:"minAmount"`
			Locked    bool            `json:"locked"`
		} `json:"items"`
	}
	if err := c.session.DoJSON(requester.Request{Path: endpoints.Loyalty}, &resp); err != nil {
		return nil, errors.Wrap(err, "[Client.LoyaltyTier]")
	}

	// Tiers arrive ordered ascending; the last unlocked one is the best.
	var tier *LoyaltyTier
	for _, item := range resp.Items {
		if item.Locked {
			continue
		}
		tier = &LoyaltyTier{
			Tier:        strings.TrimRight(item.Title, " "),
			ExtraReturn: item.Percent.String() + "%",
			MaxAmount:   item.MaxAmount,
			MinAmount:   item.MinAmount,
		}
	}
	return tier, nil
}

// ProfitOverview returns profit data points between start and end at the
// given periodicity ("day", "month" or "year").
func (c *Client) ProfitOverview(start, end time.Time, periodicity string) ([]map[string]any, error) {
	if _, ok := catalog.ProfitPeriodicities[periodicity]; !ok {
		return nil, &InvalidPeriodicityError{Periodicity: periodicity, Valid: catalog.Names(catalog.ProfitPeriodicities)}
	}

	path := fmt.Sprintf("%s/%s/%s/%s", endpoints.ProfitOverview, start.Format(dateLayout), end.Format(dateLayout), periodicity)
	var points []map[string]any
	if err := c.session.DoJSON(requester.Request{Path: path}, &points); err != nil {
		return nil, errors.Wrap(err, "[Client.ProfitOverview]")
	}
	return points, nil
}

// BalanceSummary is the opening/closing balance pair of an account summary.
type BalanceSummary struct {
	OpeningBalance decimal.Decimal
	OpeningDate    string
	ClosingBalance decimal.Decimal
	ClosingDate    string
}

// CashFlowSummary aggregates the operation totals of an account summary.
type CashFlowSummary struct {
	PrincipalPayments  decimal.Decimal
	InterestPayments   decimal.Decimal
	InvestmentPayments decimal.Decimal
	Deposits           decimal.Decimal
	Withdrawals        decimal.Decimal
}

// AccountSummary is the transaction summary for a period.
type AccountSummary struct {
	Balance  BalanceSummary
	CashFlow CashFlowSummary
	Currency string
}

// AccountSummary returns the transaction summary between start and end:
// opening/closing balances and per-operation cash flow totals. Absent
// figures come back as zero.
func (c *Client) AccountSummary(start, end time.Time) (*AccountSummary, error) {
	query := url.Values{}
	query.Set("startDate", start.Format(dateLayout))
	query.Set("endDate", end.Format(dateLayout))

	var resp struct {
		OpeningBalance decimal.NullDecimal            `json:"openingBalance"`
		OpeningDate    string                         `json:"openingDate"`
		ClosingBalance decimal.NullDecimal            `json:"closingBalance"`
		ClosingDate    string                         `json:"closingDate"`
		Operations     map[string]decimal.NullDecimal `json:"operations"`
		Currency       string                         `json:"currency"`
	}
	if err := c.session.DoJSON(requester.Request{Path: endpoints.AccountSummary, Query: query}, &resp); err != nil {
		return nil, errors.Wrap(err, "[Client.AccountSummary]")
	}

	operation := func(name string) decimal.Decimal {
		return nullToZero(resp.Operations[name])
	}
	return &AccountSummary{
		Balance: BalanceSummary{
			OpeningBalance: nullToZero(resp.OpeningBalance),
			OpeningDate:    resp.OpeningDate,
			ClosingBalance: nullToZero(resp.ClosingBalance),
			ClosingDate:    resp.ClosingDate,
		},
		CashFlow: CashFlowSummary{
			PrincipalPayments:  operation("PRINCIPAL"),
			InterestPayments:   operation("INTEREST"),
			InvestmentPayments: operation("INVESTMENT"),
			Deposits:           operation("DEPOSIT"),
			Withdrawals:        operation("WITHDRAWAL"),
		},
		Currency: resp.Currency,
	}, nil
}

func nullToZero(d decimal.NullDecimal) decimal.Decimal {
	if !d.Valid {
		return decimal.Zero
	}
	return d.Decimal
}
