package client_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/peerberrygo/peerberry/client"
)

func TestTransactions(t *testing.T) {
	t.Run("query encoding", func(t *testing.T) {
		stub := newAPIStub(t)
		stub.handleJSON("/v2/investor/transactions", `[{"amount":"10.00"}]`)

		api := stub.newClient()
		start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		transactions, err := api.Transactions(50, 1, client.TransactionFilter{
			StartDate:   &start,
			Periodicity: "thisMonth",
			Types:       []string{"deposit", "investment"},
		})
		require.NoError(t, err)
		require.Len(t, transactions, 1)

		query := stub.dataCalls[0].Query()
		require.Equal(t, "50", query.Get("pageSize"))
		require.Equal(t, "50", query.Get("offset"))
		require.Equal(t, "2024-01-01", query.Get("startDate"))
		require.Equal(t, "thisMonth", query.Get("periodicity"))
		require.Equal(t, "1", query.Get("transactionType[0]"))
		require.Equal(t, "11", query.Get("transactionType[1]"))
	})

	t.Run("unsupported transaction type is local", func(t *testing.T) {
		stub := newAPIStub(t)
		api := stub.newClient()

		_, err := api.Transactions(10, 0, client.TransactionFilter{Types: []string{"lottery_win"}})
		var typeErr *client.InvalidTypeError
		require.ErrorAs(t, err, &typeErr)
		require.Equal(t, "lottery_win", typeErr.Type)
		require.Contains(t, typeErr.Valid, "deposit")
		require.Empty(t, stub.dataCalls)
	})

	t.Run("unsupported periodicity is local", func(t *testing.T) {
		stub := newAPIStub(t)
		api := stub.newClient()

		_, err := api.Transactions(10, 0, client.TransactionFilter{Periodicity: "thisDecade"})
		var perErr *client.InvalidPeriodicityError
		require.ErrorAs(t, err, &perErr)
		require.Equal(t, []string{"thisMonth", "thisWeek", "today"}, perErr.Valid)
		require.Empty(t, stub.dataCalls)
	})
}

func TestMassTransactions(t *testing.T) {
	workbook := exportWorkbook(t,
		[]string{"Date", "Amount", "Type"},
		[][]any{
			{"2024-01-02", 15, "DEPOSIT"},
			{"2024-01-03", 5, "INTEREST"},
			{"2024-01-04", 40, "DEPOSIT"},
		},
	)

	t.Run("sorts by amount and limits", func(t *testing.T) {
		stub := newAPIStub(t)
		stub.handle("/v2/investor/transactions/import", func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "en", r.URL.Query().Get("lang"))
			w.Write(workbook)
		})

		api := stub.newClient()
		start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		end := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
		rows, err := api.MassTransactions(2, &start, &end, []string{"deposit"}, "", "amount", false)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		require.Equal(t, "40", rows[0]["Amount"])
		require.Equal(t, "15", rows[1]["Amount"])

		query := stub.dataCalls[0].Query()
		require.Equal(t, "2024-01-01", query.Get("startDate"))
		require.Equal(t, "1", query.Get("transactionType[0]"))
	})

	t.Run("invalid filters are local", func(t *testing.T) {
		stub := newAPIStub(t)
		api := stub.newClient()

		_, err := api.MassTransactions(10, nil, nil, nil, "", "colour", false)
		var sortErr *client.InvalidSortError
		require.ErrorAs(t, err, &sortErr)
		require.Empty(t, stub.dataCalls)

		_, err = api.MassTransactions(10, nil, nil, []string{"lottery_win"}, "", "amount", false)
		require.Error(t, err)
		require.Empty(t, stub.dataCalls)
	})
}
