package client_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/peerberrygo/peerberry/client"
)

func TestInvestments(t *testing.T) {
	t.Run("query encoding", func(t *testing.T) {
		stub := newAPIStub(t)
		stub.handleJSON("/v1/investor/investments", `{"data":[{"loanId":1}]}`)

		api := stub.newClient()
		minDate := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
		investments, err := api.Investments(25, 2, client.InvestmentFilter{
			MinDateOfPurchase: &minDate,
			Sort:              "interest_rate",
			Ascending:         true,
		})
		require.NoError(t, err)
		require.Len(t, investments, 1)

		query := stub.dataCalls[0].Query()
		require.Equal(t, "interestRate", query.Get("sort"))
		require.Equal(t, "25", query.Get("pageSize"))
		require.Equal(t, "50", query.Get("offset"))
		require.Equal(t, "CURRENT", query.Get("type"))
		require.Equal(t, "2024-03-01", query.Get("minDateOfPurchase"))
	})

	t.Run("finished investments use their own sort set", func(t *testing.T) {
		stub := newAPIStub(t)
		stub.handleJSON("/v1/investor/investments", `{"data":[]}`)

		api := stub.newClient()
		_, err := api.Investments(10, 0, client.InvestmentFilter{
			Sort:     "final_payment_date",
			Finished: true,
		})
		require.NoError(t, err)

		query := stub.dataCalls[0].Query()
		require.Equal(t, "-finishedAt", query.Get("sort"))
		require.Equal(t, "FINISHED", query.Get("type"))
	})

	t.Run("finished-only sort rejected for current", func(t *testing.T) {
		stub := newAPIStub(t)
		api := stub.newClient()

		_, err := api.Investments(10, 0, client.InvestmentFilter{Sort: "final_payment_date"})
		var sortErr *client.InvalidSortError
		require.ErrorAs(t, err, &sortErr)
		require.NotContains(t, sortErr.Valid, "final_payment_date")
		require.Empty(t, stub.dataCalls)
	})
}

// exportWorkbook builds an xlsx payload shaped like the investment export.
func exportWorkbook(t *testing.T, header []string, rows [][]any) []byte {
	t.Helper()
	file := excelize.NewFile()
	sheet := file.GetSheetName(0)

	cell, err := excelize.CoordinatesToCellName(1, 1)
	require.NoError(t, err)
	require.NoError(t, file.SetSheetRow(sheet, cell, &header))
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		require.NoError(t, err)
		require.NoError(t, file.SetSheetRow(sheet, cell, &row))
	}

	buf, err := file.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestMassInvestments(t *testing.T) {
	workbook := exportWorkbook(t,
		[]string{"Loan", "Invested amount", "Status"},
		[][]any{
			{"loan-a", 50, "ACTIVE"},
			{"loan-b", 200, "ACTIVE"},
			{"loan-c", 125, "LATE"},
		},
	)

	t.Run("sorts and limits the export", func(t *testing.T) {
		stub := newAPIStub(t)
		stub.handle("/v1/investor/investments/export", func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "CURRENT", r.URL.Query().Get("type"))
			require.Equal(t, "en", r.URL.Query().Get("lang"))
			w.Write(workbook)
		})

		api := stub.newClient()
		rows, err := api.MassInvestments(2, "invested_amount", nil, false, false)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		require.Equal(t, "loan-b", rows[0]["Loan"])
		require.Equal(t, "loan-c", rows[1]["Loan"])
	})

	t.Run("ascending sort", func(t *testing.T) {
		stub := newAPIStub(t)
		stub.handle("/v1/investor/investments/export", func(w http.ResponseWriter, r *http.Request) {
			w.Write(workbook)
		})

		api := stub.newClient()
		rows, err := api.MassInvestments(3, "invested_amount", nil, true, false)
		require.NoError(t, err)
		require.Equal(t, "loan-a", rows[0]["Loan"])
		require.Equal(t, "loan-b", rows[2]["Loan"])
	})

	t.Run("unsupported sort rejected locally", func(t *testing.T) {
		stub := newAPIStub(t)
		api := stub.newClient()

		_, err := api.MassInvestments(10, "shoe_size", nil, false, false)
		var sortErr *client.InvalidSortError
		require.ErrorAs(t, err, &sortErr)
		require.Empty(t, stub.dataCalls)
	})

	t.Run("raw export bytes", func(t *testing.T) {
		stub := newAPIStub(t)
		stub.handle("/v1/investor/investments/export", func(w http.ResponseWriter, r *http.Request) {
			w.Write(workbook)
		})

		api := stub.newClient()
		raw, err := api.MassInvestmentsExport(nil, true)
		require.NoError(t, err)
		require.Equal(t, workbook, raw)
		require.Equal(t, "FINISHED", stub.dataCalls[0].Query().Get("type"))
	})
}
