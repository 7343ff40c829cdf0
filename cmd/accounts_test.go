package cmd

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonandersen/schwab/internal/output"
)

const accountsBody = `[{"securitiesAccount":{
	"type":"MARGIN","accountNumber":"12345678","isDayTrader":false,
	"currentBalances":{"liquidationValue":12345.678,"cashBalance":500,"buyingPower":1000.5},
	"positions":[
		{"longQuantity":10,"shortQuantity":0,"averagePrice":150.25,"marketValue":1600,"currentDayProfitLoss":-12.5,
		 "instrument":{"assetType":"EQUITY","symbol":"AAPL"}},
		{"longQuantity":0,"shortQuantity":2,"averagePrice":3.1,"marketValue":-500,"currentDayProfitLoss":20,
		 "instrument":{"assetType":"OPTION","symbol":"AAPL  240621C00150000"}}
	]}}]`

func newAccountsTestCmd(baseURL string, mode output.Mode, defaultAccount string) *accountsOptions {
	return &accountsOptions{
		client:         testClient(baseURL),
		mode:           modeOf(mode),
		defaultAccount: func() string { return defaultAccount },
	}
}

func TestAccountsCmd_Balances(t *testing.T) {
	server := newJSONServer(t, map[string]string{"/trader/v1/accounts": accountsBody})

	out, _, err := execute(newAccountsCmd(*newAccountsTestCmd(server.URL, output.ModeText, "")))
	require.NoError(t, err)

	assert.Contains(t, out, "Liquidation Value")
	assert.Contains(t, out, "12345678")
	assert.Contains(t, out, "MARGIN")
	assert.Contains(t, out, "12,345.68")
}

func TestAccountsCmd_Empty(t *testing.T) {
	server := newJSONServer(t, map[string]string{"/trader/v1/accounts": `[]`})

	out, _, err := execute(newAccountsCmd(*newAccountsTestCmd(server.URL, output.ModeText, "")))
	require.NoError(t, err)
	assert.Equal(t, "No accounts found\n", out)
}

func TestAccountsCmd_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Unauthorized"}`))
	}))
	defer server.Close()

	_, _, err := execute(newAccountsCmd(*newAccountsTestCmd(server.URL, output.ModeText, "")))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to fetch accounts")
	assert.Contains(t, err.Error(), "401")
}

func TestAccountsCmd_Numbers(t *testing.T) {
	server := newJSONServer(t, map[string]string{
		"/trader/v1/accounts/accountNumbers": `[{"accountNumber":"12345678","hashValue":"ABCHASH"}]`,
	})

	out, _, err := execute(newAccountsCmd(*newAccountsTestCmd(server.URL, output.ModeCSV, "")), "numbers")
	require.NoError(t, err)
	assert.Equal(t, "Account,Hash\n12345678,ABCHASH\n", out)
}

func TestAccountsCmd_PositionsAllAccounts(t *testing.T) {
	var gotFields string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/trader/v1/accounts", r.URL.Path)
		gotFields = r.URL.Query().Get("fields")
		_, _ = w.Write([]byte(accountsBody))
	}))
	defer server.Close()

	out, _, err := execute(newAccountsCmd(*newAccountsTestCmd(server.URL, output.ModeText, "")), "positions")
	require.NoError(t, err)

	assert.Equal(t, "positions", gotFields)
	assert.Contains(t, out, "AAPL  240621C00150000")
	assert.Contains(t, out, "21-Jun-24")
	assert.Contains(t, out, "-2")
}

func TestAccountsCmd_PositionsDefaultAccount(t *testing.T) {
	single := `{"securitiesAccount":{"accountNumber":"12345678","positions":[
		{"longQuantity":5,"instrument":{"assetType":"EQUITY","symbol":"MSFT"}}]}}`
	server := newJSONServer(t, map[string]string{"/trader/v1/accounts/HASH1": single})

	out, _, err := execute(newAccountsCmd(*newAccountsTestCmd(server.URL, output.ModeText, "HASH1")), "positions")
	require.NoError(t, err)
	assert.Contains(t, out, "MSFT")
}

func TestAccountsCmd_PositionsFlagOverridesDefault(t *testing.T) {
	single := `{"securitiesAccount":{"accountNumber":"9","positions":[
		{"longQuantity":1,"instrument":{"assetType":"EQUITY","symbol":"IBM"}}]}}`
	server := newJSONServer(t, map[string]string{"/trader/v1/accounts/OTHER": single})

	out, _, err := execute(newAccountsCmd(*newAccountsTestCmd(server.URL, output.ModeText, "HASH1")), "positions", "-a", "OTHER")
	require.NoError(t, err)
	assert.Contains(t, out, "IBM")
}

func TestAccountsCmd_PositionsJSON(t *testing.T) {
	server := newJSONServer(t, map[string]string{"/trader/v1/accounts": accountsBody})

	out, _, err := execute(newAccountsCmd(*newAccountsTestCmd(server.URL, output.ModeJSON, "")), "positions")
	require.NoError(t, err)

	var got []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "AAPL", got[0]["symbol"])
	assert.Equal(t, "OPTION", got[1]["assetType"])
}

func TestAccountsCmd_NoPositions(t *testing.T) {
	server := newJSONServer(t, map[string]string{
		"/trader/v1/accounts": `[{"securitiesAccount":{"accountNumber":"1"}}]`,
	})

	out, _, err := execute(newAccountsCmd(*newAccountsTestCmd(server.URL, output.ModeText, "")), "positions")
	require.NoError(t, err)
	assert.Equal(t, "No positions\n", out)
}
