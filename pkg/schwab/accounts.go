package schwab

import (
	"context"
	"fmt"
)

// FieldsPositions asks the accounts endpoints to include positions.
const FieldsPositions = "positions"

// GetAccountNumbers lists account numbers and their encrypted hash values.
func (c *Client) GetAccountNumbers(ctx context.Context) ([]AccountNumber, error) {
	var numbers []AccountNumber
	if err := c.getJSON(ctx, "/trader/v1/accounts/accountNumbers", nil, &numbers); err != nil {
		return nil, fmt.Errorf("failed to fetch account numbers: %w", err)
	}
	return numbers, nil
}

// GetAccounts retrieves all linked accounts. Balances are always included;
// pass FieldsPositions to include positions, or "" for none.
func (c *Client) GetAccounts(ctx context.Context, fields string) ([]Account, error) {
	var accounts []Account
	params := map[string]string{"fields": fields}
	if err := c.getJSON(ctx, "/trader/v1/accounts", params, &accounts); err != nil {
		return nil, fmt.Errorf("failed to fetch accounts: %w", err)
	}
	return accounts, nil
}

// GetAccount retrieves one account by its hash value.
func (c *Client) GetAccount(ctx context.Context, accountHash, fields string) (*Account, error) {
	if accountHash == "" {
		return nil, fmt.Errorf("account hash is required")
	}

	var account Account
	path := "/trader/v1/accounts/" + escapeSegment(accountHash)
	params := map[string]string{"fields": fields}
	if err := c.getJSON(ctx, path, params, &account); err != nil {
		return nil, fmt.Errorf("failed to fetch account: %w", err)
	}
	return &account, nil
}
