package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	baseURL  string
	timeout  time.Duration
	operator string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "commissions-cli",
		Short: "Commissions CLI tool",
		Long:  `A command line interface for the commission and payout settlement API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the commissions API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")
	rootCmd.PersistentFlags().StringVar(&operator, "operator", "", "Operator name recorded in the audit trail")

	rootCmd.AddCommand(dealCmd())
	rootCmd.AddCommand(agentCmd())
	rootCmd.AddCommand(payoutCmd())
	rootCmd.AddCommand(settlementCmd())

	return rootCmd
}

func dealCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deal",
		Short: "Deal ingestion operations",
	}

	var (
		dealID    string
		agentID   string
		salePrice string
		currency  string
		rate      int64
		split     int64
		closeDate string
	)

	submitCmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a closed deal for commission splitting",
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]any{
				"deal_id":                  dealID,
				"agent_id":                 agentID,
				"sale_price":               salePrice,
				"currency":                 currency,
				"commission_rate_permille": rate,
				"agent_split_percent":      split,
				"close_date":               closeDate,
			}
			return request(http.MethodPost, "/api/v1/deals/", body)
		},
	}
	submitCmd.Flags().StringVar(&dealID, "deal", "", "Deal ID")
	submitCmd.Flags().StringVar(&agentID, "agent", "", "Agent ID")
	submitCmd.Flags().StringVar(&salePrice, "price", "", "Sale price, e.g. 500000.00")
	submitCmd.Flags().StringVar(&currency, "currency", "USD", "ISO currency code")
	submitCmd.Flags().Int64Var(&rate, "rate", 0, "Commission rate in permille")
	submitCmd.Flags().Int64Var(&split, "split", 0, "Agent split percent")
	submitCmd.Flags().StringVar(&closeDate, "close-date", "", "Close date (RFC 3339)")
	_ = submitCmd.MarkFlagRequired("deal")
	_ = submitCmd.MarkFlagRequired("agent")
	_ = submitCmd.MarkFlagRequired("price")
	_ = submitCmd.MarkFlagRequired("rate")
	_ = submitCmd.MarkFlagRequired("split")
	_ = submitCmd.MarkFlagRequired("close-date")

	reverseCmd := &cobra.Command{
		Use:   "reverse <deal-id>",
		Short: "Reverse a previously split deal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return request(http.MethodPost, "/api/v1/deals/"+args[0]+"/reversal", nil)
		},
	}

	showCmd := &cobra.Command{
		Use:   "show <deal-id>",
		Short: "Show the commission record for a deal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return request(http.MethodGet, "/api/v1/deals/"+args[0]+"/commission", nil)
		},
	}

	cmd.AddCommand(submitCmd, reverseCmd, showCmd)
	return cmd
}

func agentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agent",
		Short: "Agent ledger operations",
	}

	commissionsCmd := &cobra.Command{
		Use:   "commissions <agent-id>",
		Short: "List an agent's commission records",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return request(http.MethodGet, "/api/v1/agents/"+args[0]+"/commissions", nil)
		},
	}

	capCmd := &cobra.Command{
		Use:   "cap <agent-id>",
		Short: "Show an agent's cap utilization",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return request(http.MethodGet, "/api/v1/agents/"+args[0]+"/cap", nil)
		},
	}

	var (
		annualCap    string
		currency     string
		feeYearStart string
	)
	setPolicyCmd := &cobra.Command{
		Use:   "set-cap-policy <agent-id>",
		Short: "Configure an agent's annual cap policy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]any{
				"annual_cap":     annualCap,
				"currency":       currency,
				"fee_year_start": feeYearStart,
			}
			return request(http.MethodPut, "/api/v1/agents/"+args[0]+"/cap-policy", body)
		},
	}
	setPolicyCmd.Flags().StringVar(&annualCap, "cap", "", "Annual cap amount, e.g. 25000.00")
	setPolicyCmd.Flags().StringVar(&currency, "currency", "USD", "ISO currency code")
	setPolicyCmd.Flags().StringVar(&feeYearStart, "fee-year-start", "", "Fee year anchor (RFC 3339)")
	_ = setPolicyCmd.MarkFlagRequired("cap")
	_ = setPolicyCmd.MarkFlagRequired("fee-year-start")

	getPolicyCmd := &cobra.Command{
		Use:   "cap-policy <agent-id>",
		Short: "Show an agent's cap policy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return request(http.MethodGet, "/api/v1/agents/"+args[0]+"/cap-policy", nil)
		},
	}

	cmd.AddCommand(commissionsCmd, capCmd, setPolicyCmd, getPolicyCmd)
	return cmd
}

func payoutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "payout",
		Short: "Payout queue operations",
	}

	var state string
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List payout line items by state",
		RunE: func(cmd *cobra.Command, args []string) error {
			return request(http.MethodGet, "/api/v1/payouts/?state="+state, nil)
		},
	}
	listCmd.Flags().StringVar(&state, "state", "pending", "Line item state to filter by")

	listReadyCmd := &cobra.Command{
		Use:   "list-ready",
		Short: "List line items queued for the next settlement run",
		RunE: func(cmd *cobra.Command, args []string) error {
			return request(http.MethodGet, "/api/v1/payouts/ready", nil)
		},
	}

	getCmd := &cobra.Command{
		Use:   "get <line-item-id>",
		Short: "Show a payout line item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return request(http.MethodGet, "/api/v1/payouts/"+args[0], nil)
		},
	}

	releaseCmd := &cobra.Command{
		Use:   "release <line-item-id>",
		Short: "Release a pending or failed line item for settlement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return request(http.MethodPost, "/api/v1/payouts/"+args[0]+"/release", nil)
		},
	}

	cmd.AddCommand(listCmd, listReadyCmd, getCmd, releaseCmd)
	return cmd
}

func settlementCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settlement",
		Short: "Settlement batch operations",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run a settlement batch over the ready queue",
		RunE: func(cmd *cobra.Command, args []string) error {
			return request(http.MethodPost, "/api/v1/settlements/run", nil)
		},
	}

	getCmd := &cobra.Command{
		Use:   "get <batch-id>",
		Short: "Show a settlement batch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return request(http.MethodGet, "/api/v1/settlements/"+args[0], nil)
		},
	}

	cmd.AddCommand(runCmd, getCmd)
	return cmd
}

// request performs one API call and pretty-prints the JSON response.
func request(method, path string, body any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if operator != "" {
		req.Header.Set("X-Operator", operator)
	}

	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("request failed (status %d): %s", resp.StatusCode, string(raw))
	}

	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	printJSON(decoded)
	return nil
}

func printJSON(v any) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("failed to render response: %v\n", err)
		return
	}
	fmt.Println(string(out))
}
