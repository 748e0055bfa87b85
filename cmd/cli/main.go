package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/iho/glcore/internal/infrastructure/logger"
	"github.com/iho/glcore/internal/infrastructure/postgres"
)

var (
	baseURL string
	actor   string
	timeout time.Duration
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "glctl",
		Short:         "General ledger CLI tool",
		Long:          `A command line interface for the general ledger posting and period closing API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the ledger API")
	root.PersistentFlags().StringVar(&actor, "actor", os.Getenv("USER"), "User recorded on state changes")
	root.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	ledgerCmd := &cobra.Command{
		Use:   "ledger",
		Short: "Ledger reports",
	}
	ledgerCmd.AddCommand(consistencyCmd(), trialBalanceCmd())

	entryCmd := &cobra.Command{
		Use:   "entry",
		Short: "Journal entry operations",
	}
	entryCmd.AddCommand(entryGetCmd(), entryTransitionCmd("post"), entryTransitionCmd("approve"), entryReverseCmd())

	periodCmd := &cobra.Command{
		Use:   "period",
		Short: "Financial period operations",
	}
	periodCmd.AddCommand(periodListCmd(), periodCloseCmd(), periodReopenCmd())

	root.AddCommand(ledgerCmd, entryCmd, periodCmd, migrateCmd())
	return root
}

func consistencyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "consistency",
		Short: "Check ledger consistency",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, body, err := request(http.MethodGet, "/api/v1/ledger/consistency", nil)
			if err != nil {
				return err
			}

			var result struct {
				Status     string `json:"status"`
				Consistent bool   `json:"consistent"`
			}
			if err := json.Unmarshal(body, &result); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}

			out := cmd.OutOrStdout()
			if status != http.StatusOK || !result.Consistent {
				fmt.Fprintf(out, "Consistency check FAILED (Status: %d)\nResponse: %s\n", status, truncate(string(body), 2000))
				return fmt.Errorf("ledger is inconsistent")
			}

			fmt.Fprintf(out, "Consistency check PASSED\nStatus: %s\n", result.Status)
			return nil
		},
	}
}

func trialBalanceCmd() *cobra.Command {
	var asOf string

	cmd := &cobra.Command{
		Use:   "trial-balance",
		Short: "Print the trial balance",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/v1/ledger/trial-balance"
			if asOf != "" {
				path += "?as_of=" + asOf
			}
			return printResponse(cmd.OutOrStdout(), http.MethodGet, path, nil)
		},
	}
	cmd.Flags().StringVar(&asOf, "as-of", "", "Report date (YYYY-MM-DD), defaults to today")
	return cmd
}

func entryGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a journal entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return printResponse(cmd.OutOrStdout(), http.MethodGet, "/api/v1/journal-entries/"+args[0], nil)
		},
	}
}

func entryTransitionCmd(action string) *cobra.Command {
	return &cobra.Command{
		Use:   action + " <id>",
		Short: strings.ToUpper(action[:1]) + action[1:] + " a journal entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return printResponse(cmd.OutOrStdout(), http.MethodPost,
				"/api/v1/journal-entries/"+args[0]+"/"+action, map[string]string{"by": actor})
		},
	}
}

func entryReverseCmd() *cobra.Command {
	var number, reason, date, by string

	cmd := &cobra.Command{
		Use:   "reverse <id>",
		Short: "Post a reversal of a posted journal entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return printResponse(cmd.OutOrStdout(), http.MethodPost, "/api/v1/journal-entries/"+args[0]+"/reverse", map[string]string{
				"number":     number,
				"reason":     reason,
				"entry_date": date,
				"by":         who(by),
			})
		},
	}
	cmd.Flags().StringVar(&number, "number", "", "Reversal entry number, defaults to the original number with -R")
	cmd.Flags().StringVar(&reason, "reason", "", "Reversal reason")
	cmd.Flags().StringVar(&date, "date", "", "Reversal date (YYYY-MM-DD), defaults to the original entry date")
	cmd.Flags().StringVar(&by, "by", "", "User posting the reversal, defaults to --actor")
	_ = cmd.MarkFlagRequired("reason")
	return cmd
}

func periodListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List financial periods",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printResponse(cmd.OutOrStdout(), http.MethodGet, "/api/v1/periods/", nil)
		},
	}
}

func periodCloseCmd() *cobra.Command {
	var by string

	cmd := &cobra.Command{
		Use:   "close <id>",
		Short: "Run every remaining closing step for a period",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return printResponse(cmd.OutOrStdout(), http.MethodPost,
				"/api/v1/periods/"+args[0]+"/closing/run", map[string]string{"by": who(by)})
		},
	}
	cmd.Flags().StringVar(&by, "by", "", "User closing the period, defaults to --actor")
	return cmd
}

func periodReopenCmd() *cobra.Command {
	var reason string

	cmd := &cobra.Command{
		Use:   "reopen <id>",
		Short: "Reopen a closed period",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return printResponse(cmd.OutOrStdout(), http.MethodPost,
				"/api/v1/periods/"+args[0]+"/reopen", map[string]string{"by": actor, "reason": reason})
		},
	}
	cmd.Flags().StringVar(&reason, "reason", "", "Reopen reason")
	_ = cmd.MarkFlagRequired("reason")
	return cmd
}

func migrateCmd() *cobra.Command {
	var databaseURL, migrationsPath string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the postgres schema",
	}
	cmd.PersistentFlags().StringVar(&databaseURL, "database-url", os.Getenv("DATABASE_URL"), "Postgres connection URL")
	cmd.PersistentFlags().StringVar(&migrationsPath, "path", "internal/infrastructure/postgres/migrations", "Migrations directory")

	migrationLogger := func(cmd *cobra.Command) zerolog.Logger {
		return logger.New(logger.Config{Level: "info", Format: "console", Output: cmd.ErrOrStderr()})
	}

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return postgres.RunMigrations(databaseURL, migrationsPath, migrationLogger(cmd))
		},
	}

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return postgres.RunMigrationsDown(databaseURL, migrationsPath, steps, migrationLogger(cmd))
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "Number of migrations to roll back")

	status := &cobra.Command{
		Use:   "status",
		Short: "Show the applied schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := postgres.Status(databaseURL, migrationsPath, migrationLogger(cmd))
			if err != nil {
				return err
			}
			if !st.Applied {
				fmt.Fprintln(cmd.OutOrStdout(), "No migrations applied")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Version: %d\nDirty: %v\n", st.Version, st.Dirty)
			return nil
		},
	}

	cmd.AddCommand(up, down, status)
	return cmd
}

func who(by string) string {
	if by != "" {
		return by
	}
	return actor
}

func request(method, path string, payload any) (int, []byte, error) {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, strings.TrimRight(baseURL, "/")+path, body)
	if err != nil {
		return 0, nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if actor != "" {
		req.Header.Set("X-Actor-ID", actor)
	}

	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, respBody, nil
}

func printResponse(out io.Writer, method, path string, payload any) error {
	status, body, err := request(method, path, payload)
	if err != nil {
		return err
	}

	if status >= http.StatusBadRequest {
		return fmt.Errorf("request failed (Status: %d): %s", status, truncate(strings.TrimSpace(string(body)), 500))
	}

	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		fmt.Fprintln(out, string(body))
		return nil
	}
	printJSON(out, v)
	return nil
}

func printJSON(out io.Writer, v any) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(out, "%v\n", v)
		return
	}
	fmt.Fprintln(out, string(b))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
