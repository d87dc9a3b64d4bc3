package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vitaliisemenov/cac/pkg/cac"
	"github.com/vitaliisemenov/cac/pkg/cacclient"
)

func newEvalCommand() *cobra.Command {
	var (
		queryJSON  string
		keysCSV    string
		strategy   string
		withReason bool
	)

	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Bootstrap a client and evaluate a query against the resolved config",
		Long: "eval fetches the current config document from --hostname for " +
			"--tenant, then resolves --query against it and prints the " +
			"resulting fields as JSON.",
		RunE: func(cmd *cobra.Command, args []string) error {
			tenant := resolvedTenant()
			hostname := resolvedHostname()
			exitIfEmpty(tenant, "--tenant")
			exitIfEmpty(hostname, "--hostname")

			query, err := parseQuery(queryJSON)
			if err != nil {
				return fmt.Errorf("cacctl: parsing --query: %w", err)
			}
			strat := cac.ParseStrategy(strategy)
			keys := splitCSV(keysCSV)

			ctx := context.Background()
			client, err := cacclient.New(ctx, cacclient.ClientOptions{
				Tenant:          tenant,
				Hostname:        hostname,
				PollingInterval: flags.pollingInterval,
				Logger:          newLogger(),
			})
			if err != nil {
				return fmt.Errorf("cacctl: bootstrapping client: %w", err)
			}

			if withReason {
				snap := client.GetFullConfigState()
				result := cac.EvalCACWithReasoning(snap.DefaultConfigs, snap.Contexts, snap.Overrides, query, strat)
				return printJSON(cmd, result)
			}

			resolved := client.GetResolvedConfig(query, keys, strat)
			return printJSON(cmd, resolved)
		},
	}

	cmd.Flags().StringVar(&queryJSON, "query", "{}", "JSON object of query dimensions, e.g. '{\"tier\":\"gold\"}'")
	cmd.Flags().StringVar(&keysCSV, "keys", "", "comma-separated keys to project (default: all)")
	cmd.Flags().StringVar(&strategy, "strategy", "merge", "merge strategy: merge or replace")
	cmd.Flags().BoolVar(&withReason, "with-reasoning", false, "emit per-key override attribution instead of the plain resolved map")

	return cmd
}

func parseQuery(raw string) (map[string]cac.Value, error) {
	query := make(map[string]cac.Value)
	if strings.TrimSpace(raw) == "" {
		return query, nil
	}
	if err := json.Unmarshal([]byte(raw), &query); err != nil {
		return nil, err
	}
	return query, nil
}

func splitCSV(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	return nil
}
