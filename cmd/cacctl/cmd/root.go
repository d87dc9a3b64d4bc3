// Package cmd wires cacctl's cobra command tree and viper-backed config,
// the way the teacher's migrations.CLI builds its root command.
package cmd

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/vitaliisemenov/cac/pkg/caclogger"
)

// globalFlags holds the persistent flag values shared by every subcommand.
// tenant and hostname are read through viper (resolvedTenant,
// resolvedHostname), so they may also come from environment variables
// (CACCTL_*) or an optional config file; the other fields are used as the
// flags set them.
type globalFlags struct {
	tenant          string
	hostname        string
	pollingInterval time.Duration
	logLevel        string
	logFormat       string
}

var flags globalFlags

// NewRootCommand builds the cacctl command tree. name and version are
// reported by the "version" command and used as the viper config-file
// base name.
func NewRootCommand(name, version string) *cobra.Command {
	root := &cobra.Command{
		Use:   name,
		Short: "cacctl talks to a CAC config-publishing endpoint",
		Long: "cacctl is a thin command-line wrapper around pkg/cacclient: " +
			"it bootstraps a polling client for one tenant and evaluates " +
			"queries against the resolved configuration.",
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&flags.tenant, "tenant", "", "tenant identifier sent as the x-tenant header (required)")
	root.PersistentFlags().StringVar(&flags.hostname, "hostname", "", "base URL of the config-publishing service (required)")
	root.PersistentFlags().DurationVar(&flags.pollingInterval, "polling-interval", 30*time.Second, "background refresh interval")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	root.PersistentFlags().StringVar(&flags.logFormat, "log-format", "text", "log format: text or json")

	_ = viper.BindPFlag("tenant", root.PersistentFlags().Lookup("tenant"))
	_ = viper.BindPFlag("hostname", root.PersistentFlags().Lookup("hostname"))
	_ = viper.BindPFlag("polling_interval", root.PersistentFlags().Lookup("polling-interval"))
	viper.SetEnvPrefix("cacctl")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.SetConfigName(name)
	viper.AddConfigPath(".")
	_ = viper.ReadInConfig() // absent config file is not an error

	root.AddCommand(newVersionCommand(name, version))
	root.AddCommand(newEvalCommand())
	return root
}

func newLogger() *slog.Logger {
	return caclogger.New(caclogger.Config{
		Level:  flags.logLevel,
		Format: flags.logFormat,
		Output: "stdout",
	})
}

func newVersionCommand(name, version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.Printf("%s version %s\n", name, version)
			return nil
		},
	}
}

func resolvedTenant() string {
	if v := viper.GetString("tenant"); v != "" {
		return v
	}
	return flags.tenant
}

func resolvedHostname() string {
	if v := viper.GetString("hostname"); v != "" {
		return v
	}
	return flags.hostname
}

func exitIfEmpty(value, flagName string) {
	if value == "" {
		slog.Error("cacctl: required flag not set", "flag", flagName)
		os.Exit(2)
	}
}
