// Package main implements fmcsession, a small CLI that logs in to a management
// center and issues single authenticated calls.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	fmc "github.com/goliatone/go-fmc"
	"github.com/goliatone/go-fmc/adapters/gocommand"
	"github.com/goliatone/go-fmc/adapters/gologger"
	"github.com/goliatone/go-fmc/core"
	fmcquery "github.com/goliatone/go-fmc/query"
)

var version = "dev"

type cliOptions struct {
	configPath string
	host       string
	scheme     string
	port       int
	insecure   bool
	username   string
	password   string
	verbose    bool
	query      map[string]string
}

func main() {
	if err := newRootCommand(os.Stdout, os.Getenv).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand(out io.Writer, getenv func(string) string) *cobra.Command {
	opts := &cliOptions{}
	root := &cobra.Command{
		Use:          "fmcsession",
		Short:        "Authenticate against a management center and issue calls",
		Version:      version,
		SilenceUsage: true,
	}
	root.SetOut(out)

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "YAML config file")
	flags.StringVar(&opts.host, "host", "", "management center host")
	flags.StringVar(&opts.scheme, "scheme", "", "URL scheme (https or http)")
	flags.IntVar(&opts.port, "port", 0, "management center port")
	flags.BoolVar(&opts.insecure, "insecure", false, "skip TLS certificate verification")
	flags.StringVar(&opts.username, "username", "", "API user (defaults to $FMC_USERNAME)")
	flags.StringVar(&opts.password, "password", "", "API password (defaults to $FMC_PASSWORD)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(newLoginCommand(opts, getenv))
	root.AddCommand(newGetCommand(opts, getenv))
	root.AddCommand(newOperationsCommand(opts))
	return root
}

func newLoginCommand(opts *cliOptions, getenv func(string) string) *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Run the token exchange and print the session summary",
		Long: `Run the basic-auth token exchange and print the tenant and token expiry.
Tokens themselves are never printed.

Examples:
  FMC_USERNAME=api FMC_PASSWORD=secret fmcsession login --host ciscofmc.local`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			driver, logger, err := buildDriver(opts)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			step, err := login(cmd.Context(), driver, opts, getenv)
			if err != nil {
				return err
			}
			return writeSummary(cmd.OutOrStdout(), driver, step.Credentials)
		},
	}
}

func newGetCommand(opts *cliOptions, getenv func(string) string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <operation>",
		Short: "Log in, then GET one operation and print the response body",
		Long: `Log in, then GET one operation and print the raw response body.
Run "fmcsession operations" to list operation names.

Examples:
  fmcsession get devices --host ciscofmc.local
  fmcsession get object --query limit=25`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			driver, logger, err := buildDriver(opts)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			step, err := login(cmd.Context(), driver, opts, getenv)
			if err != nil {
				return err
			}
			target, err := step.Next.Get().ForOperation(core.OperationID(strings.TrimSpace(args[0])))
			if err != nil {
				return err
			}
			for key, value := range opts.query {
				target = target.WithQuery(key, value)
			}
			req, err := target.Materialize()
			if err != nil {
				return err
			}
			res, err := driver.Exchange(cmd.Context(), req)
			if err != nil {
				return err
			}
			if res.StatusCode >= 400 {
				return fmt.Errorf("fmcsession: %s returned status %d", args[0], res.StatusCode)
			}
			_, err = cmd.OutOrStdout().Write(res.Body)
			return err
		},
	}
	cmd.Flags().StringToStringVar(&opts.query, "query", nil, "query parameters (key=value)")
	return cmd
}

func newOperationsCommand(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "operations",
		Short: "List the known operations and their path templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			driver, logger, err := buildDriver(opts)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			facade, err := fmc.NewFacade(driver)
			if err != nil {
				return err
			}
			subscriptions, err := facade.Subscribe(nil)
			if err != nil {
				return err
			}
			defer func() {
				for _, subscription := range subscriptions {
					subscription.Unsubscribe()
				}
			}()
			descriptors, err := gocommand.Query[fmcquery.ListOperationsMessage, []core.Descriptor](cmd.Context(), fmcquery.ListOperationsMessage{})
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "OPERATION\tTENANT\tTEMPLATE")
			for _, descriptor := range descriptors {
				fmt.Fprintf(w, "%s\t%t\t%s\n", descriptor.Operation, descriptor.RequiresTenantScope, descriptor.Template)
			}
			return w.Flush()
		},
	}
}

func runtimeConfig(opts *cliOptions) core.Config {
	return core.Config{
		Host:   opts.host,
		Scheme: opts.scheme,
		Port:   opts.port,
		Transport: core.TransportConfig{
			InsecureSkipVerify: opts.insecure,
		},
	}
}

func buildDriver(opts *cliOptions) (*core.Driver, *zap.Logger, error) {
	base, err := gologger.NewConsole(opts.verbose)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	driver, err := fmc.New(runtimeConfig(opts),
		fmc.WithConfigProvider(core.NewCfgxConfigProvider(newFileEnvLoader(opts.configPath))),
		fmc.WithLoggerProvider(gologger.NewZapProvider(base)),
		fmc.WithLogger(gologger.NewZapLogger(base.Named("fmc"))),
	)
	if err != nil {
		_ = base.Sync()
		return nil, nil, err
	}
	return driver, base, nil
}

func login(ctx context.Context, driver *core.Driver, opts *cliOptions, getenv func(string) string) (core.Step, error) {
	if strings.TrimSpace(driver.Config().Host) == "" {
		return core.Step{}, fmt.Errorf("fmcsession: host is required (--host, FMC_HOST or config file)")
	}
	username := firstNonEmpty(opts.username, getenv(envPrefix+"USERNAME"))
	password := opts.password
	if password == "" {
		password = getenv(envPrefix + "PASSWORD")
	}
	if username == "" {
		return core.Step{}, fmt.Errorf("fmcsession: username is required (--username or FMC_USERNAME)")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return driver.Login(ctx, driver.Start(), username, password)
}

type sessionSummary struct {
	Host             string `json:"host"`
	AuthMode         string `json:"auth_mode"`
	TenantID         string `json:"tenant_id,omitempty"`
	IssuedAt         string `json:"issued_at,omitempty"`
	ExpiresAt        string `json:"expires_at,omitempty"`
	RemainingSeconds int64  `json:"remaining_seconds"`
	HasRefreshToken  bool   `json:"has_refresh_token"`
}

func writeSummary(out io.Writer, driver *core.Driver, creds core.CredentialStore) error {
	state := driver.TokenState(creds)
	summary := sessionSummary{
		Host:             driver.Config().Host,
		AuthMode:         string(state.Mode),
		RemainingSeconds: int64(state.Remaining / time.Second),
		HasRefreshToken:  state.HasRefreshToken,
	}
	if tenant, ok := creds.TenantID(); ok {
		summary.TenantID = tenant.String()
	}
	if issuedAt, ok := creds.IssuedAt(); ok {
		summary.IssuedAt = issuedAt.UTC().Format(time.RFC3339)
	}
	if state.ExpiresAt != nil {
		summary.ExpiresAt = state.ExpiresAt.Format(time.RFC3339)
	}
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(summary)
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
