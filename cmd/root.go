package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/shopdesk/internal/catalog"
	"github.com/lehigh-university-libraries/shopdesk/internal/config"
	"github.com/lehigh-university-libraries/shopdesk/internal/tokenstore"
)

// rootOptions holds the persistent flags shared by every command
type rootOptions struct {
	apiBase string
	apiPath string
	timeout time.Duration
	verbose bool

	cfg    config.Config
	tokens *tokenstore.Store
}

func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "shopdesk",
		Short: "Storefront and catalog administration client",
		Long: `Shopdesk manages a shop's product catalog and storefront cart through the
shop's catalog REST API.

Admins sign in once with "shopdesk login"; the token is kept in the user
config directory and attached to every admin request until it expires.
"shopdesk serve" exposes the same operations as a local JSON API.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
			return opts.resolve(cmd)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.apiBase, "api-base", "", "Catalog API base URL (env "+config.EnvAPIBase+")")
	flags.StringVar(&opts.apiPath, "api-path", "", "Catalog API path segment (env "+config.EnvAPIPath+")")
	flags.DurationVar(&opts.timeout, "timeout", config.DefaultTimeout, "Catalog API request timeout (env "+config.EnvTimeout+")")
	flags.BoolVar(&opts.verbose, "verbose", false, "Enable debug logging")

	cmd.AddCommand(newLoginCmd(opts))
	cmd.AddCommand(newLogoutCmd(opts))
	cmd.AddCommand(newCheckCmd(opts))
	cmd.AddCommand(newProductsCmd(opts))
	cmd.AddCommand(newCartCmd(opts))
	cmd.AddCommand(newCheckoutCmd(opts))
	cmd.AddCommand(newServeCmd(opts))

	return cmd
}

// resolve merges environment settings with the flags that were set explicitly
func (o *rootOptions) resolve(cmd *cobra.Command) error {
	level := slog.LevelInfo
	if o.verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("api-base") {
		cfg.APIBase = o.apiBase
	}
	if flags.Changed("api-path") {
		cfg.APIPath = o.apiPath
	}
	if flags.Changed("timeout") {
		cfg.Timeout = o.timeout
	}
	o.cfg = cfg

	if o.tokens == nil {
		o.tokens, err = tokenstore.Default()
		if err != nil {
			return err
		}
	}

	slog.Debug("Resolved configuration", "api_base", cfg.APIBase, "api_path", cfg.APIPath, "timeout", cfg.Timeout)
	return nil
}

// client builds a catalog client from the resolved configuration
func (o *rootOptions) client() (*catalog.Client, error) {
	if err := o.cfg.Validate(); err != nil {
		return nil, err
	}
	return catalog.NewClient(o.cfg.APIBase, o.cfg.APIPath, catalog.WithTimeout(o.cfg.Timeout)), nil
}

// token returns the saved admin token
func (o *rootOptions) token() (string, error) {
	cred, err := o.tokens.Load()
	if err != nil {
		return "", fmt.Errorf("%w (run \"shopdesk login\")", err)
	}
	return cred.Token, nil
}

// adminClient returns a client together with the saved admin token
func (o *rootOptions) adminClient() (*catalog.Client, string, error) {
	client, err := o.client()
	if err != nil {
		return nil, "", err
	}
	token, err := o.token()
	if err != nil {
		return nil, "", err
	}
	return client, token, nil
}
