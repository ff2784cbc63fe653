package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/go-while/go-pugsite/internal/config"
	"github.com/go-while/go-pugsite/internal/database"
)

// validFormats are the accepted values of --format
var validFormats = []string{"text", "json"}

// rootOptions holds global flags for all commands
type rootOptions struct {
	ConfigFile string
	DBPath     string
	Format     string
}

// passwordReader prompts for a secret without echo
var passwordReader = terminalPassword

// NewRootCommand creates the root command of the user manager
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:          "usermgr",
		Short:        "go-pugsite user manager",
		Long:         "Create and list site users, and inspect newsletter subscribers and contact messages.",
		Version:      appVersion,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(validFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, validFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "", "config file (.json, .yaml or .yml)")
	cmd.PersistentFlags().StringVar(&opts.DBPath, "db", "", "path to the sqlite3 database (overrides config)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(newCreateUserCommand(opts))
	cmd.AddCommand(newListUsersCommand(opts))
	cmd.AddCommand(newListSubscribersCommand(opts))
	cmd.AddCommand(newListMessagesCommand(opts))

	return cmd
}

// openDB opens the database named by --db, the config file or the default
func (o *rootOptions) openDB(ctx context.Context) (*database.Database, error) {
	cfg := config.NewDefaultConfig()
	if o.ConfigFile != "" {
		if err := cfg.LoadFile(o.ConfigFile); err != nil {
			return nil, err
		}
	}
	if o.DBPath != "" {
		cfg.Database.MainDB = o.DBPath
	}

	dbConfig := database.DefaultDBConfig()
	dbConfig.Path = cfg.Database.MainDB
	dbConfig.BusyTimeout = cfg.Database.BusyTimeout.Std()
	dbConfig.MaxOpenConns = cfg.Database.MaxOpenConns
	return database.OpenDatabase(ctx, dbConfig)
}

// withDB runs fn with an open database and closes it afterwards
func (o *rootOptions) withDB(cmd *cobra.Command, fn func(ctx context.Context, db *database.Database) error) (err error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	db, err := o.openDB(ctx)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if cerr := db.Shutdown(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fn(ctx, db)
}

// render writes v as indented JSON, or calls text with a tabwriter
func (o *rootOptions) render(out io.Writer, v any, text func(w *tabwriter.Writer)) error {
	if o.Format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	text(tw)
	return tw.Flush()
}

func terminalPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(password), nil
}
