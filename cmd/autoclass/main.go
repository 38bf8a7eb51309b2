package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pbaille/autoclass/internal/api"
	"github.com/pbaille/autoclass/internal/authoring"
	"github.com/pbaille/autoclass/internal/catalog"
	"github.com/pbaille/autoclass/internal/category"
	"github.com/pbaille/autoclass/internal/config"
	"github.com/pbaille/autoclass/internal/domain"
	"github.com/pbaille/autoclass/internal/logging"
	"github.com/pbaille/autoclass/internal/profile"
	"github.com/pbaille/autoclass/internal/store"
	"github.com/pbaille/autoclass/internal/warehouse"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var cfg config.Config

func main() {
	rootCmd, err := newRootCmd()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newRootCmd loads the environment into cfg and builds the command tree.
// Flags override the environment only when set.
func newRootCmd() (*cobra.Command, error) {
	loaded, err := config.Load()
	if err != nil {
		return nil, err
	}
	cfg = loaded

	var dsn string
	rootCmd := &cobra.Command{
		Use:          "autoclass",
		Short:        "Author Snowflake classification profiles",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// --dsn has no default so --help never prints $AUTOCLASS_DSN.
			if cmd.Flags().Changed("dsn") {
				cfg.DSN = dsn
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&dsn, "dsn", "", "connection string (default $AUTOCLASS_DSN)")
	rootCmd.PersistentFlags().StringVar(&cfg.Driver, "driver", cfg.Driver, "database/sql driver name")
	rootCmd.PersistentFlags().StringVar(&cfg.HistoryDB, "history-db", cfg.HistoryDB, "submission history database path")
	rootCmd.PersistentFlags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")
	rootCmd.PersistentFlags().StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "console or json")

	rootCmd.AddCommand(tagsCmd())
	rootCmd.AddCommand(schemasCmd())
	rootCmd.AddCommand(categoriesCmd())
	rootCmd.AddCommand(initCmd())
	rootCmd.AddCommand(validateCmd())
	rootCmd.AddCommand(renderCmd())
	rootCmd.AddCommand(createCmd())
	rootCmd.AddCommand(describeCmd())
	rootCmd.AddCommand(historyCmd())
	rootCmd.AddCommand(serveCmd())

	return rootCmd, nil
}

func getLogger() (*zap.Logger, error) {
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}

func getStore() (*store.Store, error) {
	// Ensure directory exists
	dir := filepath.Dir(cfg.HistoryDB)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}
	return store.New(cfg.HistoryDB)
}

func getWarehouse(ctx context.Context, logger *zap.Logger) (*warehouse.Client, error) {
	if err := cfg.RequireDSN(); err != nil {
		return nil, err
	}
	return warehouse.Open(ctx, cfg.Driver, cfg.DSN, cfg.StatementTimeout, logger)
}

// withSession connects to the platform and runs fn with a fresh session.
func withSession(cmd *cobra.Command, opts authoring.Options, fn func(*authoring.Session) error) error {
	logger, err := getLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	client, err := getWarehouse(cmd.Context(), logger)
	if err != nil {
		return err
	}
	defer client.Close()

	return fn(authoring.NewSession(catalog.New(client), client, opts, logger))
}

func tagsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tags",
		Short: "List tags available for mappings",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, authoring.Options{}, func(s *authoring.Session) error {
				tags, err := s.Tags(cmd.Context())
				if err != nil {
					return err
				}
				if len(tags) == 0 {
					fmt.Println("No tags in account.")
					return nil
				}
				for _, t := range tags {
					fmt.Println(t)
				}
				return nil
			})
		},
	}
}

func schemasCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schemas",
		Short: "List schemas a profile can live in or attach to",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, authoring.Options{}, func(s *authoring.Session) error {
				schemas, err := s.Schemas(cmd.Context())
				if err != nil {
					return err
				}
				for _, sc := range schemas {
					fmt.Println(sc)
				}
				return nil
			})
		},
	}
}

func categoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List semantic categories",
		Run: func(cmd *cobra.Command, args []string) {
			for _, c := range category.All() {
				fmt.Println(c)
			}
		},
	}
}

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Print a starter draft file",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := profile.MarshalDraft(domain.ProfileDraft{
				ProfileSchema: "DATABASE.SCHEMA",
				ProfileName:   "my_profile",
				AutoTag:       true,
				TagMappings: []domain.TagMapping{
					{TagName: "DATABASE.SCHEMA.TAG", TagValue: domain.StringPtr("VALUE"), SemanticCategories: []string{"EMAIL"}},
				},
			})
			if err != nil {
				return err
			}
			fmt.Print(string(out))
			return nil
		},
	}
}

func validateCmd() *cobra.Command {
	var draftPath string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a draft without contacting the platform",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := profile.LoadDraft(draftPath)
			if err != nil {
				return err
			}
			if err := profile.ValidateDraft(d); err != nil {
				return err
			}
			fmt.Printf("Draft for %s is valid\n", d.QualifiedName())
			return nil
		},
	}

	cmd.Flags().StringVarP(&draftPath, "file", "f", "", "draft YAML file")
	cmd.MarkFlagRequired("file")
	return cmd
}

func renderCmd() *cobra.Command {
	var draftPath string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Print the statements a draft would run",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := profile.LoadDraft(draftPath)
			if err != nil {
				return err
			}
			st, err := profile.Serialize(d)
			if err != nil {
				return err
			}

			if asJSON {
				return printJSON(st)
			}
			for _, stmt := range st.Writes() {
				fmt.Println(stmt)
			}
			fmt.Println(st.Describe)
			return nil
		},
	}

	cmd.Flags().StringVarP(&draftPath, "file", "f", "", "draft YAML file")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print statements and configuration as JSON")
	cmd.MarkFlagRequired("file")
	return cmd
}

func createCmd() *cobra.Command {
	var draftPath string
	var skipCatalogCheck bool
	var noHistory bool

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a profile from a draft and attach it",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := profile.LoadDraft(draftPath)
			if err != nil {
				return err
			}
			// Reject locally before opening any connection.
			if err := profile.ValidateDraft(d); err != nil {
				return err
			}

			opts := authoring.Options{SkipCatalogCheck: skipCatalogCheck}
			if !noHistory {
				s, err := getStore()
				if err != nil {
					return err
				}
				defer s.Close()
				opts.History = s
			}

			return withSession(cmd, opts, func(s *authoring.Session) error {
				fmt.Printf("%s...\n", authoring.SubmitLabel(d.AttachToSchemas))
				res, err := s.Submit(cmd.Context(), d)
				if res != nil {
					for _, stmt := range res.Executed {
						fmt.Printf("  ok  %s\n", stmt)
					}
				}
				if err != nil {
					if res != nil {
						for _, stmt := range res.Statements.Writes()[len(res.Executed):] {
							fmt.Printf("  --  %s\n", stmt)
						}
					}
					return err
				}

				if res.SubmissionID != "" {
					fmt.Printf("Submission: %s\n", res.SubmissionID[:8])
				}
				if res.Description != nil {
					fmt.Println("Profile description:")
					return printJSON(res.Description)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&draftPath, "file", "f", "", "draft YAML file")
	cmd.Flags().BoolVar(&skipCatalogCheck, "skip-catalog-check", false, "do not check tags and schemas against the catalog")
	cmd.Flags().BoolVar(&noHistory, "no-history", false, "do not record the submission locally")
	cmd.MarkFlagRequired("file")
	return cmd
}

func describeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "describe [database.schema.profile]",
		Short: "Show the description of an existing profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, authoring.Options{}, func(s *authoring.Session) error {
				desc, err := s.Describe(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if desc == nil {
					fmt.Println("No description returned.")
					return nil
				}
				return printJSON(desc)
			})
		},
	}
}

func historyCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history [id]",
		Short: "List past submissions or show one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := getStore()
			if err != nil {
				return err
			}
			defer s.Close()

			if len(args) == 1 {
				sub, err := s.GetSubmission(args[0])
				if err != nil {
					return err
				}
				fmt.Printf("ID:      %s\n", sub.ID)
				fmt.Printf("Profile: %s\n", sub.QualifiedName)
				fmt.Printf("Status:  %s\n", sub.Status)
				fmt.Printf("Created: %s\n", sub.CreatedAt.Format("2006-01-02 15:04:05"))
				if sub.Error != "" {
					fmt.Printf("Error:   %s\n", sub.Error)
				}
				fmt.Printf("\nStatements:\n")
				for _, st := range sub.Statements {
					mark := "--"
					if st.Applied {
						mark = "ok"
					}
					fmt.Printf("  %s  %s\n", mark, st.Statement)
				}
				return nil
			}

			subs, err := s.ListSubmissions(limit)
			if err != nil {
				return err
			}
			if len(subs) == 0 {
				fmt.Println("No submissions yet. Use 'autoclass create' to submit a draft.")
				return nil
			}
			for _, sub := range subs {
				fmt.Printf("%s  %-10s %s\n", sub.ID[:8], sub.Status, sub.QualifiedName)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of submissions to show")
	return cmd
}

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the authoring form",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := getLogger()
			if err != nil {
				return err
			}
			defer logger.Sync()

			client, err := getWarehouse(cmd.Context(), logger)
			if err != nil {
				return err
			}
			defer client.Close()

			s, err := getStore()
			if err != nil {
				return err
			}
			defer s.Close()

			newSession := func() *authoring.Session {
				return authoring.NewSession(catalog.New(client), client, authoring.Options{History: s}, logger)
			}
			return api.New(newSession, addr, logger).Run()
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", cfg.Addr, "server address")
	return cmd
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
