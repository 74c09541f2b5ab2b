package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"questforge/internal/apiref"
	"questforge/internal/block"
	"questforge/internal/cache"
	"questforge/internal/codegen"
	"questforge/internal/config"
	"questforge/internal/filewalker"
	"questforge/internal/lint"
	"questforge/internal/parse"
	"questforge/internal/plugin"
	"questforge/internal/script"
	"questforge/internal/store"
	"questforge/internal/worker"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// Execute runs the CLI application.
func Execute() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	rootCmd := &cobra.Command{
		Use:   "questforge",
		Short: "Block-based authoring tool for EQEmu Perl quest scripts",
		Long:  "Builds, imports, validates, and regenerates EQEmu NPC quest scripts from structured block trees.",
	}

	rootCmd.AddCommand(generateCmd())
	rootCmd.AddCommand(importCmd())
	rootCmd.AddCommand(validateCmd())
	rootCmd.AddCommand(roundtripCmd())
	rootCmd.AddCommand(pluginsCmd())
	rootCmd.AddCommand(apirefCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func generateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate <script.json>",
		Short: "Render a saved block tree into Perl quest-script text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			npcID, _ := cmd.Flags().GetInt("npc-id")
			out, _ := cmd.Flags().GetString("out")
			return runGenerate(args[0], npcID, out)
		},
	}
	cmd.Flags().Int("npc-id", 0, "NPC id for the generated header (overrides the saved one)")
	cmd.Flags().String("out", "", "Output file (defaults to stdout)")
	return cmd
}

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <script.pl>",
		Short: "Reverse-parse a Perl quest script into a block tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, _ := cmd.Flags().GetString("out")
			return runImport(args[0], out)
		},
	}
	cmd.Flags().String("out", "", "Output file (defaults to stdout)")
	return cmd
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file-or-dir>",
		Short: "Lint quest scripts and report findings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(args[0])
		},
	}
}

func roundtripCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "roundtrip <script.pl>",
		Short: "Check that a script parses and regenerates stably",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoundtrip(args[0])
		},
	}
}

func pluginsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plugins",
		Short: "Inspect and sync the plugin catalog",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List the local plugin catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPluginsList()
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "push",
		Short: "Upload the local catalog to the shared database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPluginsSync(true)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "pull",
		Short: "Merge the shared database catalog into the local one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPluginsSync(false)
		},
	})
	return cmd
}

func apirefCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "apiref [reference.txt]",
		Short: "List quest API method signatures from a reference file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return runAPIRef(path)
		},
	}
}

func runGenerate(scriptPath string, npcID int, out string) error {
	reg, err := loadRegistry()
	if err != nil {
		return err
	}

	st, err := script.Load(scriptPath)
	if err != nil {
		return err
	}
	if npcID == 0 {
		npcID = st.NPCID
	}

	text := codegen.GenerateDocument(st.Blocks, reg, npcID)
	return writeOutput(out, text+"\n")
}

func runImport(perlPath, out string) error {
	reg, err := loadRegistry()
	if err != nil {
		return err
	}

	data, err := os.ReadFile(perlPath)
	if err != nil {
		return fmt.Errorf("read script: %w", err)
	}

	blocks := parse.Parse(string(data), reg)
	log.Info().Int("blocks", len(blocks)).Str("path", perlPath).Msg("Imported script")

	if out == "" {
		encoded, err := block.Marshal(blocks)
		if err != nil {
			return err
		}
		fmt.Println(string(encoded))
		return nil
	}
	return script.Save(out, &script.State{Blocks: blocks})
}

func runValidate(root string) error {
	cfg := config.Load()
	reg, err := loadRegistryWith(cfg)
	if err != nil {
		return err
	}

	paths, err := filewalker.Walk(root)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		log.Warn().Str("root", root).Msg("No quest scripts found")
		return nil
	}

	ctx, cancel := setupContext()
	defer cancel()

	results := cache.NewResultCache()
	pool := worker.NewPool(cfg.WorkerCount, func(ctx context.Context, path string) ([]lint.Issue, error) {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		text := string(data)
		if issues, ok := results.Get(text); ok {
			return issues, nil
		}
		issues := lint.Validate(parse.Parse(text, reg), reg)
		results.Set(text, issues)
		return issues, nil
	})

	errorCount := 0
	for _, res := range pool.Run(ctx, paths) {
		if res.Err != nil {
			errorCount++
			continue
		}
		for _, issue := range res.Output {
			fmt.Printf("%s: [%s] %s (%s)\n", res.Input, issue.Severity, issue.Message, issue.Where)
			if issue.Severity == lint.SeverityError {
				errorCount++
			}
		}
	}

	log.Info().Int("scripts", len(paths)).Int("distinct", results.Len()).Int("errors", errorCount).Msg("Validation complete")
	if errorCount > 0 {
		return fmt.Errorf("%d error(s) found", errorCount)
	}
	return nil
}

func runRoundtrip(perlPath string) error {
	reg, err := loadRegistry()
	if err != nil {
		return err
	}

	data, err := os.ReadFile(perlPath)
	if err != nil {
		return fmt.Errorf("read script: %w", err)
	}

	first := codegen.Generate(parse.Parse(string(data), reg), reg)
	second := codegen.Generate(parse.Parse(first, reg), reg)

	if first != second {
		return fmt.Errorf("roundtrip unstable: regenerated text differs for %s", perlPath)
	}
	log.Info().Str("path", perlPath).Msg("Roundtrip stable")
	return nil
}

func runPluginsList() error {
	reg, err := loadRegistry()
	if err != nil {
		return err
	}
	for _, d := range reg.List() {
		fmt.Printf("%-24s %-12s %s\n", d.ID, d.Category, d.Name)
	}
	return nil
}

func runPluginsSync(push bool) error {
	cfg := config.Load()
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is not configured")
	}

	reg, err := loadRegistryWith(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := setupContext()
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	catalog := store.NewCatalogStore(pool)
	if err := catalog.EnsureSchema(ctx); err != nil {
		return err
	}

	if push {
		return catalog.Push(ctx, reg.List())
	}

	defs, err := catalog.Pull(ctx)
	if err != nil {
		return err
	}
	for _, d := range defs {
		reg.Put(d)
	}
	return reg.Save()
}

func runAPIRef(path string) error {
	if path == "" {
		path = config.Load().APIReferencePath
	}
	methods, err := apiref.LoadMethods(path)
	if err != nil {
		return err
	}

	cats := make([]string, 0, len(methods))
	for cat := range methods {
		cats = append(cats, cat)
	}
	sort.Strings(cats)

	for _, cat := range cats {
		fmt.Printf("[%s]\n", cat)
		for _, m := range methods[cat] {
			fmt.Printf("  %s->%s(%s)\n", m.Var, m.Name, m.Args)
		}
	}
	return nil
}

func loadRegistry() (*plugin.Registry, error) {
	return loadRegistryWith(config.Load())
}

func loadRegistryWith(cfg *config.Config) (*plugin.Registry, error) {
	reg := plugin.NewRegistry(cfg.PluginsPath)
	if err := reg.Load(); err != nil {
		return nil, err
	}
	return reg, nil
}

func writeOutput(out, text string) error {
	if out == "" {
		fmt.Print(text)
		return nil
	}
	if err := os.WriteFile(out, []byte(text), 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	log.Info().Str("path", out).Msg("Wrote output")
	return nil
}

// setupContext creates a cancellable context with signal handling.
func setupContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		log.Warn().Msg("Interrupted, shutting down")
		cancel()
	}()

	return ctx, cancel
}
