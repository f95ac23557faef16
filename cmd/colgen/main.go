package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tordrt/colgen"
	"github.com/tordrt/colgen/internal/config"
	"github.com/tordrt/colgen/internal/errs"
	"github.com/tordrt/colgen/internal/logger"
)

var (
	filePath         string
	dbURL            string
	mysqlURL         string
	sqlitePath       string
	outputFile       string
	outputDir        string
	entities         string
	excludeEntities  string
	schemaName       string
	format           string
	defaultCollation string
	customCollation  string
	verify           bool
	configPath       string
	logLevel         string
	logFormat        string
)

// log is replaced once the configuration is known
var log = logger.New(nil)

var rootCmd = &cobra.Command{
	Use:   "colgen",
	Short: "Generate SQLite column definitions from entity descriptions",
	Long: `colgen turns entity descriptions into SQLite column definitions with their constraints.
Entities come from a YAML, JSON or TOML description file, or from the tables of an existing
PostgreSQL, MySQL or SQLite database.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	rootCmd.Flags().StringVarP(&filePath, "file", "f", "", "Entity description file (.yaml, .yml, .json or .toml)")
	rootCmd.Flags().StringVar(&dbURL, "db-url", "", "Database URL (postgres://, mysql:// or sqlite://)")
	rootCmd.Flags().StringVar(&mysqlURL, "mysql-url", "", "MySQL connection string")
	rootCmd.Flags().StringVar(&sqlitePath, "sqlite", "", "SQLite database file path")
	rootCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")
	rootCmd.Flags().StringVarP(&outputDir, "output-dir", "d", "", "Output directory for multi-file output")
	rootCmd.Flags().StringVarP(&entities, "entities", "t", "", "Specific entities or tables (comma-separated, optional)")
	rootCmd.Flags().StringVar(&excludeEntities, "exclude", "", "Entities or tables to skip (comma-separated, optional)")
	rootCmd.Flags().StringVarP(&schemaName, "schema", "s", "", "Database schema name (default: public for PostgreSQL, the DSN database for MySQL)")
	rootCmd.Flags().StringVar(&format, "format", "text", "Output format: text, sql or markdown")
	rootCmd.Flags().StringVar(&defaultCollation, "default-collation", "", "Collation for string columns without their own: none, binary, nocase, rtrim or custom")
	rootCmd.Flags().StringVar(&customCollation, "custom-collation", "", "Custom collating function name (implies --default-collation custom)")
	rootCmd.Flags().BoolVar(&verify, "verify", false, "Check the generated columns against an in-memory SQLite database before writing")
	rootCmd.Flags().StringVar(&configPath, "config", "", "YAML configuration file; flags override its values")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "warn", "Log level: debug, info, warn or error")
	rootCmd.Flags().StringVar(&logFormat, "log-format", "console", "Log format: console or json")
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	log = logger.New(&logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: cmd.ErrOrStderr()})
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = log.WithContext(ctx)

	collation, err := cfg.Collation()
	if err != nil {
		return err
	}

	opts := &colgen.Options{
		DefaultCollation: collation,
		Entities:         cfg.Entities,
		ExcludeEntities:  cfg.ExcludeEntities,
		SchemaName:       cfg.SchemaName,
		Verify:           cfg.Verify,
	}

	// Single-file output is buffered so a failed run leaves no partial file
	var buf bytes.Buffer
	outOpts := &colgen.OutputOptions{Writer: cmd.OutOrStdout(), OutputDir: cfg.OutputDir, Format: cfg.Format}
	if cfg.Output != "" {
		outOpts.Writer = &buf
	}

	url, err := databaseURL()
	if err != nil {
		return err
	}

	if filePath != "" {
		log.With().Str("file", filePath).Logger().Debug("generating from description file")
		err = colgen.GenerateFromFile(ctx, filePath, opts, outOpts)
	} else {
		err = colgen.GenerateFromDatabase(ctx, url, opts, outOpts)
	}
	if err != nil {
		return err
	}

	if cfg.Output != "" {
		if err := os.WriteFile(cfg.Output, buf.Bytes(), 0644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		log.With().Str("output", cfg.Output).Logger().Info("wrote column definitions")
	}
	return nil
}

// loadConfig reads the optional config file, then lets explicitly set flags override it
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()
	if configPath != "" {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return nil, err
		}
	}

	applyFlags(cmd, cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()

	if flags.Changed("default-collation") {
		cfg.DefaultCollation = defaultCollation
	}
	if flags.Changed("custom-collation") {
		cfg.CustomCollation = customCollation
	}
	if flags.Changed("format") {
		cfg.Format = format
	}
	if flags.Changed("output") {
		cfg.Output = outputFile
	}
	if flags.Changed("output-dir") {
		cfg.OutputDir = outputDir
	}
	if flags.Changed("schema") {
		cfg.SchemaName = schemaName
	}
	if flags.Changed("entities") {
		cfg.Entities = parseList(entities)
	}
	if flags.Changed("exclude") {
		cfg.ExcludeEntities = parseList(excludeEntities)
	}
	if flags.Changed("verify") {
		cfg.Verify = verify
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = logLevel
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = logFormat
	}
}

// databaseURL validates the source flags and returns a URL the facade understands.
// It returns an empty URL when the source is a description file.
func databaseURL() (string, error) {
	// Validate source flags
	count := 0
	for _, s := range []string{filePath, dbURL, mysqlURL, sqlitePath} {
		if s != "" {
			count++
		}
	}
	if count == 0 {
		return "", errs.New(errs.ErrKindInvalidInput, "one of --file, --db-url, --mysql-url, or --sqlite must be specified")
	}
	if count > 1 {
		return "", errs.New(errs.ErrKindInvalidInput, "only one of --file, --db-url, --mysql-url, or --sqlite can be specified")
	}

	switch {
	case filePath != "":
		return "", nil
	case sqlitePath != "":
		return "sqlite://" + sqlitePath, nil
	case mysqlURL != "":
		if strings.HasPrefix(mysqlURL, "mysql://") {
			return mysqlURL, nil
		}
		return "mysql://" + mysqlURL, nil
	default:
		return dbURL, nil
	}
}

// parseList splits a comma-separated flag value, dropping empty items
func parseList(s string) []string {
	if s == "" {
		return nil
	}

	var list []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			list = append(list, item)
		}
	}
	return list
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.ErrorWith("colgen failed", err, map[string]interface{}{"kind": errs.KindOf(err).String()})
		os.Exit(1)
	}
}
