package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/rolodexdb/rolodex/internal/datagen"
	"github.com/rolodexdb/rolodex/pkg/bench"
	"github.com/rolodexdb/rolodex/pkg/core"
	"github.com/rolodexdb/rolodex/pkg/rolodex"
)

var (
	flagDir     string
	flagBackend string
	flagConfig  string
	verbose     bool

	cfg = DefaultConfig()
)

var rootCmd = &cobra.Command{
	Use:   "rolodex",
	Short: "CLI tool for the dual-backend people database",
	Long: `A command-line interface for seeding, inspecting, exporting and
benchmarking people databases stored on SQLite or bbolt.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup(cmd)
	},
}

// setup resolves the data directory and merges the optional YAML config
// with command-line flags. Flags win over the file.
func setup(cmd *cobra.Command) error {
	if flagDir == "" {
		dir, err := rolodex.DefaultDir()
		if err != nil {
			return err
		}
		flagDir = dir
	}

	path := flagConfig
	if path == "" {
		path = ConfigPath(flagDir)
		if _, err := os.Stat(path); err != nil {
			return nil
		}
	}
	loaded, err := LoadConfig(path)
	if err != nil {
		return err
	}
	cfg = loaded

	if cfg.Dir != "" && !cmd.Flags().Changed("dir") {
		flagDir = cfg.Dir
	}
	if cfg.Backend != "" && !cmd.Flags().Changed("backend") {
		flagBackend = cfg.Backend
	}
	return nil
}

// openBackend opens a database handle on the named backend in the
// configured data directory.
func openBackend(dir, backendName string) (*rolodex.DB, error) {
	backend, err := rolodex.ParseBackend(backendName)
	if err != nil {
		return nil, err
	}

	config := rolodex.DefaultConfig(dir)
	config.Backend = backend
	if cfg.BatchSize > 0 {
		config.BatchSize = cfg.BatchSize
	}

	level := core.ParseLevel(cfg.LogLevel)
	if verbose {
		level = core.LevelDebug
	}
	return rolodex.Open(config, rolodex.WithLogger(core.NewStdLogger(level)))
}

func openDB() (*rolodex.DB, error) {
	return openBackend(flagDir, flagBackend)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the data directory, config file and database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")

		path := ConfigPath(flagDir)
		if _, err := os.Stat(path); err == nil && !force {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}

		starter := DefaultConfig()
		starter.Dir = flagDir
		starter.Backend = flagBackend
		if err := SaveConfig(starter, path); err != nil {
			return err
		}
		fmt.Printf("Created %s\n", path)

		db, err := openDB()
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()

		if err := db.Store().Init(context.Background()); err != nil {
			return fmt.Errorf("failed to initialize store: %w", err)
		}

		fmt.Printf("Database initialized at %s (%s backend)\n", db.Path(), db.Backend())
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed [count]",
	Short: "Insert deterministically generated people",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		count := 1000
		if len(args) == 1 {
			n, err := strconv.Atoi(args[0])
			if err != nil || n <= 0 {
				return fmt.Errorf("invalid count %q", args[0])
			}
			count = n
		}
		seed, _ := cmd.Flags().GetInt64("seed")

		db, err := openDB()
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()

		res, err := db.Store().CreatePeople(context.Background(), datagen.People(count, seed))
		if err != nil {
			return fmt.Errorf("seed failed: %w", err)
		}

		fmt.Printf("Inserted %d people in %s (%.2f MB on disk)\n",
			res.Rows, res.Elapsed.Round(time.Millisecond), res.SizeMB)
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display database statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()

		counts, err := db.Store().Counts(context.Background())
		if err != nil {
			return fmt.Errorf("failed to get counts: %w", err)
		}

		outputJSON, _ := cmd.Flags().GetBool("json")
		if outputJSON {
			out := map[string]interface{}{
				"backend":   db.Backend(),
				"path":      db.Path(),
				"people":    counts.People,
				"addresses": counts.Addresses,
				"emails":    counts.Emails,
				"sizeMb":    db.Store().SizeMB(),
			}
			data, _ := json.MarshalIndent(out, "", "  ")
			fmt.Println(string(data))
		} else {
			fmt.Println("Database Status:")
			fmt.Printf("  Backend: %s\n", db.Backend())
			fmt.Printf("  Path: %s\n", db.Path())
			fmt.Printf("  People: %d\n", counts.People)
			fmt.Printf("  Addresses: %d\n", counts.Addresses)
			fmt.Printf("  Email Addresses: %d\n", counts.Emails)
			fmt.Printf("  Database Size: %.2f MB\n", db.Store().SizeMB())
		}
		return nil
	},
}

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Run the CRUD benchmark suite",
	Long: `Runs create, read, update, selective delete and delete-all on generated
data and reports per-operation rows, size and timing. The suite runs in a
scratch directory and never touches the configured database.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		people, _ := cmd.Flags().GetInt("people")
		seed, _ := cmd.Flags().GetInt64("seed")
		all, _ := cmd.Flags().GetBool("all")
		outputJSON, _ := cmd.Flags().GetBool("json")

		backends := []string{flagBackend}
		if all {
			backends = []string{"sqlite", "bolt"}
		}

		var reports []*bench.Report
		for _, name := range backends {
			report, err := runBench(name, people, seed)
			if err != nil {
				return err
			}
			reports = append(reports, report)
		}

		if outputJSON {
			data, _ := json.MarshalIndent(reports, "", "  ")
			fmt.Println(string(data))
			return nil
		}
		for _, report := range reports {
			fmt.Print(report)
			fmt.Println()
		}
		return nil
	},
}

func runBench(backendName string, people int, seed int64) (*bench.Report, error) {
	scratch, err := os.MkdirTemp("", "rolodex-bench-")
	if err != nil {
		return nil, fmt.Errorf("failed to create scratch dir: %w", err)
	}
	defer func() { _ = os.RemoveAll(scratch) }()

	db, err := openBackend(scratch, backendName)
	if err != nil {
		return nil, err
	}
	defer func() { _ = db.Close() }()

	runner := bench.New(db.Store(), bench.Options{
		People: people,
		Seed:   seed,
		Label:  backendName,
	})
	report, err := runner.Run(context.Background())
	if err != nil {
		return nil, fmt.Errorf("%s benchmark failed: %w", backendName, err)
	}
	return report, nil
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all people to stdout or a file",
	RunE: func(cmd *cobra.Command, args []string) error {
		formatName, _ := cmd.Flags().GetString("format")
		outPath, _ := cmd.Flags().GetString("out")

		format, err := rolodex.ParseDumpFormat(formatName)
		if err != nil {
			return err
		}

		db, err := openDB()
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()

		w := io.Writer(os.Stdout)
		if outPath != "" {
			f, err := os.Create(outPath)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", outPath, err)
			}
			defer func() { _ = f.Close() }()
			w = f
		}

		stats, err := db.Dump(context.Background(), w, format)
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}
		if outPath != "" {
			fmt.Printf("Exported %d people (%d addresses, %d emails) to %s\n",
				stats.People, stats.Addresses, stats.Emails, outPath)
		}
		return nil
	},
}

var findCmd = &cobra.Command{
	Use:   "find <value>",
	Short: "Find people by last name or email",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		by, _ := cmd.Flags().GetString("by")
		outputJSON, _ := cmd.Flags().GetBool("json")

		db, err := openDB()
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()

		ctx := context.Background()
		var people []*core.Person
		switch by {
		case "last-name":
			people, err = db.Store().FindByLastName(ctx, args[0])
		case "email":
			people, err = db.Store().FindByEmail(ctx, args[0])
		default:
			return fmt.Errorf("unknown lookup field %q (want last-name or email)", by)
		}
		if err != nil {
			return fmt.Errorf("find failed: %w", err)
		}

		if outputJSON {
			data, _ := json.MarshalIndent(people, "", "  ")
			fmt.Println(string(data))
			return nil
		}

		fmt.Printf("Found %d people:\n", len(people))
		for i, p := range people {
			fmt.Printf("%d. %s %s (id %d)", i+1, p.FirstName, p.LastName, p.ID)
			if p.Phone != "" {
				fmt.Printf(" %s", p.Phone)
			}
			fmt.Println()
			if verbose {
				for _, a := range p.Addresses {
					fmt.Printf("   address: %s, %s [%s]\n", a.Street, a.City, a.Kind)
				}
				for _, e := range p.Emails {
					fmt.Printf("   email: %s [%s]\n", e.Email, e.Kind)
				}
			}
		}
		return nil
	},
}

var wipeCmd = &cobra.Command{
	Use:   "wipe",
	Short: "Delete the database file and start fresh",
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")

		db, err := openDB()
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()

		if !force {
			fmt.Printf("Are you sure you want to wipe %s? This deletes all stored people. [y/N]: ", db.Path())
			var response string
			fmt.Scanln(&response)
			if response != "y" && response != "Y" {
				fmt.Println("Cancelled.")
				return nil
			}
		}

		if err := db.Store().Reset(context.Background()); err != nil {
			return fmt.Errorf("wipe failed: %w", err)
		}

		fmt.Printf("Database wiped at %s\n", db.Path())
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagDir, "dir", "d", "", "Data directory (default: user config dir)")
	rootCmd.PersistentFlags().StringVarP(&flagBackend, "backend", "b", "sqlite", "Storage backend (sqlite or bolt)")
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "Config file path (default: <dir>/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")

	initCmd.Flags().Bool("force", false, "Overwrite existing configuration")

	seedCmd.Flags().Int64("seed", 1, "Generator seed")

	statusCmd.Flags().Bool("json", false, "Output as JSON")

	benchCmd.Flags().Int("people", 1000, "People per run")
	benchCmd.Flags().Int64("seed", 1, "Generator seed")
	benchCmd.Flags().Bool("all", false, "Benchmark both backends")
	benchCmd.Flags().Bool("json", false, "Output as JSON")

	exportCmd.Flags().String("format", "json", "Export format (json, jsonl or csv)")
	exportCmd.Flags().String("out", "", "Output file (default: stdout)")

	findCmd.Flags().String("by", "last-name", "Lookup field (last-name or email)")
	findCmd.Flags().Bool("json", false, "Output as JSON")

	wipeCmd.Flags().Bool("force", false, "Skip confirmation prompt")

	rootCmd.AddCommand(
		initCmd,
		seedCmd,
		statusCmd,
		benchCmd,
		exportCmd,
		findCmd,
		wipeCmd,
	)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
