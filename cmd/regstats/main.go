package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cedarstats/regstats/internal/cache"
	"github.com/cedarstats/regstats/internal/config"
	"github.com/cedarstats/regstats/internal/database"
	"github.com/cedarstats/regstats/internal/ingest"
	"github.com/cedarstats/regstats/internal/regstats"
	"github.com/cedarstats/regstats/internal/server"
)

var version = "dev"

var (
	verbose    bool
	configPath string
	cfg        *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "regstats",
	Short:   "Registration anomaly detection for enrollment data",
	Long:    "regstats rolls up per-section enrollment into course metrics, compares each term against the course's own history, and flags early drops, late drops, dips, bumps, waitlist overloads and seat squeezes.",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			log.SetFlags(log.LstdFlags | log.Lshortfile)
		} else {
			log.SetFlags(log.LstdFlags)
		}

		// Skip config loading for init and version
		if cmd.Name() == "init" || cmd.Name() == "version" {
			return nil
		}

		path, err := config.ResolveConfigPath(configPath)
		if err != nil {
			return err
		}
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(serveCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("regstats", version)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration in ~/.config/regstats/",
	RunE: func(cmd *cobra.Command, args []string) error {
		target := filepath.Join(config.ConfigDir(), "config.yaml")
		if _, err := os.Stat(target); err == nil {
			fmt.Printf("Config already exists: %s\n", target)
			return nil
		}

		if err := os.MkdirAll(config.ConfigDir(), 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}

		if err := os.WriteFile(target, config.DefaultConfigYAML, 0o644); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		fmt.Printf("Created config: %s\n", target)
		fmt.Println("Edit it to point at your data directory and tune thresholds.")
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show database and cache status",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		stats, err := db.GetStats()
		if err != nil {
			return fmt.Errorf("getting stats: %w", err)
		}

		fmt.Println("Data:")
		fmt.Printf("  Sections: %d\n", stats.Sections)
		fmt.Printf("  Enrollments: %d\n", stats.Enrollments)
		fmt.Printf("  Colleges: %d\n", stats.Colleges)
		fmt.Printf("  Campuses: %d\n", stats.Campuses)
		if len(stats.Terms) > 0 {
			fmt.Printf("  Terms: %s\n", strings.Join(stats.Terms, ", "))
		}

		store, err := openCache()
		if err != nil {
			return err
		}
		entries, err := store.List()
		if err != nil {
			return fmt.Errorf("listing cache: %w", err)
		}
		fmt.Println("\nCache:")
		fmt.Printf("  Entries: %d\n", len(entries))
		fmt.Printf("  Directory: %s\n", cfg.GetCacheDir())
		return nil
	},
}

// --- import command ---

var importCmd = &cobra.Command{
	Use:   "import [sections.csv] [enrollments.csv]",
	Short: "Import vendor section and enrollment extracts",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		result, err := ingest.Import(db, args[0], args[1])
		if err != nil {
			return err
		}

		fmt.Println("Import complete:")
		fmt.Printf("  Sections: %d\n", result.Sections)
		fmt.Printf("  Enrollments: %d\n", result.Enrollments)
		fmt.Printf("  Terms replaced: %s\n", strings.Join(result.TermsCleared, ", "))
		return nil
	},
}

// --- analyze command ---

var (
	analyzeTerm    string
	analyzeCollege string
	analyzeCampus  string
	analyzeLevel   string
	noCache        bool

	flagMinImpacted int
	flagPctSD       float64
	flagMinWait     int
	flagMinSqueeze  float64
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run anomaly detection and print the flagged courses",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		var store regstats.CacheStore
		if !noCache {
			fileStore, err := openCache()
			if err != nil {
				return err
			}
			store = fileStore
		}

		opts := regstats.OptionSet{
			Term:       analyzeTerm,
			College:    analyzeCollege,
			Campus:     analyzeCampus,
			Level:      analyzeLevel,
			Thresholds: thresholdOverride(cmd),
		}

		engine := regstats.New(db, store, cfg.ThresholdSet(), cfg.TierBounds())
		bundle, err := engine.Run(context.Background(), opts)
		if err != nil {
			return err
		}

		printBundle(bundle)
		return nil
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeTerm, "term", "", "Restrict to one term")
	analyzeCmd.Flags().StringVar(&analyzeCollege, "college", "", "Restrict to one college")
	analyzeCmd.Flags().StringVar(&analyzeCampus, "campus", "", "Restrict to one campus")
	analyzeCmd.Flags().StringVar(&analyzeLevel, "level", "", "Restrict to one course level")
	analyzeCmd.Flags().BoolVar(&noCache, "no-cache", false, "Skip the result cache entirely")

	analyzeCmd.Flags().IntVar(&flagMinImpacted, "min-impacted", 0, "Override minimum impacted students")
	analyzeCmd.Flags().Float64Var(&flagPctSD, "pct-sd", 0, "Override sigma multiplier flagging gate")
	analyzeCmd.Flags().IntVar(&flagMinWait, "min-wait", 0, "Override minimum waitlist size")
	analyzeCmd.Flags().Float64Var(&flagMinSqueeze, "min-squeeze", 0, "Override squeeze ratio threshold")
}

// thresholdOverride builds an override from the flags the user actually set.
// Any explicit threshold flag makes the run custom, which bypasses the cache.
func thresholdOverride(cmd *cobra.Command) *regstats.ThresholdOverride {
	var o regstats.ThresholdOverride
	custom := false

	if cmd.Flags().Changed("min-impacted") {
		o.MinImpacted = &flagMinImpacted
		custom = true
	}
	if cmd.Flags().Changed("pct-sd") {
		o.PctSD = &flagPctSD
		custom = true
	}
	if cmd.Flags().Changed("min-wait") {
		o.MinWait = &flagMinWait
		custom = true
	}
	if cmd.Flags().Changed("min-squeeze") {
		o.MinSqueeze = &flagMinSqueeze
		custom = true
	}

	if !custom {
		return nil
	}
	return &o
}

func printBundle(b *regstats.Bundle) {
	fmt.Println("Anomalies:")
	fmt.Printf("  Early drops: %d\n", len(b.EarlyDrops))
	fmt.Printf("  Late drops: %d\n", len(b.LateDrops))
	fmt.Printf("  Dips: %d\n", len(b.Dips))
	fmt.Printf("  Bumps: %d\n", len(b.Bumps))
	fmt.Printf("  Waitlist overloads: %d\n", len(b.Waits))
	fmt.Printf("  Seat squeezes: %d\n", len(b.Squeezes))

	if len(b.TieredSummary.Rows) > 0 {
		fmt.Println("\nTiered summary:")
		for _, row := range b.TieredSummary.Rows {
			fmt.Printf("  %-12s %-14s %d\n", row.Anomaly, row.Tier, row.Count)
		}
		fmt.Printf("  Critical total: %d\n", b.TieredSummary.CriticalTotal)
		fmt.Printf("  Moderate total: %d\n", b.TieredSummary.ModerateTotal)
	}

	if len(b.AllFlaggedCourses) > 0 {
		fmt.Printf("\nFlagged courses (%d):\n", len(b.AllFlaggedCourses))
		for _, course := range b.AllFlaggedCourses {
			fmt.Printf("  %s\n", course)
		}
	}

	source := "computed"
	if b.CacheInfo.FromCache {
		source = "cached"
	}
	fmt.Printf("\nResult %s at %s", source, b.CacheInfo.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
	if b.CacheInfo.CustomThresholds {
		fmt.Print(" (custom thresholds, cache bypassed)")
	}
	fmt.Println()
}

// --- cache command ---

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the result cache",
}

var cacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached result bundles",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openCache()
		if err != nil {
			return err
		}
		entries, err := store.List()
		if err != nil {
			return err
		}

		if len(entries) == 0 {
			fmt.Println("Cache is empty.")
			return nil
		}
		for _, e := range entries {
			fmt.Printf("  %s  (stored %s)\n", e.Key, e.StoredAt.Format("2006-01-02 15:04"))
		}
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all cached result bundles",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openCache()
		if err != nil {
			return err
		}
		removed, err := store.Clear()
		if err != nil {
			return err
		}
		fmt.Printf("Removed %d cache entries.\n", removed)
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheListCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}

// --- serve command ---

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the JSON API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		store, err := openCache()
		if err != nil {
			return err
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		engine := regstats.New(db, store, cfg.ThresholdSet(), cfg.TierBounds())
		fmt.Printf("Starting server at http://localhost:%d\n", port)
		fmt.Println("Press Ctrl+C to stop")
		return server.Serve(engine, port)
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to run server on (default from config)")
}

func openDB() (*database.DB, error) {
	dataDir := cfg.GetDataDir()
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	dbPath := filepath.Join(dataDir, "regstats.db")
	return database.Open(dbPath)
}

func openCache() (*cache.FileStore, error) {
	return cache.NewFileStore(cfg.GetCacheDir(), cfg.CacheTTL(), cfg.Cache.MaxEntries)
}
