package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
)

var (
	settingsPath string
	format       string
	outputDir    string
	storeName    string
	listFile     string
	avatarWait   time.Duration
	embedMode    bool
	debugMode    bool
)

var rootCmd = &cobra.Command{
	Use:   "ldcard [source...]",
	Short: "Render article cards from JSON-LD metadata",
	Long: `Reads JSON-LD from web pages or files, links each Article to its author,
resolves missing author avatars from the Bluesky AppView and renders a card.`,
	Run: func(cmd *cobra.Command, args []string) {
		sources := args
		if listFile != "" {
			listed, err := loadSourceList(listFile)
			if err != nil {
				log.Fatalf("Failed to load sources: %v", err)
			}
			sources = append(sources, listed...)
		}
		if len(sources) == 0 {
			log.Fatal("At least one source is required: pass URLs or files, or use --list")
		}

		// Build config overrides
		overrides := &ConfigOverrides{Embed: embedMode}
		if cmd.Flags().Changed("config") {
			overrides.SettingsPath = &settingsPath
		}
		if cmd.Flags().Changed("format") {
			overrides.Format = &format
		}
		if cmd.Flags().Changed("out") {
			overrides.OutputDirectory = &outputDir
		}
		if cmd.Flags().Changed("store") {
			overrides.Store = &storeName
		}
		if cmd.Flags().Changed("wait") {
			overrides.Wait = &avatarWait
		}

		config, err := NewConfig(overrides)
		if err != nil {
			log.Fatalf("Invalid configuration: %v", err)
		}

		level, _ := parseLogLevel(config.Settings.LogLevel)
		if debugMode {
			level = slog.LevelDebug
		}
		logger := newLogger(os.Stderr, level)

		processor, err := NewCardProcessor(config, logger)
		if err != nil {
			log.Fatalf("Failed to create processor: %v", err)
		}
		defer processor.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		results := processor.ProcessSources(ctx, sources)
		if failed := printSummary(os.Stderr, results); failed > 0 {
			processor.Close()
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.Flags().StringVar(&settingsPath, "config", "", "Path to settings file (default .ldcard/settings.yaml)")
	rootCmd.Flags().StringVar(&format, "format", formatHTML, "Output format: html or markdown")
	rootCmd.Flags().StringVar(&outputDir, "out", "", "Output directory, or - for stdout")
	rootCmd.Flags().StringVar(&storeName, "store", "", "Avatar store: memory, sqlite or redis")
	rootCmd.Flags().StringVar(&listFile, "list", "", "YAML file listing sources")
	rootCmd.Flags().DurationVar(&avatarWait, "wait", 0, "How long to wait for avatar lookups")
	rootCmd.Flags().BoolVar(&embedMode, "embed", false, "Inject the card into the source page's container")
	rootCmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
