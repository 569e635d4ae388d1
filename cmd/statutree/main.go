package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/coolbeans/statutree/pkg/catalog"
	"github.com/coolbeans/statutree/pkg/corpus"
	"github.com/coolbeans/statutree/pkg/statute"
)

var version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "statutree",
		Short: "Hierarchical statute parser",
		Long: `Statutree converts statute XML (Act markup) into a normalized,
addressable hierarchy: stable node identifiers, parent/child links,
canonical legal citations, and associated text.

It produces:
  - A hierarchy JSON document for retrieval indexing
  - A SQLite citation catalog for citation lookup
  - Ancestor-path and summary queries over parsed acts`,
		Version: version,
	}

	rootCmd.AddCommand(parseCmd())
	rootCmd.AddCommand(fetchCmd())
	rootCmd.AddCommand(statsCmd())
	rootCmd.AddCommand(pathCmd())
	rootCmd.AddCommand(indexCmd())
	rootCmd.AddCommand(lookupCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func parseCmd() *cobra.Command {
	var inputPath string
	var outputPath string
	var actCode string
	var actName string
	var verbose bool

	cmd := &cobra.Command{
		Use:   "parse",
		Short: "Parse an Act XML file into a hierarchy JSON document",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := statute.DefaultConfig()
			if actCode != "" {
				config.ActCode = actCode
			}
			if actName != "" {
				config.ActName = actName
			}
			if verbose {
				config.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
					Level: slog.LevelDebug,
				}))
			}

			fmt.Printf("Parsing %s...\n", inputPath)
			parser := statute.New(config)
			hierarchy, err := parser.ParseFile(inputPath)
			if err != nil {
				return err
			}
			fmt.Printf("Parsed %d nodes\n", hierarchy.Len())

			if err := statute.WriteFile(hierarchy, outputPath); err != nil {
				return err
			}
			fmt.Printf("Saved hierarchy to %s\n", outputPath)

			printStats(hierarchy.Stats())
			return nil
		},
	}

	cmd.Flags().StringVarP(&inputPath, "input", "i", "data/statutes/federal/C-44-CBCA.xml", "Path to the Act XML file")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "data/processed/statutes/cbca_hierarchy.json", "Path to the output JSON file")
	cmd.Flags().StringVar(&actCode, "act-code", "", "Act short code (default: cbca)")
	cmd.Flags().StringVar(&actName, "act-name", "", "Full act name")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log skipped and ignored elements")
	return cmd
}

func fetchCmd() *cobra.Command {
	var dataRoot string
	var cacheDir string
	var filename string
	var retries int
	var retryDelay time.Duration

	cmd := &cobra.Command{
		Use:   "fetch [corpus-name] [url]",
		Short: "Download a named corpus to the local data root",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			config := corpus.DefaultConfig()
			config.DataRoot = dataRoot
			config.CacheDir = cacheDir
			config.MaxRetries = retries
			config.RetryDelay = retryDelay
			config.Logger = slog.New(slog.NewTextHandler(os.Stderr, nil))

			fetcher, err := corpus.NewFetcher(config)
			if err != nil {
				return err
			}

			target := corpus.Corpus{Name: args[0], URL: args[1], Filename: filename}
			fmt.Printf("Fetching corpus %s...\n", target.Name)
			result, err := fetcher.Fetch(context.Background(), target)
			if err != nil {
				return err
			}

			if result.Skipped {
				fmt.Printf("Already materialized at %s\n", result.LocalPath)
			} else {
				fmt.Printf("Saved %d bytes to %s (%d attempt(s))\n",
					result.BytesWritten, result.LocalPath, result.Attempts)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dataRoot, "data-root", corpus.DefaultDataRoot, "Root directory for downloaded corpora")
	cmd.Flags().StringVar(&cacheDir, "cache-dir", "", "Directory for fetch-result caching (empty = disabled)")
	cmd.Flags().StringVar(&filename, "filename", "", "Local filename (default: last URL segment)")
	cmd.Flags().IntVar(&retries, "retries", corpus.DefaultMaxRetries, "Maximum download attempts")
	cmd.Flags().DurationVar(&retryDelay, "retry-delay", corpus.DefaultRetryDelay, "Fixed delay between attempts")
	return cmd
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats [hierarchy.json]",
		Short: "Print summary statistics for a saved hierarchy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hierarchy, err := statute.LoadFile(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("%s (%s)\n", hierarchy.ActName, strings.ToUpper(hierarchy.ActCode))
			printStats(hierarchy.Stats())
			return nil
		},
	}
}

func pathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path [hierarchy.json] [node-id]",
		Short: "Print the ancestor path for a node",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			hierarchy, err := statute.LoadFile(args[0])
			if err != nil {
				return err
			}
			node := hierarchy.Node(args[1])
			if node == nil {
				return fmt.Errorf("node %q not found", args[1])
			}
			fmt.Println(strings.Join(hierarchy.Path(node.ID), " > "))
			fmt.Printf("Citation: %s\n", node.Citation)
			return nil
		},
	}
}

func indexCmd() *cobra.Command {
	var databasePath string

	cmd := &cobra.Command{
		Use:   "index [hierarchy.json]",
		Short: "Build the SQLite citation catalog from a saved hierarchy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hierarchy, err := statute.LoadFile(args[0])
			if err != nil {
				return err
			}

			cat, err := catalog.Open(databasePath)
			if err != nil {
				return err
			}
			defer cat.Close()

			if err := cat.Build(hierarchy); err != nil {
				return err
			}
			fmt.Printf("Indexed %d nodes into %s\n", hierarchy.Len(), databasePath)
			return nil
		},
	}

	cmd.Flags().StringVar(&databasePath, "db", "data/processed/statutes/catalog.db", "Path to the catalog database")
	return cmd
}

func lookupCmd() *cobra.Command {
	var databasePath string

	cmd := &cobra.Command{
		Use:   "lookup [citation]",
		Short: "Look up a node by its citation string",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := catalog.Open(databasePath)
			if err != nil {
				return err
			}
			defer cat.Close()

			entry, err := cat.LookupCitation(args[0])
			if err != nil {
				return err
			}

			fmt.Printf("Id:       %s\n", entry.ID)
			fmt.Printf("Kind:     %s\n", entry.Kind)
			fmt.Printf("Path:     %s\n", entry.Path)
			if entry.Title != "" {
				fmt.Printf("Title:    %s\n", entry.Title)
			}
			if entry.Text != "" {
				fmt.Printf("Text:     %s\n", entry.Text)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&databasePath, "db", "data/processed/statutes/catalog.db", "Path to the catalog database")
	return cmd
}

// printStats renders the parse summary the way downstream tooling expects it.
func printStats(stats statute.Stats) {
	fmt.Println("\nParsing Summary:")
	fmt.Printf("  Total nodes: %d\n", stats.TotalNodes)
	fmt.Printf("  Parts: %d\n", stats.Parts)
	fmt.Printf("  Sections: %d\n", stats.Sections)
	fmt.Printf("  Subsections: %d\n", stats.Subsections)
	fmt.Printf("  Paragraphs: %d\n", stats.Paragraphs)
	fmt.Printf("  Subparagraphs: %d\n", stats.Subparagraphs)
}
