// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/naka-gawa/github-projects/internal/chart"
	"github.com/naka-gawa/github-projects/internal/document"
	"github.com/naka-gawa/github-projects/internal/domain"
	"github.com/naka-gawa/github-projects/internal/gateway"
	"github.com/naka-gawa/github-projects/internal/usecase"
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Collects repos & gists and rewrites the Projects table",
	Long: `Collects the repositories the user owns or has contributed to, computes
per-language statistics with one bar chart per counter, and replaces the
Projects section of the README with a freshly generated markdown table.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		// Get the verbose flag from the root command to set up the logger.
		verbose, _ := cmd.InheritedFlags().GetBool("verbose")
		logger := log.New(io.Discard, "", log.LstdFlags) // Default: discard all logs.
		if verbose {
			logger.SetOutput(os.Stderr) // If verbose, log to standard error.
		}

		username := viper.GetString("username")
		tokenFile := viper.GetString("token-file")
		includePrivate := viper.GetBool("include-private")
		repoLimit := viper.GetInt("repo-limit")
		readmePath := viper.GetString("readme")
		figureDir := viper.GetString("figure-dir")

		color.Cyan("Logging into GitHub...")
		fetcher, err := buildFetcher(username, tokenFile, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to log in: %v\n", err)
			os.Exit(1)
		}

		renderer, err := chart.NewSVGRenderer(figureDir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to prepare figure directory: %v\n", err)
			os.Exit(1)
		}
		aggregator := usecase.NewAggregator(fetcher, renderer, logger)

		color.Cyan("Collecting repos & gists...")
		projects, _, err := aggregator.Collect(ctx, usecase.Options{
			IncludePrivate: includePrivate,
			RepoLimit:      repoLimit,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to collect repos & gists: %v\n", err)
			os.Exit(1)
		}

		color.Cyan("Updating the Projects table...")
		err = document.UpdateFile(readmePath, domain.ProjectsHeader, projects.MarkdownTable(), document.DefaultMaxScan)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to update %s: %v\n", readmePath, err)
			os.Exit(1)
		}
		color.Green("Done!")
	},
}

// buildFetcher picks the authentication path: a token file when given,
// otherwise username plus an interactively solicited password.
func buildFetcher(username, tokenFile string, logger *log.Logger) (gateway.Fetcher, error) {
	if tokenFile != "" {
		token, err := readTokenFile(tokenFile)
		if err != nil {
			return nil, err
		}
		return gateway.NewTokenGateway(token, logger)
	}
	if username == "" {
		return nil, fmt.Errorf("either --username or --token-file is required")
	}
	password, err := promptPassword("Enter your GitHub password: ")
	if err != nil {
		return nil, fmt.Errorf("failed to read password: %w", err)
	}
	return gateway.NewBasicAuthGateway(username, password, logger)
}

// readTokenFile reads the access token from the first line of the file.
func readTokenFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read token file %s: %w", path, err)
	}
	token, _, _ := strings.Cut(string(data), "\n")
	token = strings.TrimSpace(token)
	if token == "" {
		return "", fmt.Errorf("token file %s is empty", path)
	}
	return token, nil
}

// promptPassword reads a password from the terminal without echoing.
func promptPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	b, err := term.ReadPassword(int(syscall.Stdin)) //nolint:unconvert // int conversion needed on some platforms
	fmt.Fprintln(os.Stderr)                         // newline after password input
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func init() {
	rootCmd.AddCommand(updateCmd)
	updateCmd.Flags().StringP("username", "u", "", "GitHub username for interactive password login")
	updateCmd.Flags().StringP("token-file", "t", "", "Path to a text file containing a GitHub access token")
	updateCmd.Flags().Bool("include-private", false, "Include private repos and secret gists in the table")
	updateCmd.Flags().Int("repo-limit", usecase.DefaultRepoLimit, "Max repositories to enumerate (0 for no limit)")
	updateCmd.Flags().String("readme", "README.md", "Path to the document holding the Projects section")
	updateCmd.Flags().String("figure-dir", "figures", "Directory for generated chart images")
	updateCmd.MarkFlagsMutuallyExclusive("username", "token-file")
	if err := viper.BindPFlags(updateCmd.Flags()); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bind flags: %v\n", err)
		os.Exit(1)
	}
}
