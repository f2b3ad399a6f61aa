package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Sunny2307/GreenShield/pkg/client"
)

// version is overridden by goreleaser via -ldflags "-X main.version=...".
var version = "dev"

var (
	serverURL string
	cfgFile   string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "greenshield",
	Short: "GreenShield mangrove report validation CLI",
	Long: `greenshield is the command-line interface for the GreenShield
validation service.

It submits citizen mangrove reports for satellite cross-validation and
inspects the health of a running service.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if cfgFile != "" {
			viper.SetConfigFile(cfgFile)
		} else {
			home, _ := os.UserHomeDir()
			viper.AddConfigPath(home + "/.greenshield")
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
		viper.AutomaticEnv()
		_ = viper.ReadInConfig()

		if serverURL == "" {
			serverURL = viper.GetString("server_url")
		}
		if serverURL == "" {
			serverURL = "http://localhost:8080"
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.greenshield/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "GreenShield service URL (default http://localhost:8080)")

	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(versionCmd)
}

// ── validate ─────────────────────────────────────────────────────────────────

var (
	valFile        string
	valPhotoURL    string
	valLatitude    float64
	valLongitude   float64
	valDescription string
	valReporter    string
	valTimestamp   string
	valFormat      string
	valTimeout     time.Duration
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Submit a citizen report for validation",
	Long: `validate submits a report to the GreenShield service and prints the
resulting decision.

The report comes either from a JSON file:

  greenshield validate --file report.json

or from flags:

  greenshield validate --photo-url https://example.com/mangrove.jpg \
      --description "Cleared mangrove patch near the river mouth" \
      --reporter citizen_042 --lat 1.29 --lon 103.85`,
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().StringVar(&valFile, "file", "", "JSON file with the raw report payload")
	validateCmd.Flags().StringVar(&valPhotoURL, "photo-url", "", "URL of the report photo")
	validateCmd.Flags().Float64Var(&valLatitude, "lat", 0, "Report latitude (used when the photo has no GPS data)")
	validateCmd.Flags().Float64Var(&valLongitude, "lon", 0, "Report longitude (used when the photo has no GPS data)")
	validateCmd.Flags().StringVar(&valDescription, "description", "", "Report description")
	validateCmd.Flags().StringVar(&valReporter, "reporter", "", "Reporter identifier")
	validateCmd.Flags().StringVar(&valTimestamp, "timestamp", "", "Report timestamp (RFC3339; defaults to now)")
	validateCmd.Flags().StringVar(&valFormat, "format", "text", "Output format: text or json")
	validateCmd.Flags().DurationVar(&valTimeout, "timeout", 2*time.Minute, "Request timeout")
}

func runValidate(cmd *cobra.Command, args []string) error {
	req, err := buildRequest(cmd)
	if err != nil {
		return err
	}

	c, err := client.New(serverURL, client.WithTimeout(valTimeout))
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), valTimeout)
	defer cancel()

	result, err := c.ValidateReport(ctx, req)
	if err != nil {
		var apiErr *client.APIError
		if errors.As(err, &apiErr) {
			return fmt.Errorf("report rejected: %w", apiErr)
		}
		return err
	}

	if valFormat == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	printDecision(result)
	return nil
}

func buildRequest(cmd *cobra.Command) (client.ValidateRequest, error) {
	if valFile != "" {
		data, err := os.ReadFile(valFile)
		if err != nil {
			return client.ValidateRequest{}, fmt.Errorf("read report file: %w", err)
		}
		var req client.ValidateRequest
		if err := json.Unmarshal(data, &req); err != nil {
			return client.ValidateRequest{}, fmt.Errorf("parse report file: %w", err)
		}
		return req, nil
	}

	ts := valTimestamp
	if ts == "" {
		ts = time.Now().UTC().Format(time.RFC3339)
	}
	reporter := valReporter
	if reporter == "" {
		reporter = "cli"
	}

	req := client.ValidateRequest{
		Timestamp:   &ts,
		Description: valDescription,
		ReporterID:  &reporter,
	}
	if valPhotoURL != "" {
		req.PhotoURL = &valPhotoURL
	}
	if cmd.Flags().Changed("lat") || cmd.Flags().Changed("lon") {
		req.Latitude = &valLatitude
		req.Longitude = &valLongitude
	}
	if req.PhotoURL == nil && req.Latitude == nil {
		return client.ValidateRequest{}, errors.New("either --file, --photo-url, or --lat/--lon is required")
	}
	return req, nil
}

func printDecision(r *client.ValidateResult) {
	d := r.Decision
	fmt.Printf("Report:      %s\n", d.ReportID)
	fmt.Printf("Confidence:  %.3f (%s)\n", d.ConfidenceScore, d.ConfidenceLevel)
	fmt.Printf("Anomaly:     %v (score %.3f)\n", d.AnomalyDetected, d.AnomalyScore)
	fmt.Printf("Urgency:     %s\n", d.UrgencyLevel)
	fmt.Printf("Satellite:   %s", r.Satellite)
	if r.Degraded {
		fmt.Printf(" (degraded: no photo evidence)")
	}
	fmt.Println()
	fmt.Printf("Points:      %d\n", d.PointsEarned)
	fmt.Printf("Badges:      %s\n", strings.Join(d.Badges, ", "))
	fmt.Printf("\n%s\n\nRecommendations:\n", d.Summary)
	for _, rec := range d.Recommendations {
		fmt.Printf("  - %s\n", rec)
	}
	if len(r.Validation.Warnings) > 0 {
		fmt.Println("\nWarnings:")
		for _, w := range r.Validation.Warnings {
			fmt.Printf("  - %s\n", w)
		}
	}
}

// ── status ───────────────────────────────────────────────────────────────────

var statusFormat string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the health of the validation service",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := client.New(serverURL)
		if err != nil {
			return err
		}

		st, err := c.Status(context.Background())
		if err != nil {
			return fmt.Errorf("fetch status: %w", err)
		}

		if statusFormat == "json" {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(st)
		}

		fmt.Printf("Status: %s (up %.0fs)\n", st.Status, st.Uptime)
		for name, state := range st.Components {
			fmt.Printf("  %-12s %s\n", name, state)
		}
		return nil
	},
}

func init() {
	statusCmd.Flags().StringVar(&statusFormat, "format", "text", "Output format: text or json")
}

// ── version ──────────────────────────────────────────────────────────────────

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the CLI version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("greenshield %s\n", version)
	},
}
