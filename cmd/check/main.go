package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/bilgisen/folio/internal/bootstrap"
	"github.com/bilgisen/folio/internal/config"
	"github.com/bilgisen/folio/internal/content"
	"github.com/bilgisen/folio/internal/logger"
	"github.com/spf13/cobra"
)

var (
	contentDir string
	tagsFile   string
	format     string
	skipNow    bool
)

var errCheckFailed = errors.New("content check failed")

var rootCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate every update entry before publishing",
	Long: `Resolve all update entries exactly as the server does and report every
frontmatter, date and tag violation. Exits non-zero when any entry is invalid.

Examples:
  check                          # Check CONTENT_DIR
  check --dir ./content/updates  # Check another directory
  check --format json            # Machine readable report`,
	SilenceUsage: true,
	RunE:         runCheckCommand,
}

func init() {
	rootCmd.Flags().StringVarP(&contentDir, "dir", "d", "", "content directory (overrides CONTENT_DIR)")
	rootCmd.Flags().StringVar(&tagsFile, "tags", "", "tag vocabulary file (overrides TAGS_FILE)")
	rootCmd.Flags().StringVarP(&format, "format", "f", "text", "output format (text, json)")
	rootCmd.Flags().BoolVar(&skipNow, "skip-now", false, "do not check the now section")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runCheckCommand(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadE()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if contentDir != "" {
		cfg.ContentSource = config.ContentSourceFS
		cfg.ContentDir = contentDir
	}
	if tagsFile != "" {
		cfg.TagsFile = tagsFile
	}
	// the render cache is irrelevant for a one-shot check
	cfg.RedisURL = ""

	if err := logger.Init(logger.Config{Level: "warn", Output: "stderr", Pretty: true}); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
	defer cancel()

	pipeline, err := bootstrap.Build(ctx, cfg)
	if err != nil {
		return err
	}
	defer pipeline.Close()

	report, err := check(ctx, pipeline, !skipNow)
	if err != nil {
		return err
	}
	if err := report.write(cmd.OutOrStdout(), format); err != nil {
		return err
	}
	if report.Invalid > 0 {
		return errCheckFailed
	}
	return nil
}

// FileResult is the outcome for one content file
type FileResult struct {
	File       string              `json:"file"`
	Valid      bool                `json:"valid"`
	Violations []content.Violation `json:"violations,omitempty"`
	Error      string              `json:"error,omitempty"`
}

// Report summarises a check run
type Report struct {
	Vocabulary string       `json:"vocabulary"`
	Total      int          `json:"total"`
	Invalid    int          `json:"invalid"`
	Results    []FileResult `json:"results"`
}

func check(ctx context.Context, pipeline *bootstrap.Content, withNow bool) (*Report, error) {
	names, err := pipeline.Store.List(ctx)
	if err != nil {
		return nil, err
	}

	report := &Report{Vocabulary: pipeline.Vocabulary.Version}
	for _, name := range names {
		if content.IsCompanion(name) {
			continue
		}
		_, err := pipeline.Resolver.ResolveFile(ctx, name)
		report.add(resultFor(name, err))
	}

	if withNow {
		_, err := pipeline.Now.Get(ctx)
		report.add(resultFor("now", err))
	}

	return report, nil
}

func resultFor(name string, err error) FileResult {
	res := FileResult{File: name, Valid: err == nil}
	if err == nil {
		return res
	}

	var ie *content.IntegrityError
	if errors.As(err, &ie) {
		res.Violations = ie.Violations
	} else {
		res.Error = err.Error()
	}
	return res
}

func (r *Report) add(res FileResult) {
	r.Total++
	if !res.Valid {
		r.Invalid++
	}
	r.Results = append(r.Results, res)
}

func (r *Report) write(w io.Writer, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case "text":
	default:
		return fmt.Errorf("unknown format %q", format)
	}

	for _, res := range r.Results {
		if res.Valid {
			fmt.Fprintf(w, "ok    %s\n", res.File)
			continue
		}
		fmt.Fprintf(w, "FAIL  %s\n", res.File)
		for _, v := range res.Violations {
			fmt.Fprintf(w, "      %s: %s\n", v.Field, v.Message)
		}
		if res.Error != "" {
			fmt.Fprintf(w, "      %s\n", res.Error)
		}
	}
	fmt.Fprintf(w, "\n%d checked, %d invalid (tag vocabulary v%s)\n", r.Total, r.Invalid, r.Vocabulary)
	return nil
}
