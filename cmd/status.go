package cmd

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/spf13/cobra"

	"github.com/chadmayfield/wxreport/internal/store"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show what the database holds",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	s, err := store.Open(cfg.Storage.Driver, cfg.DSN())
	if err != nil {
		return err
	}
	defer s.Close() //nolint:errcheck

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	location := cfg.DSN()
	if cfg.Storage.Driver == "postgres" {
		location = redactDSN(location)
	}
	return printStatus(ctx, cmd.OutOrStdout(), s, cfg.Storage.Driver, location)
}

func printStatus(ctx context.Context, w io.Writer, s store.Store, driver, location string) error {
	count, err := s.GetRecordCount(ctx)
	if err != nil {
		return err
	}
	oldest, newest, err := s.GetDataRange(ctx)
	if err != nil {
		return err
	}
	imports, err := s.GetImports(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "wxreport %s\n", Version)
	fmt.Fprintf(w, "Database: %s (%s)\n", driver, location)
	fmt.Fprintf(w, "  Records: %s\n", formatNumber(count))
	if !oldest.IsZero() {
		fmt.Fprintf(w, "  Data range: %s to %s\n", oldest.Format(time.DateTime), newest.Format(time.DateTime))
	}

	if len(imports) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Imports:")
		for _, imp := range imports {
			fmt.Fprintf(w, "  %s  %s  %s records  %s\n",
				imp.CreatedAt.Format(time.DateTime), imp.ID, formatNumber(imp.RecordCount), imp.Source)
		}
	}
	return nil
}

// formatNumber formats an integer with comma separators (e.g., 1,247,832).
func formatNumber(n int) string {
	s := fmt.Sprintf("%d", n)
	if n < 0 {
		return "-" + formatNumber(-n)
	}
	if len(s) <= 3 {
		return s
	}
	var result []byte
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			result = append(result, ',')
		}
		result = append(result, byte(c))
	}
	return string(result)
}

// redactDSN masks the password in a PostgreSQL DSN for safe display.
func redactDSN(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil {
		return dsn
	}
	return u.Redacted()
}
