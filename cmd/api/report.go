package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"medicare-pms/internal/views"
	"medicare-pms/pkg/utils"

	"github.com/spf13/cobra"
)

func reportCmd() *cobra.Command {
	var (
		date   string
		output string
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the daily visit report as CSV",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			day, err := utils.ParseDay(date, a.loc, time.Now())
			if err != nil {
				return fmt.Errorf("--date: %w", err)
			}

			patients, err := a.store.ListAll(cmd.Context())
			if err != nil {
				return err
			}
			rows := views.DailyVisits(patients, day)

			var w io.Writer = cmd.OutOrStdout()
			if output != "" {
				if output == "auto" {
					output = views.ReportFilename(day)
				}
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}

			if err := views.WriteCSV(w, rows, a.loc); err != nil {
				return err
			}
			a.logger.Info().Str("date", day.Format(time.DateOnly)).Int("visits", len(rows)).Msg("report written")
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "report day as YYYY-MM-DD (default today)")
	cmd.Flags().StringVarP(&output, "output", "o", "", `output file, "auto" for the default file name (default stdout)`)
	return cmd
}
