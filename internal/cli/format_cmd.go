package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/haytac/message-formatter/internal/app"
	"github.com/haytac/message-formatter/internal/database"
	"github.com/haytac/message-formatter/internal/formatter"
	"github.com/haytac/message-formatter/internal/metrics"
)

// NewFormatCmd creates the format command.
func NewFormatCmd() *cobra.Command {
	var location string
	cmd := &cobra.Command{
		Use:   "format [text]",
		Short: "Format a message against the stored catalog and print the HTML",
		Long:  `Formats the given text, or standard input when no argument is given.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var text string
			if len(args) == 1 {
				text = args[0]
			} else {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("reading stdin: %w", err)
				}
				text = string(data)
			}

			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			pageURL := location
			if pageURL == "" {
				pageURL = AppCfg.Server.DefaultLocation
			}
			loc, err := formatter.ParseLocation(pageURL)
			if err != nil {
				return err
			}

			snap, err := database.NewCatalogStore(db).Snapshot(cmd.Context())
			if err != nil {
				return err
			}
			fctx := formatter.NewContext(snap.Rooms, snap.Emotes, snap.Replacements, loc)

			start := time.Now()
			out, err := app.NewFormatter(AppCfg.Formatter).Format(text, fctx)
			metrics.FormatDuration.WithLabelValues("cli").Observe(time.Since(start).Seconds())
			if err != nil {
				metrics.MessagesFormatted.WithLabelValues("cli", "error").Inc()
				return fmt.Errorf("formatting message: %w", err)
			}
			metrics.MessagesFormatted.WithLabelValues("cli", "ok").Inc()
			fmt.Fprintln(cmd.OutOrStdout(), strings.TrimRight(out, "\n"))
			return nil
		},
	}
	cmd.Flags().StringVar(&location, "location", "", "page URL the message is shown on (default: server.default_location)")
	return cmd
}
