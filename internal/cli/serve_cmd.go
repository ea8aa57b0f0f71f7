package cli

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/haytac/message-formatter/internal/app"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP and WebSocket formatting service",
		RunE: func(cmd *cobra.Command, args []string) error {
			if AppCfg == nil {
				return fmt.Errorf("configuration not loaded")
			}
			application, err := app.NewApplication(cmd.Context(), AppCfg)
			if err != nil {
				log.Error().Err(err).Msg("Failed to initialize application")
				return fmt.Errorf("failed to initialize application: %w", err)
			}
			return application.Run(cmd.Context())
		},
	}
}
