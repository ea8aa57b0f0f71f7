package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/haytac/message-formatter/internal/config"
	"github.com/haytac/message-formatter/internal/database"
	"github.com/haytac/message-formatter/internal/logging"
)

var (
	cfgFile string
	AppCfg  *config.AppConfig // populated in PersistentPreRunE
)

var RootCmd = &cobra.Command{
	Use:   "message-formatter",
	Short: "Render chat messages into HTML fragments.",
	Long: `message-formatter turns raw chat message text into display markup: mentions,
room links, upload links, embedded media, emotes and operator-defined replacements.
It keeps its room directory, emote catalog and replacement rules in SQLite.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loadedCfg, err := config.LoadConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("error loading config: %w", err)
		}
		AppCfg = loadedCfg
		logging.Setup(AppCfg.Log)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	RootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml, $HOME/.message-formatter/config.yaml)")

	RootCmd.AddCommand(NewServeCmd())
	RootCmd.AddCommand(NewFormatCmd())
	RootCmd.AddCommand(NewRoomCmd())
	RootCmd.AddCommand(NewEmoteCmd())
	RootCmd.AddCommand(NewRuleCmd())
	RootCmd.AddCommand(NewCatalogCmd())
	RootCmd.AddCommand(NewDbCmd())
}

// openDB connects to the configured catalog database.
func openDB() (*database.DB, error) {
	if AppCfg == nil {
		return nil, fmt.Errorf("configuration not loaded")
	}
	db, err := database.Connect(AppCfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	return db, nil
}
