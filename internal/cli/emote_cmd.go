package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/haytac/message-formatter/internal/database"
)

// NewEmoteCmd creates the emote command.
func NewEmoteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "emote",
		Short:   "Manage the emote catalog used for :key: images",
		Aliases: []string{"emotes"},
	}
	cmd.AddCommand(newEmoteAddCmd(), newEmoteListCmd(), newEmoteRemoveCmd())
	return cmd
}

func newEmoteAddCmd() *cobra.Command {
	var size int
	addCmd := &cobra.Command{
		Use:   "add <key> <image_url>",
		Short: "Add an emote",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			emote := &database.Emote{Key: args[0], ImageURL: args[1]}
			if cmd.Flags().Changed("size") {
				emote.Size = &size
			}
			id, err := database.NewEmoteStore(db).CreateEmote(cmd.Context(), emote)
			if err != nil {
				return fmt.Errorf("failed to add emote: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Emote ':%s:' added with ID: %d\n", emote.Key, id)
			return nil
		},
	}
	addCmd.Flags().IntVar(&size, "size", 0, "Width and height in pixels (default: formatter.default_emote_size)")
	return addCmd
}

func newEmoteListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List emotes",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			emotes, err := database.NewEmoteStore(db).ListEmotes(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list emotes: %w", err)
			}
			out := cmd.OutOrStdout()
			if len(emotes) == 0 {
				fmt.Fprintln(out, "No emotes configured.")
				return nil
			}
			for _, e := range emotes {
				size := "default"
				if e.Size != nil {
					size = strconv.Itoa(*e.Size)
				}
				fmt.Fprintf(out, ":%s: %s (size %s)\n", e.Key, e.ImageURL, size)
			}
			return nil
		},
	}
}

func newEmoteRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "remove <key>",
		Aliases: []string{"rm"},
		Short:   "Remove an emote",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			if err := database.NewEmoteStore(db).DeleteEmote(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("failed to remove emote: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Emote ':%s:' removed.\n", args[0])
			return nil
		},
	}
}
