package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/haytac/message-formatter/internal/database"
)

// NewRoomCmd creates the room command.
func NewRoomCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "room",
		Short:   "Manage the room directory used for #slug links",
		Aliases: []string{"rooms"},
	}
	cmd.AddCommand(newRoomAddCmd(), newRoomListCmd(), newRoomRemoveCmd())
	return cmd
}

func newRoomAddCmd() *cobra.Command {
	var name string
	addCmd := &cobra.Command{
		Use:   "add <slug>",
		Short: "Add a room",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			room := &database.Room{Slug: args[0]}
			if cmd.Flags().Changed("name") {
				room.Name = &name
			}
			id, err := database.NewRoomStore(db).CreateRoom(cmd.Context(), room)
			if err != nil {
				return fmt.Errorf("failed to add room: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Room '#%s' added with ID: %d\n", room.Slug, id)
			return nil
		},
	}
	addCmd.Flags().StringVar(&name, "name", "", "Display name of the room")
	return addCmd
}

func newRoomListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List rooms",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			rooms, err := database.NewRoomStore(db).ListRooms(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list rooms: %w", err)
			}
			out := cmd.OutOrStdout()
			if len(rooms) == 0 {
				fmt.Fprintln(out, "No rooms configured.")
				return nil
			}
			for _, r := range rooms {
				name := ""
				if r.Name != nil {
					name = *r.Name
				}
				fmt.Fprintf(out, "ID: %d, Slug: #%s, Name: %s\n", r.ID, r.Slug, name)
			}
			return nil
		},
	}
}

func newRoomRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "remove <slug>",
		Aliases: []string{"rm"},
		Short:   "Remove a room",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			if err := database.NewRoomStore(db).DeleteRoom(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("failed to remove room: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Room '#%s' removed.\n", args[0])
			return nil
		},
	}
}
