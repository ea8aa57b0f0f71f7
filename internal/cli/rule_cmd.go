package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/haytac/message-formatter/internal/database"
)

// NewRuleCmd creates the rule command.
func NewRuleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "rule",
		Short:   "Manage custom replacement rules",
		Aliases: []string{"rules", "replacement"},
	}
	cmd.AddCommand(newRuleAddCmd(), newRuleListCmd(), newRuleRemoveCmd())
	return cmd
}

func newRuleAddCmd() *cobra.Command {
	var position int
	addCmd := &cobra.Command{
		Use:   "add <pattern> <template>",
		Short: "Add a case-insensitive replacement rule",
		Long: `Add a replacement rule. The pattern uses RE2 syntax and always matches
case-insensitively. The template may reference groups as $1 or ${name}, and $& for
the whole match. Rules run in ascending --position order, ties by insertion.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			rule := &database.ReplacementRule{Position: position, Pattern: args[0], Template: args[1]}
			id, err := database.NewReplacementRuleStore(db).CreateRule(cmd.Context(), rule)
			if err != nil {
				return fmt.Errorf("failed to add rule: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Rule added with ID: %d\n", id)
			return nil
		},
	}
	addCmd.Flags().IntVar(&position, "position", 0, "Ordering key; lower runs first")
	return addCmd
}

func newRuleListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List replacement rules in application order",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			rules, err := database.NewReplacementRuleStore(db).ListRules(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list rules: %w", err)
			}
			out := cmd.OutOrStdout()
			if len(rules) == 0 {
				fmt.Fprintln(out, "No replacement rules configured.")
				return nil
			}
			for _, r := range rules {
				fmt.Fprintf(out, "ID: %d, Position: %d, Pattern: %q, Template: %q\n", r.ID, r.Position, r.Pattern, r.Template)
			}
			return nil
		},
	}
}

func newRuleRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "remove <id>",
		Aliases: []string{"rm"},
		Short:   "Remove a replacement rule",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid rule ID %q: %w", args[0], err)
			}
			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			if err := database.NewReplacementRuleStore(db).DeleteRule(cmd.Context(), id); err != nil {
				return fmt.Errorf("failed to remove rule: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Rule %d removed.\n", id)
			return nil
		},
	}
}
