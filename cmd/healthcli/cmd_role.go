package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hoshinoai12345678/AI-Health-Assistant/internal/models"
)

var roleCmd = &cobra.Command{
	Use:   "role [teacher|student|parent|admin]",
	Short: "Show or select the active role",
	Long: `Without arguments, shows the active role. With a role id, selects
and persists it; screens are scoped to the selected role until "role clear".`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		out := cmd.OutOrStdout()
		if len(args) == 0 {
			if role, ok := a.sessions.SelectedRole(); ok {
				fmt.Fprintf(out, "Active role: %s\n", role.DisplayName())
			} else {
				fmt.Fprintln(out, "No role selected. Pick one of: teacher, student, parent, admin.")
			}
			return nil
		}

		role := models.Role(args[0])
		if !role.Valid() {
			return fmt.Errorf("unknown role %q (teacher, student, parent, admin)", args[0])
		}
		if err := a.machine.SelectRole(cmd.Context(), role); err != nil {
			return fmt.Errorf("select role: %w", err)
		}
		fmt.Fprintf(out, "Role set to %s.\n", role.DisplayName())
		return nil
	},
}

var roleClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Forget the selected role and return to the role picker",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.machine.ChangeRole(cmd.Context()); err != nil {
			return fmt.Errorf("clear role: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Role cleared.")
		return nil
	},
}

func init() {
	roleCmd.AddCommand(roleClearCmd)
	rootCmd.AddCommand(roleCmd)
}
