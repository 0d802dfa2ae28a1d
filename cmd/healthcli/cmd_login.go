package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hoshinoai12345678/AI-Health-Assistant/internal/backend"
	"github.com/hoshinoai12345678/AI-Health-Assistant/internal/models"
)

var (
	loginUsername string
	loginPassword string
	loginCode     string
	loginNickname string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to the advisory backend",
	Long: `Log in with username/password credentials, or with a WeChat login
code via --code. The token and profile persist across runs until logout or
expiry.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := cmd.Context()
		var (
			user models.UserProfile
		)
		switch {
		case loginCode != "":
			user, err = a.sessions.LoginWx(ctx, backend.WxLoginRequest{
				Code:     loginCode,
				Nickname: loginNickname,
			})
		case loginUsername != "" && loginPassword != "":
			user, err = a.sessions.Login(ctx, backend.LoginRequest{
				Username: loginUsername,
				Password: loginPassword,
			})
		default:
			return fmt.Errorf("provide --username and --password, or --code")
		}
		if err != nil {
			return fmt.Errorf("login failed: %s", backend.Reason(err))
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (%s)\n", displayName(user), user.Role.DisplayName())
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out and forget the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		if !a.sessions.IsAuthenticated() {
			fmt.Fprintln(cmd.OutOrStdout(), "Already logged out.")
			return nil
		}
		if !confirm(cmd, "Log out?") {
			return nil
		}
		a.sessions.Logout(cmd.Context())
		fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
		return nil
	},
}

var meCmd = &cobra.Command{
	Use:   "me",
	Short: "Show the logged-in profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		user, ok := a.sessions.User()
		if !ok {
			fmt.Fprintln(cmd.OutOrStdout(), "Not logged in.")
			return nil
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, headerStyle.Render(displayName(user)))
		fmt.Fprintf(out, "  id:   %d\n", user.ID)
		fmt.Fprintf(out, "  role: %s\n", user.Role.DisplayName())
		if role, ok := a.sessions.SelectedRole(); ok {
			fmt.Fprintf(out, "  view: %s\n", role.DisplayName())
		}
		return nil
	},
}

func displayName(user models.UserProfile) string {
	if user.Nickname != "" {
		return user.Nickname
	}
	return fmt.Sprintf("user %d", user.ID)
}

// confirm asks a y/N question on the terminal; -y answers yes everywhere.
func confirm(cmd *cobra.Command, question string) bool {
	if assumeYes {
		return true
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N] ", question)
	reader := bufio.NewReader(cmd.InOrStdin())
	answer, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

func init() {
	loginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "Account username")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "Account password")
	loginCmd.Flags().StringVar(&loginCode, "code", "", "WeChat login code")
	loginCmd.Flags().StringVar(&loginNickname, "nickname", "", "Nickname to register with --code")
	logoutCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Skip the confirmation prompt")

	rootCmd.AddCommand(loginCmd, logoutCmd, meCmd)
}
