package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"screening-backend/internal/calendar"
)

var calendarAuthCmd = &cobra.Command{
	Use:   "calendar-auth",
	Short: "Authorize calendar access and cache the token file",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg := cliConfig()
		oauthCfg, err := calendar.OAuthConfig(cfg.CalendarCredentialsFile)
		if err != nil {
			return err
		}

		code, _ := cmd.Flags().GetString("code")
		if strings.TrimSpace(code) == "" {
			fmt.Fprintf(cmd.OutOrStdout(), "Go to the following link in your browser then type the authorization code:\n%v\n", calendar.AuthCodeURL(oauthCfg))
			scanner := bufio.NewScanner(cmd.InOrStdin())
			if !scanner.Scan() {
				return errors.New("no authorization code provided")
			}
			code = scanner.Text()
		}

		if err := calendar.ExchangeAndSave(cmd.Context(), oauthCfg, code, cfg.CalendarTokenFile); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saving credential file to: %s\n", cfg.CalendarTokenFile)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(calendarAuthCmd)
	calendarAuthCmd.Flags().String("code", "", "authorization code; prompted for when empty")
}
