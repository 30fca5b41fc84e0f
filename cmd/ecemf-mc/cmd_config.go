package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	iiasa "github.com/Renato-Rodrigues/ecemf-mc"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration and stored credentials",
	}
	cmd.AddCommand(newSetCredentialsCmd(), newDeleteCredentialsCmd(), newConfigShowCmd(a))
	return cmd
}

func newSetCredentialsCmd() *cobra.Command {
	var username string
	cmd := &cobra.Command{
		Use:   "set-credentials",
		Short: "Save the IIASA login to the system keyring",
		Long: `Save the IIASA login to the system keyring.

This only needs to be done once. The credentials are stored in your system's
secure credential storage (Keychain on macOS, Credential Manager on Windows,
Secret Service on Linux).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			stdin := cmd.InOrStdin()
			in := bufio.NewReader(stdin)
			out := cmd.OutOrStdout()
			if username == "" {
				fmt.Fprint(out, "Username: ")
				line, err := in.ReadString('\n')
				if err != nil && !errors.Is(err, io.EOF) {
					return err
				}
				username = strings.TrimSpace(line)
			}

			fmt.Fprint(out, "Password: ")
			password, err := readPassword(stdin, in)
			fmt.Fprintln(out)
			if err != nil {
				return err
			}

			if err := iiasa.SaveCredentials(&iiasa.Credentials{Username: username, Password: password}); err != nil {
				return err
			}
			fmt.Fprintf(out, "saved credentials of %s\n", username)
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "IIASA account name")
	return cmd
}

// readPassword reads without echo when stdin is a terminal, or a plain line
// from in otherwise. in must buffer stdin.
func readPassword(stdin io.Reader, in *bufio.Reader) (string, error) {
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		return string(b), err
	}
	line, err := in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func newDeleteCredentialsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete-credentials",
		Short: "Remove the IIASA login from the system keyring",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := iiasa.DeleteCredentials(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "deleted stored credentials")
			return nil
		},
	}
}

func newConfigShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "auth_url:  %s\n", a.config.AuthURL)
			fmt.Fprintf(out, "log.level: %s\n", a.config.Log.Level)
			fmt.Fprintf(out, "log.dev:   %t\n", a.config.Log.DevMode)

			fmt.Fprintf(out, "login:     %s\n", a.login())
			return nil
		},
	}
}

// login describes where the credentials come from. The keyring is only read
// when the config does not hold a login.
func (a *app) login() string {
	if a.config.Username != "" && a.config.Password != "" {
		return a.config.Username + " (from config)"
	}
	creds, err := a.loadCredentials()
	switch {
	case err == nil:
		return creds.Username + " (from keyring)"
	case errors.Is(err, iiasa.ErrNoCredentials):
		return "anonymous"
	default:
		return "unavailable: " + err.Error()
	}
}
