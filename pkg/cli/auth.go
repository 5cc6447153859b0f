package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"taskflow/pkg/api"
	"taskflow/pkg/database"
)

type credentialFlags struct {
	username string
	password string
}

func (f *credentialFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.username, "username", "u", "", "Account name (required)")
	cmd.Flags().StringVarP(&f.password, "password", "p", "", "Password, prompted for when omitted")
	_ = cmd.MarkFlagRequired("username")
}

// credentials fills in the password from the terminal when no flag gave it
func (f *credentialFlags) credentials(cmd *cobra.Command) (api.Credentials, error) {
	password := f.password
	if password == "" {
		var err error
		if password, err = readPassword(cmd); err != nil {
			return api.Credentials{}, err
		}
	}
	if password == "" {
		return api.Credentials{}, errors.New("password is required")
	}
	return api.Credentials{Username: strings.TrimSpace(f.username), Password: password}, nil
}

func readPassword(cmd *cobra.Command) (string, error) {
	fmt.Fprint(cmd.OutOrStdout(), "Password: ")

	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.OutOrStdout())
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(b), nil
	}

	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func newLoginCmd(opts *rootOptions) *cobra.Command {
	var flags credentialFlags

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			creds, err := flags.credentials(cmd)
			if err != nil {
				return err
			}

			return withApp(opts, func(a *app) error {
				ctx, cancel := a.context(cmd)
				defer cancel()

				token, err := a.client.Login(ctx, creds)
				if err != nil {
					return fmt.Errorf("login failed: %w", err)
				}
				if err := a.session.Login(token, creds.Username, a.now()); err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", creds.Username)
				return nil
			})
		},
	}
	flags.register(cmd)
	return cmd
}

func newLogoutCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the session token and the cached tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, func(a *app) error {
				if err := a.session.Logout(); err != nil {
					return err
				}
				if err := database.ReplaceTasks(a.db, nil); err != nil {
					return fmt.Errorf("clear cache: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
				return nil
			})
		},
	}
}

func newRegisterCmd(opts *rootOptions) *cobra.Command {
	var flags credentialFlags

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account on the API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			creds, err := flags.credentials(cmd)
			if err != nil {
				return err
			}

			return withApp(opts, func(a *app) error {
				ctx, cancel := a.context(cmd)
				defer cancel()

				if err := a.client.Register(ctx, creds); err != nil {
					return fmt.Errorf("registration failed: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Registered %s, now run `taskflow login -u %s`\n", creds.Username, creds.Username)
				return nil
			})
		},
	}
	flags.register(cmd)
	return cmd
}
