// Command taskctl is a terminal client for a TaskHub server.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"taskhub/client"
)

var (
	cfg     = viper.New()
	session *client.Session
)

var rootCmd = &cobra.Command{
	Use:           "taskctl",
	Short:         "Manage TaskHub tasks, teams and projects from the terminal",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(); err != nil {
			return err
		}
		creds, err := client.OpenKeyring(cfg.GetString("credentials_dir"))
		if err != nil {
			return err
		}
		session = client.NewSession(client.New(cfg.GetString("server"), nil), creds)
		return session.Init(cmd.Context())
	},
}

func loadConfig() error {
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("locating home directory: %w", err)
	}
	dir := filepath.Join(home, ".config", "taskhub")

	cfg.SetDefault("server", "http://localhost:5000/api")
	cfg.SetDefault("credentials_dir", filepath.Join(dir, "credentials"))
	cfg.SetEnvPrefix("TASKCTL")
	cfg.AutomaticEnv()

	cfg.SetConfigName("taskctl")
	cfg.SetConfigType("yaml")
	cfg.AddConfigPath(dir)
	if err := cfg.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("reading config: %w", err)
		}
	}
	return nil
}

func requireLogin() error {
	if !session.Authenticated() {
		return errors.New("not logged in; run `taskctl login` first")
	}
	return nil
}

func parseID(arg string) (uint, error) {
	n, err := strconv.ParseUint(arg, 10, 64)
	if err != nil || n == 0 {
		return 0, fmt.Errorf("invalid id %q", arg)
	}
	return uint(n), nil
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and remember the session",
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")
		if password == "" {
			password = os.Getenv("TASKCTL_PASSWORD")
		}
		user, err := session.Login(cmd.Context(), email, password)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s <%s>\n", user.Name, user.Email)
		return nil
	},
}

var registerCmd = &cobra.Command{
	Use:   "register <name>",
	Short: "Create an account and sign in",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")
		if password == "" {
			password = os.Getenv("TASKCTL_PASSWORD")
		}
		user, err := session.Register(cmd.Context(), args[0], email, password)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Welcome, %s\n", user.Name)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := session.Logout(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireLogin(); err != nil {
			return err
		}
		u := session.User()
		unread, err := session.API().UnreadCount(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s <%s>\t%d unread\n", u.ID, u.Name, u.Email, unread)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("server", "", "API base URL (default http://localhost:5000/api)")
	_ = cfg.BindPFlag("server", rootCmd.PersistentFlags().Lookup("server"))

	for _, c := range []*cobra.Command{loginCmd, registerCmd} {
		c.Flags().String("email", "", "account email")
		c.Flags().String("password", "", "account password (or TASKCTL_PASSWORD)")
		_ = c.MarkFlagRequired("email")
	}

	rootCmd.AddCommand(loginCmd, registerCmd, logoutCmd, whoamiCmd)
	rootCmd.AddCommand(tasksCmd(), teamsCmd(), projectsCmd(), notificationsCmd())
}

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
