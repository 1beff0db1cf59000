package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"salespilot/internal/auth"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage local accounts",
}

var authSignupCmd = &cobra.Command{
	Use:   "signup [username]",
	Short: "Create an account and log in",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withAuth(func(m *auth.Manager) error {
			password, err := readPassword("Password: ")
			if err != nil {
				return err
			}
			if err := m.Signup(args[0], password); err != nil {
				return err
			}
			fmt.Printf("Welcome, %s.\n", args[0])
			return nil
		})
	},
}

var authLoginCmd = &cobra.Command{
	Use:   "login [username]",
	Short: "Log in",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withAuth(func(m *auth.Manager) error {
			password, err := readPassword("Password: ")
			if err != nil {
				return err
			}
			if err := m.Login(args[0], password); err != nil {
				return err
			}
			fmt.Printf("Logged in as %s.\n", args[0])
			return nil
		})
	},
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withAuth(func(m *auth.Manager) error {
			if err := m.Logout(); err != nil {
				return err
			}
			fmt.Println("Logged out.")
			return nil
		})
	},
}

var authWhoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in user",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withAuth(func(m *auth.Manager) error {
			user := m.CurrentUser()
			if user == "" {
				fmt.Println("Not logged in.")
				return nil
			}
			fmt.Println(user)
			return nil
		})
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show database statistics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.close()

		stats, err := a.store.Stats()
		if err != nil {
			return err
		}
		tables := make([]string, 0, len(stats))
		for table := range stats {
			tables = append(tables, table)
		}
		sort.Strings(tables)
		for _, table := range tables {
			fmt.Printf("%-15s %d\n", table, stats[table])
		}

		customers, err := a.store.ListCustomers()
		if err != nil {
			return err
		}
		if len(customers) > 0 {
			fmt.Printf("%-15s %s\n", "customers", strings.Join(customers, ", "))
		}
		return nil
	},
}

var resetYes bool

var resetCmd = &cobra.Command{
	Use:   "reset [customer]",
	Short: "Delete all stored data for a customer",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !resetYes {
			return fmt.Errorf("this deletes all data for %s; re-run with --yes to confirm", args[0])
		}
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.close()

		if err := a.store.ResetCustomer(args[0]); err != nil {
			return err
		}
		fmt.Printf("Removed all data for %s.\n", args[0])
		return nil
	},
}

func init() {
	authCmd.AddCommand(authSignupCmd)
	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authLogoutCmd)
	authCmd.AddCommand(authWhoamiCmd)
	resetCmd.Flags().BoolVar(&resetYes, "yes", false, "Confirm deletion")
}

func withAuth(fn func(*auth.Manager) error) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()
	return fn(auth.NewManager(a.store, cfg.Storage.DataDir))
}

func readPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	data, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(data), nil
}
