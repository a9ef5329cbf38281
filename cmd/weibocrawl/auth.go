package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"weibocrawl/pkg/auth"
)

// authCmd represents the auth command
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage Weibo session cookies",
	Long: `Manage stored Weibo session cookies securely.

Cookies are stored using:
  - System keychain (when available)
  - Encrypted file with PBKDF2 key derivation
  - Environment variables (read-only fallback)

Never share your cookie or config files!`,
}

// loginCmd represents the auth login command
var loginCmd = &cobra.Command{
	Use:   "login [name]",
	Short: "Store a Weibo session cookie securely",
	Long: `Store a Weibo session cookie in the system keychain or encrypted file.

To get the cookie value:
1. Log into weibo.com in your browser
2. Open Developer Tools (F12) and go to the Network tab
3. Reload the page and select any weibo.com request
4. Copy the value of the Cookie request header`,
	Example: `  # Interactive login under the default account name
  weibocrawl auth login

  # Store under a specific account name
  weibocrawl auth login research`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLogin,
}

// logoutCmd represents the auth logout command
var logoutCmd = &cobra.Command{
	Use:   "logout <name>",
	Short: "Remove a stored cookie",
	Args:  cobra.ExactArgs(1),
	RunE:  runLogout,
}

// listCmd represents the auth list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored accounts",
	Long:  `List all stored accounts with the cookie value masked.`,
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(listCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	name := "default"
	if len(args) > 0 {
		name = args[0]
	}

	reader := bufio.NewReader(os.Stdin)

	if existing, _ := manager.Retrieve(name); existing != nil {
		fmt.Printf("Account '%s' already exists. Update cookie? (y/N): ", name)
		input, _ := reader.ReadString('\n')
		if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(input)), "y") {
			return nil
		}
	}

	fmt.Print("Cookie value (hidden as you type): ")
	cookieValue, err := readSecret()
	if err != nil {
		return fmt.Errorf("failed to read cookie: %w", err)
	}
	if cookieValue == "" {
		return fmt.Errorf("cookie is required")
	}

	fmt.Print("User Agent (press Enter for default): ")
	userAgent, _ := reader.ReadString('\n')
	userAgent = strings.TrimSpace(userAgent)

	account := &auth.Account{
		Name:         name,
		Cookie:       cookieValue,
		UserAgent:    userAgent,
		LastModified: time.Now(),
	}

	if err := manager.Store(account); err != nil {
		return fmt.Errorf("failed to store cookie: %w", err)
	}

	fmt.Printf("Cookie stored for account '%s'\n", name)
	fmt.Println("\nStart a crawl with:")
	fmt.Println("  weibocrawl crawl")
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	name := args[0]
	if err := manager.Delete(name); err != nil {
		return fmt.Errorf("failed to remove account: %w", err)
	}

	fmt.Printf("Account removed: %s\n", name)
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	accounts, err := manager.List()
	if err != nil {
		return fmt.Errorf("failed to list accounts: %w", err)
	}

	if len(accounts) == 0 {
		fmt.Println("No stored accounts. Use 'weibocrawl auth login' to add one.")
		return nil
	}

	for i, account := range accounts {
		sanitized := auth.SanitizeAccount(account)
		fmt.Printf("%d. Name: %s\n", i+1, sanitized.Name)
		fmt.Printf("   Cookie: %s\n", sanitized.Cookie)
		if sanitized.UserAgent != "" {
			fmt.Printf("   User Agent: %s\n", sanitized.UserAgent)
		}
		fmt.Printf("   Last Modified: %s\n", sanitized.LastModified.Format("2006-01-02 15:04:05"))
		fmt.Println()
	}
	return nil
}

// readSecret reads a value from stdin without echoing
func readSecret() (string, error) {
	if term.IsTerminal(int(syscall.Stdin)) {
		secret, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err == nil {
			return strings.TrimSpace(string(secret)), nil
		}
	}

	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(input), nil
}
