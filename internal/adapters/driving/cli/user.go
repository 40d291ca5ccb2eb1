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

	"github.com/custodia-labs/refrag/internal/core/domain"
)

var userAPIKey string

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage users and their provider keys",
}

var userRegisterCmd = &cobra.Command{
	Use:   "register [user-id]",
	Short: "Register a user with a password and provider API key",
	Long: `Registers a user. The API key is validated against the configured LLM
provider with a minimal request before anything is stored.`,
	Args: cobra.ExactArgs(1),
	RunE: runUserRegister,
}

var userLoginCmd = &cobra.Command{
	Use:   "login [user-id]",
	Short: "Log in and bind the user's API key to the configuration",
	Args:  cobra.ExactArgs(1),
	RunE:  runUserLogin,
}

func init() {
	userRegisterCmd.Flags().StringVar(&userAPIKey, "api-key", "", "provider API key (prompted if omitted)")
	userCmd.AddCommand(userRegisterCmd)
	userCmd.AddCommand(userLoginCmd)
	rootCmd.AddCommand(userCmd)
}

func runUserRegister(cmd *cobra.Command, args []string) error {
	r, err := loadRuntime(cmd.Context())
	if err != nil {
		return err
	}
	if r.Users == nil {
		return errors.New("user service not configured")
	}

	reader := bufio.NewReader(cmd.InOrStdin())

	cmd.Print("Password: ")
	password := readPassword(cmd.InOrStdin(), reader)
	cmd.Println()
	cmd.Print("Confirm password: ")
	confirm := readPassword(cmd.InOrStdin(), reader)
	cmd.Println()
	if password != confirm {
		return fmt.Errorf("%w: passwords do not match", domain.ErrInvalidInput)
	}

	apiKey := userAPIKey
	if apiKey == "" {
		cmd.Print("API key: ")
		apiKey = readPassword(cmd.InOrStdin(), reader)
		cmd.Println()
	}

	cmd.Print("Validating API key... ")
	if err := r.Users.Register(cmd.Context(), args[0], password, apiKey); err != nil {
		cmd.Println("FAILED")
		return err
	}
	cmd.Println("OK")
	cmd.Printf("Registered %s (API key %s)\n", args[0], domain.MaskSecret(apiKey))
	return nil
}

func runUserLogin(cmd *cobra.Command, args []string) error {
	r, err := loadRuntime(cmd.Context())
	if err != nil {
		return err
	}
	if r.Users == nil {
		return errors.New("user service not configured")
	}

	cmd.Print("Password: ")
	password := readPassword(cmd.InOrStdin(), bufio.NewReader(cmd.InOrStdin()))
	cmd.Println()

	user, err := r.Users.Login(cmd.Context(), args[0], password)
	if err != nil {
		return err
	}

	if user.APIKey != "" {
		if err := settingsService.Set("llm.api_key", user.APIKey); err != nil {
			return fmt.Errorf("failed to bind API key: %w", err)
		}
	}
	cmd.Printf("Logged in as %s (API key %s)\n", user.ID, user.MaskedAPIKey())
	return nil
}

// readPassword reads a line without echo when in is a terminal.
//
//nolint:errcheck // CLI helper, error ignored for UX
func readPassword(in io.Reader, reader *bufio.Reader) string {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return string(password)
		}
	}
	input, _ := reader.ReadString('\n')
	return strings.TrimRight(input, "\r\n")
}
