package cmd

import (
	"bufio"
	"errors"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vidplay/vidplay/auth"
	"golang.org/x/term"
)

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(authSetCmd)
	authCmd.AddCommand(authDeleteCmd)
}

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the vidgo token sent to cast receivers",
}

var authSetCmd = &cobra.Command{
	Use:     "set [token]",
	Short:   "Store the vidgo token in the system keyring",
	Long:    "Store the vidgo token in the system keyring. Without an argument the token is prompted for, or read from stdin when it is not a terminal.",
	Args:    cobra.MaximumNArgs(1),
	Example: "  echo $TOKEN | vidplay auth set",
	Run: func(cmd *cobra.Command, args []string) {
		var token string

		switch {
		case len(args) == 1:
			token = args[0]
		case term.IsTerminal(int(os.Stdin.Fd())):
			cmd.Print("Token: ")
			raw, err := term.ReadPassword(int(os.Stdin.Fd()))
			cmd.Println()
			handleErr(err)
			token = string(raw)
		default:
			line, err := bufio.NewReader(os.Stdin).ReadString('\n')
			if err != nil && line == "" {
				handleErr(errors.New("no token given"))
			}
			token = line
		}

		handleErr(auth.SetToken(strings.TrimSpace(token)))
		success("token stored")
	},
}

var authDeleteCmd = &cobra.Command{
	Use:     "delete",
	Short:   "Remove the vidgo token from the system keyring",
	Aliases: []string{"remove"},
	Run: func(cmd *cobra.Command, args []string) {
		handleErr(auth.DeleteToken())
		success("token removed")
	},
}
