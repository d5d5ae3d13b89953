package cmd

import (
	"os"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/vidplay/vidplay/config"
	"github.com/vidplay/vidplay/constant"
	"github.com/vidplay/vidplay/style"
	"github.com/vidplay/vidplay/where"
	"golang.org/x/exp/slices"
)

// envVars lists every environment variable the configuration reads, sorted.
func envVars() []string {
	envs := lo.Map(config.EnvExposed, func(k string, _ int) string {
		return strings.ToUpper(constant.App + "_" + config.EnvKeyReplacer.Replace(k))
	})
	envs = append(envs, where.EnvConfigPath)
	slices.Sort(envs)
	return envs
}

func init() {
	rootCmd.AddCommand(envCmd)
	envCmd.Flags().BoolP("set-only", "s", false, "Only variables that are set")
	envCmd.Flags().BoolP("unset-only", "u", false, "Only variables that are not set")
	envCmd.MarkFlagsMutuallyExclusive("set-only", "unset-only")
}

var envCmd = &cobra.Command{
	Use:   "env",
	Short: "List the environment variables vidplay reads",
	Run: func(cmd *cobra.Command, args []string) {
		setOnly := lo.Must(cmd.Flags().GetBool("set-only"))
		unsetOnly := lo.Must(cmd.Flags().GetBool("unset-only"))
		name := style.New().Bold(true).Foreground(style.Highlight).Render

		for _, env := range envVars() {
			value, present := os.LookupEnv(env)
			if (setOnly && !present) || (unsetOnly && present) {
				continue
			}

			cmd.Printf("%s=%s\n", name(env), lo.Ternary(present, style.Fg(style.Good)(value), style.Fg(style.Bad)("unset")))
		}
	},
}
