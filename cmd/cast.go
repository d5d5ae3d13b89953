package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"reflect"

	"github.com/invopop/jsonschema"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/vidplay/vidplay/cast"
	"github.com/vidplay/vidplay/style"
)

func init() {
	rootCmd.AddCommand(castCmd)
	castCmd.AddCommand(castSchemaCmd)

	castSchemaCmd.Flags().StringP("type", "t", "", "Only print the schema of this message type")
	_ = castSchemaCmd.RegisterFlagCompletionFunc("type", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return lo.Keys(cast.Schema), cobra.ShellCompDirectiveNoFileComp
	})
}

func errUnknownMessageType(typ string) error {
	return fmt.Errorf(
		"unknown message type %s, did you mean %s?",
		style.Fg(style.Bad)(typ),
		style.Fg(style.Warn)(closest(typ, lo.Keys(cast.Schema))),
	)
}

var castCmd = &cobra.Command{
	Use:   "cast",
	Short: "Cast protocol utilities",
}

var castSchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Generate JSON schemas for the cast message payloads",
	Run: func(cmd *cobra.Command, args []string) {
		reflector := new(jsonschema.Reflector)
		reflector.Anonymous = true
		reflector.Namer = func(t reflect.Type) string {
			return "cast." + t.Name()
		}

		typ := lo.Must(cmd.Flags().GetString("type"))
		if typ != "" {
			data, ok := cast.Schema[typ]
			if !ok {
				handleErr(errUnknownMessageType(typ))
			}
			handleErr(json.NewEncoder(os.Stdout).Encode(reflector.Reflect(data)))
			return
		}

		schemas := lo.MapValues(cast.Schema, func(data any, _ string) *jsonschema.Schema {
			return reflector.Reflect(data)
		})
		handleErr(json.NewEncoder(os.Stdout).Encode(schemas))
	},
}
