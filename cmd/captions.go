package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/vidplay/vidplay/caption"
	"github.com/vidplay/vidplay/style"
)

func init() {
	rootCmd.AddCommand(captionsCmd)
	captionsCmd.AddCommand(captionsGetCmd)
	captionsCmd.AddCommand(captionsSetCmd)

	captionsGetCmd.Flags().BoolP("json", "j", false, "Format the output as a JSON string")

	captionsSetCmd.Flags().Float64("size", 0, "Text size multiplier (0.5 to 4)")
	captionsSetCmd.Flags().String("color", "", "Text color as r,g,b")
	captionsSetCmd.Flags().String("bg", "", "Background color as r,g,b")
	captionsSetCmd.Flags().Float64("opacity", 0, "Background opacity (0 to 1)")
}

var captionsCmd = &cobra.Command{
	Use:   "captions",
	Short: "Manage the caption style",
}

var captionsGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Print the caption style",
	Run: func(cmd *cobra.Command, args []string) {
		s, err := caption.Durable().Get()
		handleErr(err)

		if lo.Must(cmd.Flags().GetBool("json")) {
			handleErr(json.NewEncoder(os.Stdout).Encode(s))
			return
		}

		printCaptionStyle(s)
	},
}

var captionsSetCmd = &cobra.Command{
	Use:     "set",
	Short:   "Change the caption style",
	Example: "  vidplay captions set --size 1.5 --color 255,255,0 --opacity 0.5",
	Run: func(cmd *cobra.Command, args []string) {
		store := caption.Durable()
		s, err := store.Get()
		handleErr(err)

		flags := cmd.Flags()
		if flags.Changed("size") {
			s.TextSize = lo.Must(flags.GetFloat64("size"))
		}
		if flags.Changed("color") {
			c, err := caption.ParseRGB(lo.Must(flags.GetString("color")))
			handleErr(err)
			s.TextColor = c.String()
		}
		if flags.Changed("bg") {
			c, err := caption.ParseRGB(lo.Must(flags.GetString("bg")))
			handleErr(err)
			s.BgColor = c.String()
		}
		if flags.Changed("opacity") {
			s.BgOpacity = lo.Must(flags.GetFloat64("opacity"))
		}

		handleErr(store.Set(s))
		success("caption style saved")
		printCaptionStyle(s.Normalize())
	},
}

func printCaptionStyle(s caption.Style) {
	fmt.Printf("%s  %s\n", style.Faint("size"), fmt.Sprint(s.TextSize))
	fmt.Printf("%s %s\n", style.Faint("color"), s.TextColor)
	fmt.Printf("%s    %s (%.0f%%)\n", style.Faint("bg"), s.BgColor, s.BgOpacity*100)
	fmt.Println()
	fmt.Println(s.Lipgloss().Padding(0, 1).Render("The quick brown fox jumps over the lazy dog"))
}
