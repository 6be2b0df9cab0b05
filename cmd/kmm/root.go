package kmm

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/meza/koikatsu-mod-manager/cmd/kmm/conflicts"
	initCmd "github.com/meza/koikatsu-mod-manager/cmd/kmm/init"
	"github.com/meza/koikatsu-mod-manager/cmd/kmm/list"
	logCmd "github.com/meza/koikatsu-mod-manager/cmd/kmm/log"
	"github.com/meza/koikatsu-mod-manager/cmd/kmm/manifest"
	"github.com/meza/koikatsu-mod-manager/cmd/kmm/remove"
	"github.com/meza/koikatsu-mod-manager/cmd/kmm/version"
	"github.com/meza/koikatsu-mod-manager/internal/cli"
	"github.com/meza/koikatsu-mod-manager/internal/constants"
	"github.com/meza/koikatsu-mod-manager/internal/environment"
	"github.com/meza/koikatsu-mod-manager/internal/i18n"
)

func Command() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           constants.CommandName,
		Short:         i18n.T("app.description"),
		Version:       environment.AppVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	cobra.MousetrapHelpText = "" // allow the app to run in windows by clicking the exe

	flags := rootCmd.PersistentFlags()
	flags.StringP(cli.FlagConfig, "c", constants.DefaultConfigFile, i18n.T("flag.config"))
	flags.StringP(cli.FlagGamePath, "g", "", i18n.T("flag.game_path"))
	flags.BoolP(cli.FlagQuiet, "q", false, i18n.T("flag.quiet"))
	flags.BoolP(cli.FlagDebug, "d", false, i18n.T("flag.debug"))
	flags.Bool(cli.FlagJSON, false, i18n.T("flag.json"))
	flags.Bool("perf", false, i18n.T("flag.perf"))
	flags.String("perf-out-dir", "", i18n.T("flag.perf_out_dir"))

	rootCmd.SetVersionTemplate("{{.Version}}\n")
	rootCmd.AddCommand(conflicts.Command())
	rootCmd.AddCommand(logCmd.Command())
	rootCmd.AddCommand(remove.Command())
	rootCmd.AddCommand(manifest.Command())
	rootCmd.AddCommand(list.Command())
	rootCmd.AddCommand(initCmd.Command())
	rootCmd.AddCommand(version.Command())

	translateDefaultHelpFacilities(rootCmd)
	fixFlagUsageAlignment(rootCmd)
	rootCmd.SetHelpTemplate(rootCmd.HelpTemplate() + "\n" + i18n.T("cmd.help.more", i18n.Tvars{
		Data: &i18n.TData{"url": environment.HelpURL()},
	}) + "\n")

	return rootCmd
}

func translateDefaultHelpFacilities(rootCmd *cobra.Command) {
	subcommands := rootCmd.Commands()
	allCommands := make([]*cobra.Command, 0, len(subcommands)+1)
	allCommands = append(allCommands, rootCmd)
	allCommands = append(allCommands, subcommands...)

	for _, cmd := range allCommands {
		cmd.InitDefaultHelpFlag()
		flags := cmd.Flags()
		flags.Lookup("help").Usage = i18n.T("cmd.help.template", i18n.Tvars{
			Data: &i18n.TData{"command": cmd.Name()},
		})
	}

	rootCmd.InitDefaultHelpCmd()
	helpCmd, _, e := rootCmd.Find([]string{"help"})

	if e == nil {
		helpCmd.Short = i18n.T("cmd.help.usage.short")
		helpCmd.Long = i18n.T("cmd.help.usage.long", i18n.Tvars{
			Data: &i18n.TData{"appName": rootCmd.Name()},
		})
		helpCmd.Run = func(c *cobra.Command, args []string) {
			cmd, _, e := c.Root().Find(args)
			if cmd == nil || e != nil {
				c.PrintErrln(i18n.T("cmd.help.error", i18n.Tvars{
					Data: &i18n.TData{"topic": fmt.Sprintf("%#q", args)},
				}) + "\n")
				cobra.CheckErr(c.Root().Usage())
			} else {
				cmd.InitDefaultHelpFlag()    // make possible 'help' flag to be shown
				cmd.InitDefaultVersionFlag() // make possible 'version' flag to be shown
				cobra.CheckErr(cmd.Help())
			}
		}
	}
}

func fixFlagUsageAlignment(rootCmd *cobra.Command) {
	width, _, _ := term.GetSize(int(os.Stdout.Fd()))
	usageTemplate := rootCmd.UsageTemplate()
	usageTemplate = strings.ReplaceAll(usageTemplate, ".FlagUsages", fmt.Sprintf(".FlagUsagesWrapped %d", width))
	rootCmd.SetUsageTemplate(usageTemplate)
}
