package version

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/meza/koikatsu-mod-manager/internal/constants"
	"github.com/meza/koikatsu-mod-manager/internal/environment"
	"github.com/meza/koikatsu-mod-manager/internal/i18n"
)

func Command() *cobra.Command {
	versionCmd := &cobra.Command{
		Use: "version",
		Short: i18n.T("cmd.version.short", i18n.Tvars{
			Data: &i18n.TData{"appName": constants.AppName},
		}),
		Args: cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), environment.AppVersion())
		},
	}

	return versionCmd
}
