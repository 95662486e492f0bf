package cli

import (
	"fmt"
	"strconv"

	"github.com/oldmonad/cloudinv/internal/app"
	"github.com/oldmonad/cloudinv/pkg/errors"
	"github.com/oldmonad/cloudinv/pkg/inventory"
	"github.com/oldmonad/cloudinv/pkg/output"
	"github.com/oldmonad/cloudinv/pkg/ports"
	"github.com/oldmonad/cloudinv/pkg/ports/rest"
	"github.com/spf13/cobra"
)

var ServerStarter = rest.StartServer

// NewCommand builds the root command. defaultPort is the serve port used
// when --port is not given.
func NewCommand(appInstance app.AppRunner, defaultPort int) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "cloudinv",
		Short:         "Build an Ansible inventory from cloud instances grouped by function tag",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	var skipPublish bool
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Enumerate instances, write the inventory and publish it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := appInstance.Run(cmd.Context(), app.RunOptions{
				SkipPublish: skipPublish,
				Source:      ports.CLI,
			})
			if err != nil {
				return errors.NewCommandError("run", err)
			}

			output.FprintInventory(cmd.OutOrStdout(), result.Inventory)
			output.FprintSummary(cmd.OutOrStdout(), result.Path, result.Published, result.RemotePath)
			return nil
		},
	}

	var port int
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if port < 1 || port > 65535 {
				return errors.NewCommandError("serve", fmt.Errorf("port %d out of range [1-65535]", port))
			}
			return ServerStarter(appInstance, strconv.Itoa(port))
		},
	}

	showCmd := &cobra.Command{
		Use:   "show <inventory-file>",
		Short: "Print the groups of an existing inventory file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inv, err := inventory.ReadFile(args[0])
			if err != nil {
				return errors.NewCommandError("show", err)
			}
			output.FprintInventory(cmd.OutOrStdout(), inv)
			return nil
		},
	}

	runCmd.Flags().BoolVar(&skipPublish, "skip-publish", false, "write the inventory locally without pushing it over SCP")
	serveCmd.Flags().IntVar(&port, "port", defaultPort, "port for HTTP server")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(showCmd)
	return rootCmd
}
