package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/ordercheck/packages/suite"
)

var listEndpointsFlag string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the checks and the routes they call",
	Long: `List every check in execution order, followed by the routes of the
selected endpoint set.

Examples:
  ordercheck list
  ordercheck list --endpoints module`,
	Args: noArgs,
	RunE: listCommand,
}

func init() {
	listCmd.Flags().StringVar(&listEndpointsFlag, "endpoints", suite.ProfileREST, "Endpoint set: rest or module")
}

func listCommand(cmd *cobra.Command, args []string) error {
	endpoints, err := suite.EndpointsFor(listEndpointsFlag)
	if err != nil {
		return usageError(err)
	}

	out := cmd.OutOrStdout()
	checks := suite.New("", endpoints, suite.DefaultFixtures())

	fmt.Fprintln(out, "Checks:")
	for i, e := range checks.Executors() {
		fmt.Fprintf(out, "  %2d. %s\n", i+1, e.Name)
	}

	fmt.Fprintf(out, "\nRoutes (%s):\n", listEndpointsFlag)
	for _, r := range endpoints.Named() {
		fmt.Fprintf(out, "  %-6s %-40s %s\n", r.Method, r.Path, r.Name)
	}
	return nil
}
