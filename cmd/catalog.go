package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"code.cloudfoundry.org/bytefmt"
	"github.com/dreitier/testermon/tester"
	"github.com/spf13/cobra"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog [DIRECTORY]",
	Short: "List a directory of the tester's filesystem",
	Long: `List DIRECTORY of the tester, relative to the root of its filesystem. Without
argument the root directory is listed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCatalog,
}

func init() {
	catalogCmd.Flags().BoolVar(&flagJson, "json", false, "Print the result as JSON")
	rootCmd.AddCommand(catalogCmd)
}

func runCatalog(cmd *cobra.Command, args []string) error {
	session, _, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer closeSession(session)

	var catalog *tester.Catalog

	if len(args) == 0 {
		catalog, err = session.Catalog()
	} else {
		catalog, err = session.CatalogDirectory(args[0])
	}

	if err != nil {
		return err
	}

	if flagJson {
		return writeJson(cmd.OutOrStdout(), catalog)
	}

	return printCatalog(cmd.OutOrStdout(), catalog)
}

func printCatalog(w io.Writer, catalog *tester.Catalog) error {
	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)

	fmt.Fprintln(tw, "NAME\tTYPE\tSIZE")
	for _, entry := range catalog.Entries {
		size := "-"
		if !entry.IsDir() {
			size = bytefmt.ByteSize(uint64(entry.Size))
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", entry.Name, entry.Type, size)
	}

	if err := tw.Flush(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "\n%s used, %s free\n",
		bytefmt.ByteSize(uint64(catalog.UsedBytes)),
		bytefmt.ByteSize(uint64(catalog.FreeBytes)))
	return err
}
