package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	flagList      bool
	flagSeparator string
)

var queryCmd = &cobra.Command{
	Use:   "query COMMAND",
	Short: "Query a tester and print the reply",
	Long: `Send a query and print the reply. With --list the reply is split on the
separator and every field is printed on its own line.`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

var execCmd = &cobra.Command{
	Use:   "exec SEQUENCE",
	Short: "Run a test sequence and print its timestamps",
	Long: `Run SEQUENCE as immediate test sequence with timestamps enabled, print the
handle returned by the tester and the timestamp of every step.`,
	Args: cobra.ExactArgs(1),
	RunE: runExec,
}

func init() {
	queryCmd.Flags().BoolVarP(&flagList, "list", "l", false, "Split the reply into fields")
	queryCmd.Flags().StringVar(&flagSeparator, "sep", ",", "Field separator for --list")
	execCmd.Flags().BoolVar(&flagJson, "json", false, "Print the result as JSON")
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(execCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	session, _, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer closeSession(session)

	if !flagList {
		reply, err := session.Query(args[0])
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), reply)
		return nil
	}

	fields, err := session.QueryList(args[0], flagSeparator)
	if err != nil {
		return err
	}

	for _, field := range fields {
		fmt.Fprintln(cmd.OutOrStdout(), field)
	}

	return nil
}

func runExec(cmd *cobra.Command, args []string) error {
	session, _, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer closeSession(session)

	result, err := session.ExecSequence(args[0])
	if err != nil {
		return err
	}

	if flagJson {
		return writeJson(cmd.OutOrStdout(), result)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Reply: %s\n", result.Reply)
	for i, timestamp := range result.Timestamps {
		fmt.Fprintf(cmd.OutOrStdout(), "[%d] %s\n", i, timestamp)
	}

	return nil
}
