package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/dreitier/testermon/scpi"
	"github.com/spf13/cobra"
)

var flagNoStatus bool

var sendCmd = &cobra.Command{
	Use:   "send COMMAND...",
	Short: "Send commands and read the error queue after each",
	Long: `Send every argument as a separate command. The error queue is read after each
command; entries with a non-zero code are printed and make the command fail.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSend,
}

var errorsCmd = &cobra.Command{
	Use:     "errors",
	Aliases: []string{"status"},
	Short:   "Read the error queue of a tester",
	Args:    cobra.NoArgs,
	RunE:    runErrors,
}

func init() {
	sendCmd.Flags().BoolVar(&flagNoStatus, "no-status", false, "Do not read the error queue")
	errorsCmd.Flags().BoolVar(&flagJson, "json", false, "Print the result as JSON")
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(errorsCmd)
}

func runSend(cmd *cobra.Command, args []string) error {
	session, _, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer closeSession(session)

	failed := 0

	for _, command := range args {
		if flagNoStatus {
			if err := session.Send(command); err != nil {
				return err
			}
			continue
		}

		queue, err := session.SendAndQuery(command)
		if err != nil {
			return err
		}

		failed += printErrorQueue(cmd.OutOrStdout(), command, queue)
	}

	if failed > 0 {
		return fmt.Errorf("%d command(s) caused an error", failed)
	}

	return nil
}

func runErrors(cmd *cobra.Command, args []string) error {
	session, _, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer closeSession(session)

	queue, err := session.Errors()
	if err != nil {
		return err
	}

	if flagJson {
		return writeJson(cmd.OutOrStdout(), queue)
	}

	for _, entry := range queue {
		fmt.Fprintln(cmd.OutOrStdout(), entry.Error())
	}

	return nil
}

// printErrorQueue prints the entries with a non-zero code and returns 1 if there was any
func printErrorQueue(w io.Writer, command string, queue []scpi.InstrumentError) int {
	var messages []string
	for _, entry := range queue {
		if entry.IsError() {
			messages = append(messages, entry.Error())
		}
	}

	if len(messages) == 0 {
		return 0
	}

	fmt.Fprintf(w, "%s: %s\n", command, strings.Join(messages, "; "))
	return 1
}
