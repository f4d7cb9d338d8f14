package cmd

import (
	"fmt"

	"code.cloudfoundry.org/bytefmt"
	"github.com/spf13/cobra"
)

var (
	flagDirectory   string
	flagDestination string
)

var downloadCmd = &cobra.Command{
	Use:   "download FILE...",
	Short: "Download files from the tester",
	Long: `Download every FILE from --dir on the tester into --dst. Files with one of the
configured binary extensions are transferred as raw block, all others as text.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDownload,
}

func init() {
	downloadCmd.Flags().StringVarP(&flagDirectory, "dir", "d", "", "Directory on the tester, relative to its root")
	downloadCmd.Flags().StringVar(&flagDestination, "dst", "", "Local directory (default: download directory of the tester)")
	rootCmd.AddCommand(downloadCmd)
}

func runDownload(cmd *cobra.Command, args []string) error {
	session, target, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer closeSession(session)

	dst := flagDestination
	if dst == "" {
		dst = target.tester.DownloadDirectory
	}

	missing := 0

	for _, fileName := range args {
		download, err := session.DownloadFile(fileName, flagDirectory, dst)
		if err != nil {
			return err
		}

		if !download.Found {
			missing++
			continue
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", download.LocalPath, download.Mode, bytefmt.ByteSize(uint64(download.Size)))
	}

	if missing > 0 {
		return fmt.Errorf("%d file(s) not found on the tester", missing)
	}

	return nil
}
