package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"code.cloudfoundry.org/bytefmt"
	"github.com/dreitier/testermon/tester"
	"github.com/spf13/cobra"
)

var flagJson bool

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show identification and storage of a tester",
	Long: `Read serial number, firmware, hardware and calibration details of the tester
and the space used on its filesystem. The files of the root directory are
listed in the transcript if the remaining space is low.`,
	Args: cobra.NoArgs,
	RunE: runInfo,
}

func init() {
	infoCmd.Flags().BoolVar(&flagJson, "json", false, "Print the result as JSON")
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	session, _, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer closeSession(session)

	info, err := session.CheckBaseInfo()
	if err != nil {
		return err
	}

	if flagJson {
		return writeJson(cmd.OutOrStdout(), info)
	}

	printBaseInfo(cmd.OutOrStdout(), info)
	return nil
}

func printBaseInfo(w io.Writer, info *tester.BaseInfo) {
	fmt.Fprintf(w, "Serial number:    %s\n", info.SerialNumber)
	fmt.Fprintf(w, "Product:          %s\n", info.ProductName)
	fmt.Fprintf(w, "Part number:      %s\n", info.PartNumber)
	fmt.Fprintf(w, "Firmware:         %s\n", info.FirmwareVersion)
	fmt.Fprintf(w, "OS:               %s\n", info.OSVersion)
	fmt.Fprintf(w, "BIOS:             %s\n", info.BIOSVersion)
	fmt.Fprintf(w, "Hardware:         %s\n", info.HardwareVersion)
	fmt.Fprintf(w, "Calibrated:       %s\n", info.CalibrationDate)
	fmt.Fprintf(w, "Configuration:    %s\n", info.ConfigVersion)
	fmt.Fprintf(w, "Driver:           %s\n", info.DriverVersion)
	fmt.Fprintf(w, "MAC:              %s\n", info.MAC)

	if info.Storage != nil {
		fmt.Fprintf(w, "Storage:          %s used, %s free\n",
			bytefmt.ByteSize(uint64(info.Storage.UsedBytes)),
			bytefmt.ByteSize(uint64(info.Storage.FreeBytes)))
	}
}

func writeJson(w io.Writer, data interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
