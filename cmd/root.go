package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dreitier/testermon/config"
	"github.com/dreitier/testermon/scpi"
	"github.com/dreitier/testermon/tester"
	"github.com/dreitier/testermon/transcript"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	// Flags
	flagConfig  string
	flagDebug   bool
	flagTester  string
	flagAddress string
	flagTimeout time.Duration
	flagLog     string
	flagQuiet   bool
)

var rootCmd = &cobra.Command{
	Use:   "testermon",
	Short: "Remote control and monitoring of SCPI testers",
	Long: `testermon talks to RF testers over their SCPI socket. It sends commands,
runs sequences, reads the identification and storage of a tester and downloads
files from its filesystem. Every command and reply is written to a transcript.

The watch command monitors all configured testers and serves their state and
the downloaded files over HTTP.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		config.SetGlobalDebug(flagDebug)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file path (default: search ., ~/.testermon, /etc/testermon)")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&flagTester, "tester", "t", "", "Name of the tester in the config file")
	rootCmd.PersistentFlags().StringVarP(&flagAddress, "address", "a", "", "Address of the tester, overrides the configured one")
	rootCmd.PersistentFlags().DurationVar(&flagTimeout, "timeout", config.DefaultTimeout, "Connection and I/O timeout")
	rootCmd.PersistentFlags().StringVar(&flagLog, "log", "", "Append the transcript to this file")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Do not echo the transcript to stderr")
}

// Execute runs the root command.
func Execute(version string) {
	rootCmd.Version = version
	rootCmd.SetVersionTemplate(fmt.Sprintf("testermon %s\n", version))
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// target is the tester a command talks to
type target struct {
	tester           *config.TesterConfiguration
	timeLimit        time.Duration
	listingThreshold uint64
}

func loadConfiguration() (*config.Configuration, error) {
	if flagConfig != "" {
		config.SetConfigPath(flagConfig)
	}

	return config.GetInstance()
}

// resolveTarget combines the config file with the command line flags. The
// config file is optional as long as --address is given.
func resolveTarget(cmd *cobra.Command) (*target, error) {
	cfg, cfgErr := loadConfiguration()

	r := &target{
		timeLimit:        config.DefaultQueryTimeLimit,
		listingThreshold: config.DefaultListingThreshold,
	}

	if cfg != nil {
		r.timeLimit = cfg.Global().QueryTimeLimit()
		r.listingThreshold = cfg.Global().ListingThreshold()
	}

	switch {
	case flagTester != "":
		if cfg == nil {
			return nil, fmt.Errorf("tester %#q requires a config file: %w", flagTester, cfgErr)
		}

		configured := cfg.Tester(flagTester)
		if configured == nil {
			return nil, fmt.Errorf("tester %#q is not configured", flagTester)
		}

		copied := *configured
		r.tester = &copied
	case flagAddress != "":
		r.tester = &config.TesterConfiguration{
			Name:              flagAddress,
			Port:              config.DefaultPort,
			Timeout:           config.DefaultTimeout,
			DownloadDirectory: ".",
			BinaryExtensions:  []string{config.DefaultBinaryExtension},
		}
	case cfg != nil && len(cfg.Testers()) == 1:
		copied := *cfg.Testers()[0]
		r.tester = &copied
	default:
		return nil, errors.New("no tester selected, use --tester or --address")
	}

	if flagAddress != "" {
		r.tester.Address = flagAddress
	}

	if cmd.Flags().Changed("timeout") {
		r.tester.Timeout = flagTimeout
	}

	if flagLog != "" {
		r.tester.LogFile = flagLog
	}

	return r, nil
}

// openSession connects to the resolved tester. The session is returned even
// if the connection failed; its operations report scpi.ErrNotConnected then.
func openSession(cmd *cobra.Command) (*tester.Session, *target, error) {
	t, err := resolveTarget(cmd)
	if err != nil {
		return nil, nil, err
	}

	transcriptOptions := []transcript.Option{
		transcript.WithFile(t.tester.LogFile),
		transcript.WithConsole(cmd.ErrOrStderr()),
	}

	if flagQuiet {
		transcriptOptions = append(transcriptOptions, transcript.WithoutConsole())
	}

	if !flagDebug {
		transcriptOptions = append(transcriptOptions, transcript.WithLevel(log.InfoLevel))
	}

	session := tester.New(
		scpi.NewSocketDriver(scpi.WithPort(t.tester.Port)),
		t.tester.Address,
		tester.WithTimeout(t.tester.Timeout),
		tester.WithTimeLimit(t.timeLimit),
		tester.WithListingThreshold(t.listingThreshold),
		tester.WithBinaryExtensions(t.tester.BinaryExtensions...),
		tester.WithTranscript(transcript.New(t.tester.Address, transcriptOptions...)),
	)

	return session, t, nil
}

func closeSession(session *tester.Session) {
	if err := session.Disconnect(); err != nil {
		log.Warnf("Failed to disconnect from %s: %s", session.Address(), err)
	}
}
