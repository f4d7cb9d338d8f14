package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dreitier/testermon/config"
	"github.com/dreitier/testermon/monitor"
	"github.com/dreitier/testermon/storage"
	"github.com/dreitier/testermon/web"
	termbox "github.com/nsf/termbox-go"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

var flagBackground bool

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Monitor all configured testers and serve their state over HTTP",
	Long: `Refresh every configured tester periodically: check its identification and
storage and download the files of its scheduled downloads into the archive.
The state, the catalogs and the archived files are served below /api, the
metrics at /metrics.

Press 'r' to refresh immediately, 'q' or ESC to exit.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVarP(&flagBackground, "background", "b", false, "Do not read keys from the terminal")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfiguration()
	if err != nil {
		return err
	}

	if !config.HasGlobalDebugEnabled() {
		log.SetLevel(cfg.Global().LogLevel())
	}

	if len(cfg.Testers()) == 0 {
		return fmt.Errorf("no testers configured")
	}

	var opts []monitor.Option
	if cfg.Archive() != nil {
		opts = append(opts, monitor.WithArchive(storage.NewClient(cfg.Archive())))
	}

	m := monitor.New(cfg, opts...)
	defer m.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m.Schedule(ctx, cfg.Global().UpdateInterval())

	var terminalRestored <-chan struct{}
	if !flagBackground {
		terminalRestored = configureTerminal(ctx, m, cancel)
	}

	srv := web.NewServer(cfg, web.NewRouter(m, cfg.Http().BasicAuth))

	go func() {
		<-ctx.Done()
		log.Infof("Shutting down...")

		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancelShutdown()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warnf("Failed to shut down webserver: %s", err)
		}
	}()

	err = web.ListenAndServe(cfg, srv)

	// leave raw mode before the process exits
	cancel()
	if terminalRestored != nil {
		<-terminalRestored
	}

	return err
}

// configureTerminal polls the raw keyboard input: 'r' and Ctrl+R refresh all
// testers, 'q', ESC and Ctrl+C call exit. The returned channel is closed once
// the terminal has been restored; it is nil if the terminal is not interactive.
func configureTerminal(ctx context.Context, m *monitor.Monitor, exit func()) <-chan struct{} {
	// @see https://github.com/nsf/termbox-go/blob/master/_demos/raw_input.go
	if err := termbox.Init(); err != nil {
		log.Warnf("Unable to run in interactive mode: %s", err)
		return nil
	}

	done := make(chan struct{})

	go func() {
		exitRequested := false

		defer func() {
			termbox.Close()
			close(done)

			if exitRequested {
				exit()
			}
		}()

		for {
			var data [64]byte

			// normal events don't include escape sequences
			switch ev := termbox.PollRawEvent(data[:]); ev.Type {
			case termbox.EventRaw:
				switch keyAction(data[:ev.N]) {
				case actionRefresh:
					log.Printf("Forcing refresh...")
					go m.Refresh(ctx)
				case actionExit:
					log.Printf("Exiting...")
					exitRequested = true
					return
				}
			case termbox.EventInterrupt:
				return
			case termbox.EventError:
				log.Errorf("Reading from terminal failed: %s", ev.Err)
				return
			}
		}
	}()

	go interruptOnDone(ctx, done, termbox.Interrupt)

	return done
}

// interruptOnDone calls interrupt when ctx is done while the key polling is still running
func interruptOnDone(ctx context.Context, polling <-chan struct{}, interrupt func()) {
	select {
	case <-polling:
	case <-ctx.Done():
		select {
		case <-polling:
		default:
			interrupt()
		}
	}
}

type action int

const (
	actionNone action = iota
	actionRefresh
	actionExit
)

func keyAction(raw []byte) action {
	switch string(raw) {
	// Ctrl+R
	case "\x12", "r":
		return actionRefresh
	// ESC, Ctrl+C
	case "\x1b", "q", "\x03":
		return actionExit
	}
	return actionNone
}
