package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/bft-labs/qrship/internal/adapters/httpui"
	"github.com/bft-labs/qrship/pkg/log"
	"github.com/bft-labs/qrship/pkg/playback"
)

func newSendCmd(a *app) *cobra.Command {
	var opts playback.Options

	cmd := &cobra.Command{
		Use:   "send <file>",
		Short: "Play a file as an animated QR code",
		Long: "Play a file as an animated QR code served at --listen. The command exits\n" +
			"when the receiving side presses Finish in the page.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			opts.RefreshSpeed = a.cfg.RefreshSpeed
			opts.FragmentLen = a.cfg.FragmentLen
			opts.MaxDegree = uint16(a.cfg.MaxDegree)
			return runSend(ctx, a, args[0], opts)
		},
	}

	addCodecFlags(cmd, &a.cfg)
	cmd.Flags().DurationVar(&a.cfg.RefreshSpeed, "refresh-speed", a.cfg.RefreshSpeed, "interval between frames")
	cmd.Flags().StringVar(&a.cfg.ListenAddr, "listen", a.cfg.ListenAddr, "address of the playback page")
	cmd.Flags().BoolVar(&a.cfg.Watch, "watch", a.cfg.Watch, "restart playback when the file changes")
	cmd.Flags().StringVar(&opts.Title, "title", "", "title shown above the code")
	cmd.Flags().StringVar(&opts.Description, "description", "", "description shown above the code")
	cmd.Flags().BoolVar(&opts.HasNext, "has-next", false, "label the finish button Continue")
	return cmd
}

func runSend(ctx context.Context, a *app, path string, opts playback.Options) error {
	payload, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read payload: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	server := httpui.New(a.logger)
	controller := playback.NewController(server, playback.WithLogger(a.logger))
	defer controller.Close()
	server.Attach(controller)

	serveErr := make(chan error, 1)
	go func() { serveErr <- server.ListenAndServe(ctx, a.cfg.ListenAddr) }()

	session, err := controller.Play(payload, opts)
	if err != nil {
		return err
	}

	var changes <-chan struct{}
	if a.cfg.Watch {
		changes, err = watchFile(ctx, path, a.logger)
		if err != nil {
			return err
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-session.Done():
			a.logger.Info("receiver finished", log.String("session", session.ID()))
			return nil

		case err := <-serveErr:
			return err

		case <-changes:
			payload, err := os.ReadFile(path)
			if err != nil {
				a.logger.Warn("reload payload", log.Err(err))
				continue
			}
			// The replaced session never resolves; wait on the new one.
			next, err := controller.Play(payload, opts)
			if err != nil {
				return err
			}
			session = next
		}
	}
}

// watchFile signals after path was written, debounced. The parent directory
// is watched so editors that replace the file by rename are seen too.
func watchFile(ctx context.Context, path string, logger log.Logger) (<-chan struct{}, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}

	const delay = 200 * time.Millisecond
	out := make(chan struct{}, 1)
	target := filepath.Clean(path)

	go func() {
		defer watcher.Close()
		debounce := time.NewTimer(delay)
		debounce.Stop()
		defer debounce.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				debounce.Reset(delay)
			case <-debounce.C:
				select {
				case out <- struct{}{}:
				default:
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("file watch error", log.Err(err))
			}
		}
	}()
	return out, nil
}
