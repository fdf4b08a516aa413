package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"unicode/utf8"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/bft-labs/qrship/internal/adapters/dropdir"
	"github.com/bft-labs/qrship/internal/adapters/udev"
	"github.com/bft-labs/qrship/pkg/assembler"
	"github.com/bft-labs/qrship/pkg/log"
	"github.com/bft-labs/qrship/pkg/scan"
)

var errIncomplete = errors.New("input ended before the payload was complete")

func newReceiveCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "receive",
		Short: "Reassemble a payload from scanned frames",
		Long: "Reassemble a payload from scanned frames read from stdin, one per line,\n" +
			"or from text files dropped into --scan-dir by an external scanner.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			r := newReceiver(a.logger)
			var err error
			if a.cfg.ScanDir != "" {
				err = r.fromDir(ctx, a.cfg.ScanDir, a.cfg.Udev)
			} else {
				err = r.fromReader(ctx, cmd.InOrStdin())
			}
			if err != nil {
				return err
			}

			payload, _ := r.scanner.Assembler().Payload()
			return writePayload(cmd.OutOrStdout(), a.cfg.Out, payload, a.cfg.Force)
		},
	}

	cmd.Flags().StringVar(&a.cfg.ScanDir, "scan-dir", a.cfg.ScanDir, "directory an external scanner drops *.txt scan files into")
	cmd.Flags().BoolVar(&a.cfg.Udev, "udev", a.cfg.Udev, "report camera hotplug from udev (with --scan-dir)")
	cmd.Flags().StringVarP(&a.cfg.Out, "out", "o", a.cfg.Out, "write the payload to this file instead of stdout")
	cmd.Flags().BoolVar(&a.cfg.Force, "force", a.cfg.Force, "write binary payloads to a terminal")
	return cmd
}

// receiver wires a lifecycle, an assembler and the scanner glue together.
type receiver struct {
	logger  log.Logger
	scanner *scan.Scanner
	done    chan struct{}
}

func newReceiver(logger log.Logger) *receiver {
	r := &receiver{logger: logger, done: make(chan struct{})}
	asm := assembler.New(
		assembler.WithLogger(logger),
		assembler.WithOnComplete(func([]byte) { close(r.done) }),
	)
	lifecycle := scan.NewLifecycle(logger, &statusLogger{logger: logger})
	r.scanner = scan.NewScanner(lifecycle, asm)
	return r
}

func (r *receiver) handle(candidates []string) {
	for _, out := range r.scanner.HandleCandidates(candidates) {
		if out.Kind == assembler.OutcomeProgress && out.NewInfo {
			r.logger.Info("progress", log.Int("known", out.Known), log.Int("total", out.Total))
		}
	}
}

func (r *receiver) complete() bool {
	select {
	case <-r.done:
		return true
	default:
		return false
	}
}

// fromReader treats every line of in as one scanned candidate.
func (r *receiver) fromReader(ctx context.Context, in io.Reader) error {
	if err := r.scanner.Lifecycle().Apply(scan.EventStreamOpened, "reading stdin"); err != nil {
		return err
	}

	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 64*1024), 4<<20)
	for !r.complete() && sc.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if line := strings.TrimSpace(sc.Text()); line != "" {
			r.handle([]string{line})
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read frames: %w", err)
	}
	if !r.complete() {
		known, total := r.scanner.Assembler().Progress()
		return fmt.Errorf("%w (%d of %d fragments)", errIncomplete, known, total)
	}
	return nil
}

// fromDir watches a scan directory until the payload is complete.
func (r *receiver) fromDir(ctx context.Context, dir string, withUdev bool) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if withUdev {
		mon := udev.NewMonitor(r.scanner.Lifecycle(), r.logger)
		if err := mon.Start(ctx); err != nil {
			return err
		}
		defer mon.Stop()
	}

	cam := dropdir.New(dir, r.scanner.Lifecycle(), r.handle, r.logger)
	errCh := make(chan error, 1)
	go func() { errCh <- cam.Run(ctx) }()

	select {
	case <-r.done:
		cancel()
		<-errCh
		return nil
	case err := <-errCh:
		if err == nil {
			err = ctx.Err()
		}
		if r.complete() {
			return nil
		}
		return err
	}
}

// statusLogger reports camera status changes.
type statusLogger struct {
	logger log.Logger
}

// OnStatusChange is a no-op: the lifecycle logs every change itself.
func (s *statusLogger) OnStatusChange(previous, current scan.Status, reason string) {}

func (s *statusLogger) OnReadyChange(ready bool) {
	if ready {
		s.logger.Info("camera ready")
		return
	}
	s.logger.Warn("camera not ready; frames are not decoded")
}

// writePayload writes payload to path, or to w when path is empty. Binary
// payloads are not written to a terminal unless force is set.
func writePayload(w io.Writer, path string, payload []byte, force bool) error {
	if path != "" {
		if err := os.WriteFile(path, payload, 0o644); err != nil {
			return fmt.Errorf("write payload: %w", err)
		}
		return nil
	}
	if !force && !utf8.Valid(payload) && isTerminal(w) {
		return errors.New("refusing to write binary payload to a terminal; use --out or --force")
	}
	_, err := w.Write(payload)
	return err
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
