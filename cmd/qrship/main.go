package main

import (
	"fmt"
	"os"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/bft-labs/qrship/internal/cliconfig"
	"github.com/bft-labs/qrship/pkg/log"
)

const helpBanner = `
  ██████   ████████    █████████  █████   █████ █████ ███████████ 
 ███░░███ ░░███░░███  ███░░░░░███░░███   ░░███ ░░███ ░░███░░░░░███
░███ ░███  ░███ ░███ ░███    ░░░  ░███    ░███  ░███  ░███    ░███
░░███████  ░██████   ░░█████████  ░███████████  ░███  ░██████████ 
 ░░░░░███  ░███░░███  ░░░░░░░░███ ░███░░░░░███  ░███  ░███░░░░░░  
     ░███  ░███ ░░███ ███    ░███ ░███    ░███  ░███  ░███        
     █████ █████ ░░████░█████████ █████   █████ █████ █████       
    ░░░░░ ░░░░░   ░░░░  ░░░░░░░░░ ░░░░░   ░░░░░ ░░░░░ ░░░░░        
`

const helpDescription = `
Move a file between two devices that share nothing but a screen and a camera.

Highlights:
  - The sender loops an animated QR code; frames can be missed or seen twice.
  - After the plain fragments, every frame mixes several of them, so the
    receiver fills gaps without waiting for a full loop.
  - Frames of another transfer are ignored, never mixed in.
  - Configure via file ($HOME/.qrship/config.toml), QRSHIP_* env, or flags.
`

var longHelp = strings.TrimSpace(helpBanner) + "\n\n" + strings.TrimSpace(helpDescription)

var exampleUsage = strings.TrimSpace(`
  qrship send ./wallet.json --listen 127.0.0.1:8420
  qrship frames ./wallet.json --count 20 | qrship receive --out copy.json
  qrship receive --scan-dir /var/spool/qrship --udev --out copy.json
  qrship frames ./wallet.json | qrship inspect
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

// app carries the resolved configuration and logger into subcommands.
type app struct {
	cfg     cliconfig.Config
	cfgPath string
	zlog    zerolog.Logger
	logger  *log.ZerologAdapter
}

// loadConfig resolves configuration with precedence flags > env > file > defaults.
func (a *app) loadConfig(cmd *cobra.Command) error {
	cfgFile := a.cfgPath
	if cfgFile == "" {
		cfgFile = cliconfig.DefaultConfigPath()
	}

	changed := map[string]bool{}
	cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

	if cfgFile != "" && cliconfig.FileExists(cfgFile) {
		fc, err := cliconfig.LoadFileConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := cliconfig.ApplyFileConfig(&a.cfg, fc, changed); err != nil {
			return err
		}
	}

	// Environment overrides the file; flags override both via the changed map.
	if err := cliconfig.ApplyEnvConfig(&a.cfg, changed); err != nil {
		return err
	}

	if err := a.cfg.Validate(); err != nil {
		return err
	}

	level, err := zerolog.ParseLevel(a.cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	a.zlog = log.NewConsoleLogger(os.Stderr, level)
	a.logger = log.NewZerologAdapterWithLogger(a.zlog)
	a.zlog.Debug().Interface("config", a.cfg).Msg("configuration")
	return nil
}

func newRootCmd() *cobra.Command {
	a := &app{
		cfg:  cliconfig.DefaultConfig(),
		zlog: log.NewConsoleLogger(os.Stderr, zerolog.InfoLevel),
	}

	root := &cobra.Command{
		Use:           "qrship",
		Short:         "Transfer files over animated QR codes",
		Long:          longHelp,
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.loadConfig(cmd)
		},
	}

	root.PersistentFlags().StringVar(&a.cfgPath, "config", "", "path to config file (default: $HOME/.qrship/config.toml)")
	root.PersistentFlags().StringVar(&a.cfg.LogLevel, "log-level", a.cfg.LogLevel, "log level: debug, info, warn, error")

	root.AddCommand(
		newSendCmd(a),
		newFramesCmd(a),
		newReceiveCmd(a),
		newInspectCmd(a),
	)
	return root
}

// addCodecFlags registers the flags shared by commands that encode.
func addCodecFlags(cmd *cobra.Command, cfg *cliconfig.Config) {
	cmd.Flags().IntVar(&cfg.FragmentLen, "fragment-len", cfg.FragmentLen, "bytes per fragment")
	cmd.Flags().IntVar(&cfg.MaxDegree, "max-degree", cfg.MaxDegree, "maximum fragments mixed into one frame")
}

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "qrship: %v\n", err)
		os.Exit(1)
	}
}
