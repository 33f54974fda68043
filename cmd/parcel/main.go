// Package main is the CLI entry point for parcel.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/eliteGoblin/parcel/internal/archive"
	"github.com/eliteGoblin/parcel/internal/codec"
	"github.com/eliteGoblin/parcel/internal/config"
	"github.com/eliteGoblin/parcel/internal/domain"
	"github.com/eliteGoblin/parcel/internal/history"
	"github.com/eliteGoblin/parcel/internal/infra"
	"github.com/eliteGoblin/parcel/internal/ipc"
	"github.com/eliteGoblin/parcel/internal/launch"
	"github.com/eliteGoblin/parcel/internal/session"
	"github.com/eliteGoblin/parcel/internal/usecase"
)

var (
	// Version info (set via ldflags)
	Version   = "0.1.0"
	Commit    = "dev"
	BuildTime = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "parcel",
	Short: "Desktop archive utility - compress and decompress file batches",
	Long: `parcel compresses and decompresses file batches (zip, tar.gz, tar.br,
gzip, brotli, bzip2). Dropping files on the application may start several
processes at once; parcel collapses them into one running instance and
accumulates every dropped item before the UI is enabled.`,
	Version: Version,
}

var launchCmd = &cobra.Command{
	Use:   "launch [files...]",
	Short: "Handle one OS launch of the application",
	Long: `Handles one process invocation. The first launch takes the instance
lock, becomes the primary and hosts the session; every later launch forwards
its file arguments to the primary over the local socket and exits.`,
	RunE: runLaunch,
}

var compressCmd = &cobra.Command{
	Use:   "compress [files...]",
	Short: "Compress files into one archive",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCompress,
}

var decompressCmd = &cobra.Command{
	Use:   "decompress [archives...]",
	Short: "Extract archives, each into its own directory",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runDecompress,
}

var kindsCmd = &cobra.Command{
	Use:   "kinds",
	Short: "List supported compression types",
	RunE:  runKinds,
}

var validateCmd = &cobra.Command{
	Use:   "validate <kind> [files...]",
	Short: "Check whether a compression type accepts a batch",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runValidate,
}

var acknowledgeCmd = &cobra.Command{
	Use:   "acknowledge <count>",
	Short: "Report a processed-item count to the running session",
	Args:  cobra.ExactArgs(1),
	RunE:  runAcknowledge,
}

var openFolderCmd = &cobra.Command{
	Use:   "open-folder <path>",
	Short: "Reveal a file in the OS file manager",
	Args:  cobra.ExactArgs(1),
	RunE:  runOpenFolder,
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent archive jobs",
	RunE:  runHistory,
}

var closeCmd = &cobra.Command{
	Use:   "close",
	Short: "Terminate all running instances of the application",
	RunE:  runClose,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run:   runPrintVersion,
}

var (
	configPath     string
	decompressMode bool
	outputName     string
	kindTag        string
	historyLimit   int
	jsonOutput     bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath(), "Config file path")
	launchCmd.Flags().BoolVar(&decompressMode, "decompress", false, "Launch in decompression mode")
	compressCmd.Flags().StringVarP(&outputName, "output", "o", "", "Archive name or absolute path (defaults next to the first source)")
	compressCmd.Flags().StringVarP(&kindTag, "type", "t", "Zip", "Compression type (see 'parcel kinds')")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Max jobs to show")
	versionCmd.Flags().BoolVar(&jsonOutput, "json", false, "Output version info as JSON")

	rootCmd.AddCommand(launchCmd)
	rootCmd.AddCommand(compressCmd)
	rootCmd.AddCommand(decompressCmd)
	rootCmd.AddCommand(kindsCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(acknowledgeCmd)
	rootCmd.AddCommand(openFolderCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(closeCmd)
	rootCmd.AddCommand(versionCmd)
}

// launchArgv rebuilds the [executable, subcommand, files...] argv the
// aggregator expects from cobra's parsed positionals. Flag tokens such as
// --decompress or --config must never reach the item list.
func launchArgv(files []string) []string {
	argv := make([]string, 0, len(files)+2)
	argv = append(argv, os.Args[0], "launch")
	return append(argv, files...)
}

func runLaunch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	intent := domain.IntentCompress
	if decompressMode {
		intent = domain.IntentDecompress
	}
	argv := launchArgv(args)

	instance, err := launch.Elect(cfg.Paths.LockPath)
	if err != nil {
		return err
	}

	if !instance.IsPrimary() {
		// Redirected launch: hand the file arguments to the primary and exit.
		client, err := ipc.Dial(cfg.Paths.SocketPath)
		if err != nil {
			return fmt.Errorf("connect to primary instance: %w", err)
		}
		defer client.Close()

		if _, err := client.Forward(argv, string(intent)); err != nil {
			return fmt.Errorf("forward launch: %w", err)
		}
		return nil
	}
	defer func() { _ = instance.Release() }()

	logger := createLogger(cfg)
	defer func() { _ = logger.Sync() }()

	return runPrimarySession(cfg, logger, intent, argv)
}

// runPrimarySession hosts the session: the shared counters, the launch
// aggregator, the readiness watcher, the command surface and the session
// server live here until the process is told to stop.
func runPrimarySession(cfg *config.Config, logger *zap.Logger, intent domain.LaunchIntent, argv []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("received shutdown signal")
		cancel()
	}()

	counters := session.NewCounters()
	emitter := infra.NewNDJSONEmitter(os.Stdout)

	aggConfig := launch.AggregatorConfig{
		WindowPollInterval: cfg.WindowPollInterval(),
		StartupDebounce:    cfg.StartupDebounce(),
		EarlyWindowCount:   int64(cfg.Launch.EarlyWindowCount),
		WindowWaitBound:    cfg.WindowWaitBound(),
	}
	aggregator := launch.NewAggregator(aggConfig, counters, emitter, logger)

	var store domain.HistoryStore
	if s, err := history.Open(cfg); err != nil {
		logger.Warn("history store unavailable", zap.Error(err))
	} else {
		store = s
		defer func() { _ = s.Close() }()
	}

	// The session surface shares the event stream and counters with the
	// aggregator, so progress from forwarded jobs reaches the same UI.
	runner := archive.NewRunner(codec.New(logger), emitter, logger)
	surface := usecase.NewSurface(
		runner,
		counters,
		infra.NewProcessManager(),
		infra.NewFolderOpener(),
		store,
		cfg.App.ProcessName,
		logger,
	)

	server, err := ipc.NewServer(ctx, cfg.Paths.SocketPath, aggregator, logger)
	if err != nil {
		return err
	}
	if err := server.RegisterSurface(surface); err != nil {
		return err
	}
	server.Serve()
	defer server.Close()

	// The primary's own argv is the first launch of the session.
	aggregator.HandleLaunch(domain.LaunchRequest{
		Argv:   argv,
		Intent: intent,
	})

	// Window setup: the UI host reads events from stdout and reports its
	// window here. The readiness watcher starts with it.
	counters.WindowCreated()
	watcher := launch.NewReadinessWatcher(cfg.ReadinessPollInterval(), counters, emitter, logger)
	go watcher.Run(ctx)

	logger.Info("primary instance running",
		zap.String("socket", cfg.Paths.SocketPath),
		zap.String("intent", string(intent)))

	<-ctx.Done()
	aggregator.Wait()
	return nil
}

// newSurface wires the command surface for one-shot CLI commands, rendering
// progress as a terminal bar instead of an event stream.
func newSurface(cfg *config.Config, logger *zap.Logger, withHistory bool) (*usecase.Surface, func()) {
	var store domain.HistoryStore
	cleanup := func() {}
	if withHistory {
		s, err := history.Open(cfg)
		if err != nil {
			logger.Warn("history store unavailable", zap.Error(err))
		} else {
			store = s
			cleanup = func() { _ = s.Close() }
		}
	}

	runner := archive.NewRunner(codec.New(logger), newProgressBarEmitter(os.Stdout), logger)
	surface := usecase.NewSurface(
		runner,
		session.NewCounters(),
		infra.NewProcessManager(),
		infra.NewFolderOpener(),
		store,
		cfg.App.ProcessName,
		logger,
	)
	return surface, cleanup
}

func runCompress(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	kind, err := domain.ParseKind(kindTag)
	if err != nil {
		return err
	}
	if !kind.SupportsMultipleFiles() && len(args) > 1 {
		return fmt.Errorf("%s takes a single input file, got %d", kindTag, len(args))
	}

	dest := outputName
	if dest == "" {
		dest = "archive" + kind.Extension()
	}

	// A running session holds the instance lock, so the job is handed to it
	// instead of spawning a second instance here.
	if client, err := ipc.Dial(cfg.Paths.SocketPath); err == nil {
		defer client.Close()
		msg, err := client.Compress(args, dest, kindTag)
		if err != nil {
			return err
		}
		fmt.Println(msg)
		return nil
	}

	logger, _ := zap.NewDevelopment()
	defer func() { _ = logger.Sync() }()

	surface, cleanup := newSurface(cfg, logger, true)
	defer cleanup()

	msg, err := surface.Compress(cmd.Context(), args, dest, kindTag)
	if err != nil {
		return err
	}
	fmt.Println(msg)
	return nil
}

func runDecompress(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if client, err := ipc.Dial(cfg.Paths.SocketPath); err == nil {
		defer client.Close()
		msg, err := client.Decompress(args)
		if err != nil {
			return err
		}
		fmt.Println(msg)
		return nil
	}

	logger, _ := zap.NewDevelopment()
	defer func() { _ = logger.Sync() }()

	surface, cleanup := newSurface(cfg, logger, true)
	defer cleanup()

	msg, err := surface.Decompress(cmd.Context(), args)
	if err != nil {
		return err
	}
	fmt.Println(msg)
	return nil
}

func runKinds(cmd *cobra.Command, args []string) error {
	for _, kind := range domain.SupportedKinds() {
		multi := "single file"
		if kind.SupportsMultipleFiles() {
			multi = "multiple files"
		}
		fmt.Printf("  %-6s %-10s %s\n", kind, kind.Extension(), multi)
	}
	return nil
}

func runValidate(cmd *cobra.Command, args []string) error {
	kind, err := domain.ParseKind(args[0])
	if err != nil {
		return err
	}

	files := args[1:]
	if !kind.SupportsMultipleFiles() && len(files) > 1 {
		fmt.Printf("false: %s takes a single input file, got %d\n", kind, len(files))
		return nil
	}
	fmt.Println("true")
	return nil
}

func runAcknowledge(cmd *cobra.Command, args []string) error {
	count, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("count must be an integer: %w", err)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	client, err := ipc.Dial(cfg.Paths.SocketPath)
	if err != nil {
		return fmt.Errorf("no running session: %w", err)
	}
	defer client.Close()

	return client.Acknowledge(count)
}

func runOpenFolder(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if client, err := ipc.Dial(cfg.Paths.SocketPath); err == nil {
		defer client.Close()
		return client.OpenFolder(args[0])
	}
	return infra.NewFolderOpener().OpenContaining(args[0])
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	store, err := history.Open(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.List(cmd.Context(), historyLimit)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("No archive jobs recorded yet.")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"When", "Operation", "Kind", "Sources", "Status", "Message"})
	for _, rec := range records {
		t.AppendRow(table.Row{
			rec.StartedAt.Format("2006-01-02 15:04:05"),
			rec.Operation,
			rec.Kind,
			rec.SourceCount,
			rec.Status,
			rec.Message,
		})
	}
	t.Render()
	return nil
}

func runClose(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	pm := infra.NewProcessManager()
	killed, err := pm.KillByName(cfg.App.ProcessName)
	if err != nil {
		return fmt.Errorf("terminate instances: %w", err)
	}
	fmt.Printf("Terminated %d instance(s) of %s\n", killed, cfg.App.ProcessName)
	return nil
}

func createLogger(cfg *config.Config) *zap.Logger {
	logConfig := zap.NewProductionConfig()
	logConfig.OutputPaths = []string{cfg.Paths.LogPath}
	logConfig.ErrorOutputPaths = []string{cfg.Paths.LogPath}
	logConfig.EncoderConfig.TimeKey = "time"
	logConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := logConfig.Build()
	if err != nil {
		// Fallback to stderr if file logging fails. Never stdout: that
		// stream carries the UI event feed.
		logger, _ = zap.NewProduction()
	}
	return logger
}

func runPrintVersion(cmd *cobra.Command, args []string) {
	if jsonOutput {
		fmt.Printf(`{"version":"%s","commit":"%s","build_time":"%s"}`+"\n",
			Version, Commit, BuildTime)
	} else {
		fmt.Printf("parcel %s (commit: %s, built: %s)\n",
			Version, Commit, BuildTime)
	}
}
