package listen

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/txn2/logfwd/pkg/fwdapi"
	"github.com/txn2/logfwd/pkg/fwdcache"
	"github.com/txn2/logfwd/pkg/fwdcfg"
	"github.com/txn2/logfwd/pkg/fwddispatch"
	"github.com/txn2/logfwd/pkg/fwdevent"
	"github.com/txn2/logfwd/pkg/fwdlisten"
	"github.com/txn2/logfwd/pkg/fwdmetrics"
	"github.com/txn2/logfwd/pkg/fwdtui"
	"github.com/txn2/logfwd/pkg/fwdtui/styles"
	"github.com/txn2/logfwd/pkg/fwdview"
	"github.com/txn2/logfwd/pkg/utils"
)

// cmdline arguments
var addresses []string
var configPath string
var verbose bool
var tuiMode bool
var apiMode bool
var apiAddr string
var window time.Duration
var capacity int
var maxCount int
var tabs []string
var hide string

// Version is set by the main package
var Version string

func init() {
	registerFlags(Cmd)
}

// registerFlags binds the cmdline arguments to cmd
func registerFlags(cmd *cobra.Command) {
	cmd.Flags().StringSliceVarP(&addresses, "address", "a", []string{}, "Listener address, e.g. udp://0.0.0.0:7071 or udp6://[::1]:7071. Specify multiple listeners by duplicating this argument.")
	cmd.Flags().StringVarP(&configPath, "config", "z", "", "Path to a logfwd YAML configuration file.")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output.")
	cmd.Flags().BoolVar(&tuiMode, "tui", false, "Enable terminal user interface mode for interactive log viewing")
	cmd.Flags().BoolVar(&apiMode, "api", false, "Enable REST API server for automation and the MCP bridge")
	cmd.Flags().StringVar(&apiAddr, "api-addr", fwdcfg.DefaultAPIAddr, "REST API listen address.")
	cmd.Flags().DurationVar(&window, "window", fwddispatch.DefaultWindow, "Batching window for received events (e.g. 100ms, 1s)")
	cmd.Flags().IntVar(&capacity, "capacity", fwdcache.DefaultCapacity, "Replay cache size of each new channel.")
	cmd.Flags().IntVar(&maxCount, "max-count", fwddispatch.DefaultMaxCount, "Events kept for display per channel. 0 keeps everything.")
	cmd.Flags().StringSliceVar(&tabs, "tab", []string{}, "Per application display limit as App=maxCount. Specify multiple by duplicating this argument.")
	cmd.Flags().StringVar(&hide, "hide", "", "Comma separated levels hidden at start in the TUI, e.g. trace,debug")
}

var Cmd = &cobra.Command{
	Use:     "listen",
	Aliases: []string{"l"},
	Short:   "Receive log4j events over UDP",
	Long: `Receive log4j XML events over UDP and group them into one channel per
sending application and machine.

Each channel keeps a replay cache of its most recent events, so late
subscribers (API streams, the MCP bridge) see recent history before live
events. The display copy of a channel is trimmed with slack: it holds up
to max-count + 99 events, and the append that reaches max-count + 100
cuts it back to the newest max-count events.

Headless Mode:
  When neither --tui nor --api is given, the REST API is enabled so the
  running receiver can be inspected and controlled (logfwd mcp, curl).`,
	Example: "  logfwd listen                                  # udp://0.0.0.0:7071 with API\n" +
		"  logfwd listen --tui                            # Interactive viewer\n" +
		"  logfwd listen -a udp://0.0.0.0:7071 -a udp6://[::]:7071\n" +
		"  logfwd listen -z logfwd.yaml --tui --api       # Config file, TUI and API\n" +
		"  logfwd listen --tui --hide trace,debug --tab Billing=5000",
	Run: runCmd,
}

// applyFlags merges explicitly set flags over the configuration
func applyFlags(cmd *cobra.Command, cfg *fwdcfg.Configuration) error {
	flags := cmd.Flags()
	if flags.Changed("address") {
		cfg.Listeners = addresses
	}
	if flags.Changed("api-addr") {
		cfg.API.Addr = apiAddr
	}
	if flags.Changed("window") {
		cfg.Window = window
	}
	if flags.Changed("capacity") {
		cfg.DefaultCapacity = capacity
	}
	if flags.Changed("max-count") {
		cfg.MaxCount = maxCount
	}
	cfg.ApplyTabOverrides(tabs)

	if len(cfg.Listeners) == 0 {
		return errors.New("no listener addresses configured")
	}
	return cfg.Validate()
}

// detectHeadlessMode enables the API when no viewer was requested
func detectHeadlessMode(cmd *cobra.Command) {
	if tuiMode || cmd.Flags().Changed("api") {
		return
	}
	apiMode = true
	log.Println("Starting in headless mode - API enabled")
}

// pipeline is the running receive path: listeners feed the dispatcher,
// which fills the replay caches and the display loop.
type pipeline struct {
	cfg        *fwdcfg.Configuration
	resolver   fwdevent.Resolver
	metrics    *fwdmetrics.Registry
	listener   *fwdlisten.Manager
	registry   *fwdcache.Registry[*fwdevent.LogEvent]
	loop       *fwdview.Loop
	dispatcher *fwddispatch.Dispatcher

	cancel       context.CancelFunc
	dispatchDone chan struct{}
}

// newPipeline builds every component without binding any socket
func newPipeline(cfg *fwdcfg.Configuration) (*pipeline, error) {
	resolver, err := cfg.Resolver()
	if err != nil {
		return nil, err
	}

	metrics := fwdmetrics.NewRegistry()
	listener := fwdlisten.NewManager(cfg.Decoder(), metrics)
	registry := fwdcache.NewRegistry[*fwdevent.LogEvent]()
	loop := fwdview.NewLoop(fwdview.NewState(), 0)

	dispatcher := fwddispatch.New(listener.Events(), registry, loop, fwddispatch.Options{
		Window:          cfg.Window,
		DefaultCapacity: cfg.DefaultCapacity,
		MaxCount:        cfg.MaxCountFor,
		Metrics:         metrics,
	})

	return &pipeline{
		cfg:          cfg,
		resolver:     resolver,
		metrics:      metrics,
		listener:     listener,
		registry:     registry,
		loop:         loop,
		dispatcher:   dispatcher,
		dispatchDone: make(chan struct{}),
	}, nil
}

// start runs the consumers and binds the configured listeners
func (p *pipeline) start() fwdlisten.StartResult {
	p.metrics.Start()
	p.loop.Start()

	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	go func() {
		defer close(p.dispatchDone)
		p.dispatcher.Run(ctx)
	}()

	return p.listener.StartListening(p.cfg.Listeners)
}

// stop closes the sockets, flushes the dispatcher and drains the loop
func (p *pipeline) stop() {
	p.listener.Stop()

	if p.cancel != nil {
		p.cancel()
		select {
		case <-p.dispatchDone:
			log.Debugf("Dispatcher flushed")
		case <-time.After(3 * time.Second):
			log.Debugf("Timeout waiting for dispatcher, forcing exit")
		}
	}

	p.loop.Stop()
	p.metrics.Stop()
}

// privilegedListeners returns the UDP listener addresses that need a port
// below 1024
func privilegedListeners(listeners []string) []string {
	var hostports []string
	for _, addr := range listeners {
		_, hostport, ok, err := fwdlisten.ParseAddress(addr)
		if err != nil || !ok {
			continue
		}
		hostports = append(hostports, hostport)
	}
	return utils.PrivilegedAddresses(hostports)
}

// checkPrivileges warns when a listener port needs superuser privileges
// the process does not have
func checkPrivileges(listeners []string) {
	low := privilegedListeners(listeners)
	if len(low) == 0 {
		return
	}

	hasRoot, err := utils.CheckRoot()
	if err != nil {
		log.Debugf("Root check failure: %s", err)
		return
	}
	if !hasRoot {
		log.Warnf("Listening on %s requires superuser privileges. Try: sudo -E logfwd listen", strings.Join(low, ", "))
	}
}

// reportStartResult logs bind failures one per line
func reportStartResult(result fwdlisten.StartResult) {
	if result.ErrorMessage == "" {
		return
	}
	for _, line := range strings.Split(result.ErrorMessage, "\n") {
		log.Errorf("Listener error: %s", line)
	}
}

// setupSignalHandler sets up graceful shutdown on signals
func setupSignalHandler(triggerShutdown func()) {
	go func() {
		sigChan := make(chan os.Signal, 2)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(sigChan)

		<-sigChan
		if !tuiMode {
			log.Infof("Shutting down... (press Ctrl+C again to force)")
		}
		triggerShutdown()

		<-sigChan
		log.Warnf("Forced shutdown")
		os.Exit(1)
	}()
}

// setupAPIManager creates the API manager and hands it the pipeline
func setupAPIManager(p *pipeline, logBuffer *fwdapi.LogBuffer) *fwdapi.Manager {
	if !apiMode {
		return nil
	}

	apiManager := fwdapi.NewManager(p.cfg.API.Addr, Version)
	apiManager.SetChannelReader(fwdapi.NewChannelReaderAdapter(p.loop))
	apiManager.SetReplaySource(p.registry)
	apiManager.SetMetricsProvider(p.metrics)
	apiManager.SetListenerController(p.listener)
	apiManager.SetExporter(p.cfg.Exporter())
	apiManager.SetLogBuffer(logBuffer)
	apiManager.SetResolver(p.resolver)
	apiManager.SetTUIEnabled(tuiMode)
	return apiManager
}

// setupTUIManager creates the TUI manager when TUI mode is enabled
func setupTUIManager(p *pipeline, stopListenCh chan struct{}, triggerShutdown func()) *fwdtui.Manager {
	if !tuiMode {
		return nil
	}

	styles.DetectTheme()
	return fwdtui.New(fwdtui.Options{
		Version:   Version,
		Loop:      p.loop,
		Metrics:   p.metrics,
		Resolver:  p.resolver,
		Listeners: p.listener.Addresses,
		Hide:      hide,
	}, stopListenCh, triggerShutdown)
}

// startAPIServer starts the API server in background if enabled
func startAPIServer(apiManager *fwdapi.Manager) {
	if apiManager == nil {
		return
	}
	go func() {
		if err := apiManager.Run(); err != nil {
			log.Errorf("API server error: %s", err)
		}
	}()
}

// runMainLoop runs the main blocking loop
func runMainLoop(tuiManager *fwdtui.Manager, apiManager *fwdapi.Manager, stopListenCh chan struct{}) {
	switch {
	case tuiManager != nil:
		if err := tuiManager.Run(); err != nil {
			log.Errorf("TUI error: %s", err)
		}
	case apiManager != nil:
		select {
		case <-apiManager.Ready():
			log.Infof("API server running at http://%s/api", apiManager.Addr())
		case <-apiManager.Done():
		}
		log.Println("Press [Ctrl-C] to stop.")
		<-stopListenCh
	default:
		<-stopListenCh
	}
}

// performShutdown handles graceful shutdown sequence
func performShutdown(p *pipeline, tuiManager *fwdtui.Manager, apiManager *fwdapi.Manager) {
	if tuiManager != nil {
		select {
		case <-tuiManager.Done():
			log.Debugf("TUI cleanup complete")
		case <-time.After(1 * time.Second):
			log.Debugf("Timeout waiting for TUI cleanup")
		}
	}

	if apiManager != nil {
		apiManager.Stop()
		select {
		case <-apiManager.Done():
			log.Debugf("API server cleanup complete")
		case <-time.After(1 * time.Second):
			log.Debugf("Timeout waiting for API cleanup")
		}
	}

	p.stop()

	log.Infof("Clean exit")
}

func runCmd(cmd *cobra.Command, _ []string) {
	if verbose {
		log.SetLevel(log.DebugLevel)
	}

	cfg, err := fwdcfg.Load(configPath)
	if err != nil {
		log.Fatalf("Configuration error: %s", err)
	}
	if err := applyFlags(cmd, cfg); err != nil {
		log.Fatalf("Configuration error: %s", err)
	}

	detectHeadlessMode(cmd)

	logBuffer := fwdapi.NewLogBuffer(fwdapi.DefaultLogBufferSize)
	log.AddHook(fwdapi.NewLogBufferHook(logBuffer, nil))

	p, err := newPipeline(cfg)
	if err != nil {
		log.Fatalf("Configuration error: %s", err)
	}

	checkPrivileges(cfg.Listeners)

	result := p.start()
	reportStartResult(result)
	if !result.AnyStarted {
		p.stop()
		log.Errorf("No listener could be started")
		os.Exit(1)
	}

	stopListenCh := make(chan struct{})
	var stopOnce sync.Once
	triggerShutdown := func() {
		stopOnce.Do(func() {
			close(stopListenCh)
		})
	}
	setupSignalHandler(triggerShutdown)

	apiManager := setupAPIManager(p, logBuffer)
	tuiManager := setupTUIManager(p, stopListenCh, triggerShutdown)
	startAPIServer(apiManager)

	runMainLoop(tuiManager, apiManager, stopListenCh)
	triggerShutdown()
	performShutdown(p, tuiManager, apiManager)
}
