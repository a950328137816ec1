// Package main is the entry point for the notchbard bar daemon.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/diamondburned/gotk4-adwaita/pkg/adw"
	"github.com/diamondburned/gotk4/pkg/glib/v2"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/jmylchreest/notchbar/internal/config"
	"github.com/jmylchreest/notchbar/internal/daemon"
	"github.com/jmylchreest/notchbar/internal/dbus"
	"github.com/jmylchreest/notchbar/internal/display"
	"github.com/jmylchreest/notchbar/internal/layout"
	"github.com/jmylchreest/notchbar/internal/model"
	"github.com/jmylchreest/notchbar/internal/reconcile"
	"github.com/jmylchreest/notchbar/internal/store"
)

const (
	appID   = "io.github.jmylchreest.notchbard"
	appName = "notchbard"
)

var (
	// Build-time variables
	version = "dev"
)

func main() {
	configPath := flag.String("config", "", "Path to the daemon config file")
	verbose := flag.Bool("verbose", false, "Enable debug logging")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(appName, "version", version)
		os.Exit(0)
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	os.Exit(run(*configPath, logger))
}

// run starts the GTK application and blocks until it exits.
func run(configPath string, logger *slog.Logger) int {
	logger.Info("starting notchbard", "version", version)

	cfg, err := config.LoadDaemonConfig(configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return 1
	}

	app := adw.NewApplication(appID, 0)

	// Shared state between GTK main loop and signal handlers
	var (
		nodeStore        *store.Store
		reconciler       *reconcile.Reconciler
		dbusServer       *dbus.Server
		configWatcher    *daemon.ConfigWatcher
		internalNotifier *daemon.InternalNotifier
		running          atomic.Bool
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// stop runs on the main loop and is safe to call more than once.
	stop := func() {
		if configWatcher != nil {
			configWatcher.Stop()
		}
		if dbusServer != nil {
			_ = dbusServer.Stop()
		}
		if reconciler != nil {
			reconciler.Close()
		}
		if nodeStore != nil {
			_ = nodeStore.Close()
		}
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received signal, shutting down", "signal", sig)
		cancel()

		glib.IdleAdd(func() {
			if running.Load() {
				stop()
				app.Quit()
			}
		})
	}()

	app.ConnectActivate(func() {
		if running.Load() {
			logger.Warn("application already running")
			return
		}
		running.Store(true)

		display.InstallCSS()

		topology := display.NewTopology(cfg, logger)
		if err := topology.Scan(); err != nil {
			logger.Error("failed to enumerate displays", "error", err)
			app.Quit()
			return
		}

		internalNotifier = daemon.NewInternalNotifier(logger)
		internalNotifier.SetEnabled(cfg.Notify.Enabled)

		backend := display.NewBackend(&app.Application, topology, cfg, logger)
		nodeStore = store.NewStore()
		changes := nodeStore.Subscribe()

		reconciler = reconcile.New(reconcile.Config{
			Interval:  cfg.Bar.Debounce.Duration(),
			Placement: reconcile.Placement{OffsetTop: cfg.Bar.OffsetTop},
			Logger:    logger,
		}, nodeStore, topology, &reportingBackend{Backend: backend, notifier: internalNotifier}, newEngine(cfg, logger), display.Scheduler{})

		controller := daemon.NewController(daemon.ControllerConfig{
			Version: version,
			Invoker: display.Invoke,
			Logger:  logger,
		}, nodeStore, reconciler, topology)

		topology.Watch(controller.DisplaysChanged)

		dbusServer = dbus.NewServer(controller, logger)
		if err := dbusServer.Start(); err != nil {
			logger.Error("failed to start D-Bus server", "error", err)
			stop()
			app.Quit()
			return
		}
		dbusServer.ForwardChanges(changes)
		internalNotifier.SetSender(dbusServer.SendNotification)

		backend.SetClickCallback(func(name string) {
			if err := dbusServer.EmitClicked(name); err != nil {
				logger.Warn("failed to emit click signal", "name", name, "error", err)
			}
		})

		configWatcher, err = daemon.NewConfigWatcher(configPath, logger)
		if err != nil {
			logger.Warn("failed to create config watcher", "error", err)
		} else {
			configWatcher.SetReloadCallback(func(newConfig *config.DaemonConfig) {
				var engine *layout.Engine
				display.Invoke(func() {
					engine = newEngine(newConfig, logger)
					backend.Configure(newConfig)
				})
				controller.Reconfigure(engine, newConfig)
				internalNotifier.SetEnabled(newConfig.Notify.Enabled)
				internalNotifier.NotifyConfigReloaded()
			})
			configWatcher.SetErrorCallback(func(err error) {
				internalNotifier.NotifyConfigError(err)
			})
			if err := configWatcher.Start(ctx, cfg); err != nil {
				logger.Warn("failed to start config watcher", "error", err)
			}
		}

		logger.Info("notchbard ready",
			"dbus_interface", dbus.DBusInterface,
			"displays", len(topology.Displays()),
		)

		// Create a hidden window to keep the application running
		// (GTK apps quit when all windows are closed)
		keepAliveWindow := gtk.NewWindow()
		keepAliveWindow.SetApplication(&app.Application)
		keepAliveWindow.SetDefaultSize(1, 1)
		keepAliveWindow.SetDecorated(false)
		keepAliveWindow.SetVisible(false)
	})

	app.ConnectShutdown(func() {
		logger.Info("application shutting down")
		stop()
		running.Store(false)
	})

	status := app.Run(os.Args[:1])
	if status != 0 {
		logger.Error("application exited with error", "status", status)
		return status
	}

	logger.Info("notchbard stopped")
	return 0
}

// newEngine builds a layout engine from the font and bar settings. It must
// run on the main loop when the pango measurer is selected.
func newEngine(cfg *config.DaemonConfig, logger *slog.Logger) *layout.Engine {
	weight, err := model.ParseWeight(cfg.Font.Weight)
	if err != nil {
		weight = layout.DefaultFontWeight
	}

	var text layout.TextMeasurer
	switch config.Measurer(cfg.Font.Measurer) {
	case config.MeasurerBuiltin:
		m := layout.NewGoFontMeasurer()
		if cfg.Font.File != "" {
			if err := m.LoadFontFile(cfg.Font.File); err != nil {
				logger.Warn("failed to load font file, using Go fonts", "file", cfg.Font.File, "error", err)
			}
		}
		text = m
	default:
		text = display.NewPangoMeasurer()
	}

	return layout.NewEngine(text,
		layout.WithDefaultFont(layout.FontSpec{
			Family: cfg.Font.Family,
			Size:   cfg.Font.Size,
			Weight: weight,
		}),
		layout.WithWindowGap(cfg.Bar.Gap),
	)
}

// reportingBackend raises a desktop notification when a window cannot be
// created. The notification is sent off the main loop.
type reportingBackend struct {
	reconcile.Backend
	notifier *daemon.InternalNotifier
}

func (b *reportingBackend) CreateWindow(key reconcile.SlotKey, d reconcile.DisplayInfo) (reconcile.Window, error) {
	w, err := b.Backend.CreateWindow(key, d)
	if err != nil {
		go b.notifier.NotifyDisplayError(fmt.Errorf("%s on %s: %w", key, d.Name, err))
	}
	return w, err
}
