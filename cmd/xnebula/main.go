// Command xnebula is an X11 tiling window manager.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/Skulhunter5/xnebula/config"
	"github.com/Skulhunter5/xnebula/geometry"
	"github.com/Skulhunter5/xnebula/layout"
	"github.com/Skulhunter5/xnebula/wm"
	"github.com/Skulhunter5/xnebula/x11"
	"github.com/Skulhunter5/xnebula/xlog"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg := config.Default()

	log, err := xlog.New(cfg.DebugEvents)
	if err != nil {
		fmt.Fprintf(os.Stderr, "xnebula: building logger: %v\n", err)
		return 1
	}
	defer log.Sync()

	conn, err := x11.Connect()
	if err != nil {
		log.Error("connecting to the display", zap.Error(err))
		return 1
	}
	defer conn.Close()

	conn.SetErrorHandler(func(err error) {
		log.Warn("x11 protocol error", zap.Error(err))
	})

	if err := conn.BecomeWM(); err != nil {
		var already *x11.AlreadyRunningError
		if errors.As(err, &already) {
			log.Error("another window manager is already running", zap.Error(err))
			return 2
		}
		log.Error("becoming the window manager", zap.Error(err))
		return 1
	}

	cfg.Monitors = []geometry.Bounds{conn.MonitorBounds()}
	keybinds := config.DefaultKeybinds(conn)
	for _, kb := range keybinds {
		if err := conn.GrabKeybind(kb); err != nil {
			log.Warn("grabbing keybind", zap.Error(err))
		}
	}

	monitor, _ := cfg.PrimaryMonitor()
	tree := layout.NewWindowTree(monitor)
	manager := wm.New(conn, tree, cfg, keybinds, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigs
		cancel()
	}()

	if err := manager.Run(ctx); err != nil {
		log.Error("event loop exited with an error", zap.Error(err))
		return 1
	}
	return 0
}
