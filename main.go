package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"Splonchpad/internal/config"
	"Splonchpad/internal/logging"
	lannet "Splonchpad/internal/net"
	"Splonchpad/internal/render"
	"Splonchpad/internal/server"
	"Splonchpad/internal/ui"
)

func main() {
	configPath := flag.String("config", "", "path to config.toml (default: user config dir)")
	desktop := flag.Bool("desktop", false, "open the desktop window instead of serving browsers")
	addr := flag.String("addr", "", "listen address, overrides the config file")
	discover := flag.Bool("discover", false, "list sketchpad hosts on the local network and exit")
	flag.Parse()

	if *discover {
		hosts, err := lannet.Browse(3 * time.Second)
		for _, h := range hosts {
			fmt.Println("http://" + h + "/")
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "splonchpad: %v\n", err)
			os.Exit(1)
		}
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "splonchpad: %v\n", err)
		os.Exit(2)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	log := logging.Setup(cfg.Logging)

	glyphs, err := render.LoadGlyphs(cfg.Canvas.FontPath)
	if err != nil {
		log.Error("load sticker font", "path", cfg.Canvas.FontPath, "err", err)
		os.Exit(1)
	}

	if *desktop {
		err = ui.RunApp(cfg, glyphs, logging.Component("desktop"))
	} else {
		err = runServer(cfg, *configPath, glyphs, log)
	}
	if err != nil {
		log.Error("exiting", "err", err)
		os.Exit(1)
	}
}

func runServer(cfg *config.Config, configPath string, glyphs *render.Glyphs, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(cfg, glyphs, logging.Component("server"))

	if configPath == "" {
		configPath = config.ConfigPath()
	}
	if err := config.Watch(ctx, configPath, log, func(c *config.Config) {
		logging.SetLevel(c.Logging.Level)
		srv.Reload(c)
	}); err != nil {
		log.Debug("config not watched", "path", configPath, "err", err)
	}

	port, err := lannet.ListenPort(cfg.Server.Addr)
	if err != nil {
		return err
	}
	if cfg.Server.MDNS {
		adv, err := lannet.Advertise(cfg.Server.InstanceName, port)
		if err != nil {
			log.Warn("mDNS advertisement unavailable", "err", err)
		} else {
			defer adv.Shutdown()
			log.Info("advertising", "service", lannet.ServiceType, "port", port)
		}
	}
	log.Info("share this link", "url", lannet.ShareLink(lannet.GetOutgoingIP(), port, ""))

	if err := srv.ListenAndServe(ctx, cfg.Server.Addr); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
