package main

import (
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	mm "github.com/Adarsh-Kmt/vmswap/memory_manager"
	"github.com/Adarsh-Kmt/vmswap/server"
)

func main() {

	configPath := flag.String("config", "", "path to a JSON config file, defaults are used when empty")
	addr := flag.String("addr", ":8080", "address the kernel server listens on")
	flag.Parse()

	config := mm.DefaultConfig()

	if *configPath != "" {

		var err error
		if config, err = mm.LoadConfig(*configPath); err != nil {
			slog.Error("Failed to load config", "error", err.Error())
			os.Exit(1)
		}
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: config.ParseLogLevel()})))

	kernel, err := mm.NewKernel(config)

	if err != nil {
		slog.Error("Failed to initialize kernel", "error", err.Error())
		os.Exit(1)
	}

	srv, err := server.NewServer(*addr, kernel)

	if err != nil {
		slog.Error("Failed to start server", "error", err.Error())
		kernel.Close()
		os.Exit(1)
	}

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-signals
		srv.Shutdown()
	}()

	srv.Run()
}
