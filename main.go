package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/flixyossef440-boop/qr-pulse-pass/internal/config"
	"github.com/flixyossef440-boop/qr-pulse-pass/internal/server"
	"github.com/flixyossef440-boop/qr-pulse-pass/internal/token"
	"github.com/flixyossef440-boop/qr-pulse-pass/internal/version"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "config.yaml", "path to the configuration file")
	flag.StringVar(&configPath, "c", "config.yaml", "path to the configuration file (shorthand)")
	mintToken := flag.Bool("mint-token", false, "mint a gate token, print it, and exit")
	showVersion := flag.Bool("version", false, "print the version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("pulsepass " + version.Full())
		return
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if *mintToken {
		tok := token.Mint(cfg.Gate.TokenSecret, time.Now())
		fmt.Println(tok)
		if cfg.Server.ExternalURL != "" {
			fmt.Printf("%s?token=%s\n", cfg.Server.ExternalURL, tok)
		}
		return
	}

	srv, err := server.New(cfg)
	if err != nil {
		log.Fatalf("failed to initialize server: %v", err)
	}

	if err := srv.Start(); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
