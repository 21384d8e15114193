package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Alexislovesarchitecture/contact-bubbles/infrastructure/config"
	"github.com/Alexislovesarchitecture/contact-bubbles/interfaces/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := cli.Serve(ctx, cfg); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
