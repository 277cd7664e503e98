// Command server runs the Colocmatching REST API.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/simp-lee/colocmatching/internal/app"
	"github.com/simp-lee/colocmatching/internal/config"
)

func main() {
	defaultPath := "configs/config.yaml"
	if p := os.Getenv("APP_CONFIG"); p != "" {
		defaultPath = p
	}
	configPath := flag.String("config", defaultPath, "path to configuration file (env APP_CONFIG)")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, "colocmatching:", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	a, err := app.New(cfg)
	if err != nil {
		return fmt.Errorf("create app: %w", err)
	}
	return a.Run()
}
