package main

import (
	"fmt"
	"os"
	"path/filepath"

	"rferreira/meubolso/cmd/extract"
	"rferreira/meubolso/cmd/root"
	"rferreira/meubolso/cmd/serve"

	"github.com/joho/godotenv"
)

func init() {
	// Load environment variables before anything reads configuration.
	loadEnvSilently()

	root.Init()

	root.Cmd.AddCommand(serve.Cmd)
	root.Cmd.AddCommand(extract.Cmd)
}

// loadEnvSilently loads environment variables without logging anything
func loadEnvSilently() {
	envFile := ".env"
	if _, err := os.Stat(envFile); os.IsNotExist(err) {
		envFile = filepath.Join("..", ".env")
		if _, err := os.Stat(envFile); os.IsNotExist(err) {
			return
		}
	}
	_ = godotenv.Load(envFile)
}

func main() {
	if err := root.Cmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
