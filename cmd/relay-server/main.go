package main

import (
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/ruteri/connection-relay/api/relayhandler"
	"github.com/ruteri/connection-relay/cmd/flags"
	"github.com/ruteri/connection-relay/common"
	"github.com/ruteri/connection-relay/cryptoutils"
	"github.com/ruteri/connection-relay/httpserver"
	"github.com/ruteri/connection-relay/relay"
	"github.com/urfave/cli/v2"
)

func main() {
	// A missing .env is fine; flags and the environment still apply.
	_ = godotenv.Load()

	app := &cli.App{
		Name:    "relay-server",
		Usage:   "Serve sealed connection configs to browser sessions",
		Version: common.Version,
		Flags:   append(append([]cli.Flag{}, flags.RelayFlags...), flags.CommonFlags...),
		Action: func(cCtx *cli.Context) error {
			logger := flags.SetupLogger(cCtx)

			privateKey, err := flags.RelayPrivateKey(cCtx)
			if err != nil {
				logger.Error("Failed to load relay private key", "err", err)
				return err
			}

			cipher, err := cryptoutils.CipherByName(cCtx.String(flags.CipherFlag.Name))
			if err != nil {
				logger.Error("Invalid cipher", "err", err)
				return err
			}

			r, err := relay.New(relay.Config{
				BaseURL:    cCtx.String(flags.PlatformURLFlag.Name),
				APIToken:   cCtx.String(flags.PlatformTokenFlag.Name),
				PrivateKey: privateKey,
				HTTPClient: &http.Client{Timeout: cCtx.Duration(flags.PlatformTimeoutFlag.Name)},
				Cipher:     cipher,
				Log:        logger,
			})
			if err != nil {
				logger.Error("Failed to create relay", "err", err)
				return err
			}

			handler := relayhandler.NewHandler(r, logger)
			server, err := httpserver.New(flags.ConfigureServer(cCtx, logger), handler)
			if err != nil {
				logger.Error("Failed to create server", "err", err)
				return err
			}

			logger.Info("Starting server",
				"platform", cCtx.String(flags.PlatformURLFlag.Name),
				"cipher", cCtx.String(flags.CipherFlag.Name))
			server.RunInBackground()

			exit := make(chan os.Signal, 1)
			signal.Notify(exit, os.Interrupt, syscall.SIGTERM)
			<-exit
			logger.Info("Shutdown signal received")

			server.Shutdown()
			logger.Info("Server shutdown complete")
			return nil
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
