package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/ruteri/connection-relay/api/relayhandler"
	"github.com/ruteri/connection-relay/common"
	"github.com/ruteri/connection-relay/cryptoutils"
	"github.com/ruteri/connection-relay/interfaces"
	"github.com/urfave/cli/v2"
)

var flagServer = &cli.StringFlag{
	Name:  "server",
	Value: "http://127.0.0.1:8080",
	Usage: "relay server address",
}
var flagUser = &cli.StringFlag{
	Name:     "user",
	Required: true,
	Usage:    "local user id to request the config for",
}
var flagCipher = &cli.StringFlag{
	Name:  "cipher",
	Value: cryptoutils.CipherJWE,
	Usage: "ciphertext format: 'jwe' or 'ecies'",
}
var flagPublicKey = &cli.StringFlag{
	Name:     "public-key",
	Required: true,
	Usage:    "recipient public key (PEM, JWK or base64url), or @file",
}
var flagPrivateKey = &cli.StringFlag{
	Name:     "private-key",
	Required: true,
	Usage:    "private key (PEM or JWK), or @file",
}
var flagValue = &cli.StringFlag{
	Name:     "value",
	Required: true,
	Usage:    "plaintext to seal",
}
var flagCiphertext = &cli.StringFlag{
	Name:     "ciphertext",
	Required: true,
	Usage:    "ciphertext to open",
}
var flagTimeout = &cli.DurationFlag{
	Name:  "timeout",
	Value: 30 * time.Second,
	Usage: "request timeout",
}

// readMaterial returns v, or the trimmed contents of the file when v is "@path".
func readMaterial(v string) (string, error) {
	path, isFile := strings.CutPrefix(v, "@")
	if !isFile {
		return v, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func main() {
	app := &cli.App{
		Name:    "relayctl",
		Usage:   "Key and envelope tooling for the connection relay",
		Version: common.Version,
		Commands: []*cli.Command{
			{
				Name:  "keygen",
				Usage: "Generate a P-256 key pair",
				Action: func(cCtx *cli.Context) error {
					key, err := cryptoutils.GenerateKey()
					if err != nil {
						return err
					}
					privatePEM, err := cryptoutils.MarshalPrivateKeyPEM(key)
					if err != nil {
						return err
					}
					publicPEM, err := cryptoutils.MarshalPublicKeyPEM(&key.PublicKey)
					if err != nil {
						return err
					}
					publicJWK, err := cryptoutils.MarshalPublicKeyJWK(&key.PublicKey)
					if err != nil {
						return err
					}

					fmt.Print(string(privatePEM))
					fmt.Print(string(publicPEM))
					fmt.Println(publicJWK)
					return nil
				},
			},
			{
				Name:  "get-config",
				Usage: "Request a client config with a fresh session key and print it decrypted",
				Flags: []cli.Flag{flagServer, flagUser, flagCipher, flagTimeout},
				Action: func(cCtx *cli.Context) error {
					cipher, err := cryptoutils.CipherByName(cCtx.String(flagCipher.Name))
					if err != nil {
						return err
					}
					userID, err := interfaces.NewLocalUserID(cCtx.String(flagUser.Name))
					if err != nil {
						return err
					}

					sessionKey, err := cryptoutils.GenerateKey()
					if err != nil {
						return err
					}
					sessionJWK, err := cryptoutils.MarshalPublicKeyJWK(&sessionKey.PublicKey)
					if err != nil {
						return err
					}

					ctx, cancel := context.WithTimeout(context.Background(), cCtx.Duration(flagTimeout.Name))
					defer cancel()

					client := &relayhandler.Client{}
					envelope, err := client.ClientConfig(ctx, cCtx.String(flagServer.Name), userID, sessionJWK)
					if err != nil {
						return err
					}

					plaintext, err := cipher.Decrypt(sessionKey, envelope.Encrypted)
					if err != nil {
						return fmt.Errorf("could not open client config: %w", err)
					}

					var config json.RawMessage = plaintext
					formatted, err := json.MarshalIndent(config, "", "  ")
					if err != nil {
						return errors.New("client config is not valid JSON")
					}
					fmt.Println(string(formatted))
					return nil
				},
			},
			{
				Name:  "seal",
				Usage: "Encrypt a value for a public key, the way the platform seals connection secrets",
				Flags: []cli.Flag{flagPublicKey, flagValue, flagCipher},
				Action: func(cCtx *cli.Context) error {
					cipher, err := cryptoutils.CipherByName(cCtx.String(flagCipher.Name))
					if err != nil {
						return err
					}
					material, err := readMaterial(cCtx.String(flagPublicKey.Name))
					if err != nil {
						return err
					}
					publicKey, err := cipher.ParsePublicKey(material)
					if err != nil {
						return err
					}
					value, err := readMaterial(cCtx.String(flagValue.Name))
					if err != nil {
						return err
					}

					sealed, err := cipher.Encrypt(publicKey, []byte(value))
					if err != nil {
						return err
					}
					fmt.Println(sealed)
					return nil
				},
			},
			{
				Name:  "open",
				Usage: "Decrypt a ciphertext with a private key",
				Flags: []cli.Flag{flagPrivateKey, flagCiphertext, flagCipher},
				Action: func(cCtx *cli.Context) error {
					cipher, err := cryptoutils.CipherByName(cCtx.String(flagCipher.Name))
					if err != nil {
						return err
					}
					material, err := readMaterial(cCtx.String(flagPrivateKey.Name))
					if err != nil {
						return err
					}
					privateKey, err := cipher.ParsePrivateKey(material)
					if err != nil {
						return err
					}

					plaintext, err := cipher.Decrypt(privateKey, cCtx.String(flagCiphertext.Name))
					if err != nil {
						return err
					}
					fmt.Println(string(plaintext))
					return nil
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
