// encryptkey encrypts an API key for safe storage in config.yaml.
//
// Usage:
//
//	export SITEASSIST_MASTER_KEY=$(openssl rand -hex 32)  # generate once, store securely
//	go run ./cmd/tools/encryptkey sk-xxxx                 # prints the enc:aes256:... string
//
// Paste the printed string as the apiKey value in config.yaml; the server
// decrypts it at startup using SITEASSIST_MASTER_KEY.
package main

import (
	"fmt"
	"os"

	"siteassist/internal/crypto"
)

func main() {
	if len(os.Args) < 2 || os.Args[1] == "" {
		fmt.Fprintln(os.Stderr, "Usage: encryptkey <plaintext-api-key>")
		fmt.Fprintln(os.Stderr, "       SITEASSIST_MASTER_KEY must be set (64 hex chars)")
		os.Exit(1)
	}

	key, err := crypto.MasterKeyFromEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	encrypted, err := crypto.Encrypt(key, os.Args[1])
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	fmt.Println(encrypted)
}
