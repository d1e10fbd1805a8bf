// Command claimledger runs claim ledger operations against a badger
// database or blob storage.
package main

import (
	"os"

	"github.com/datatrails/go-datatrails-common/logger"
)

func main() {
	logger.New("INFO")
	err := run(os.Args[1:], os.Stdout)
	logger.OnExit()
	if err != nil {
		os.Exit(1)
	}
}
