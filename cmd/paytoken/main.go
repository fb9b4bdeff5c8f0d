package main

import (
	"os"

	"github.com/paymentdata/client-go/cmd/paytoken/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
