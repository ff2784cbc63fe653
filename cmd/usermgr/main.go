// Operator CLI for go-pugsite: manage users and inspect form submissions
package main

import (
	"os"

	"github.com/go-while/go-pugsite/internal/config"
)

var appVersion = "-unset-"

func main() {
	config.AppVersion = appVersion
	if err := NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
