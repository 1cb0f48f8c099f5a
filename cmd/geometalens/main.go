// cmd/geometalens/main.go
package main

import (
	"github.com/bstardust/geometalens/internal/logger"
	"github.com/bstardust/geometalens/pkg/cli"
)

func main() {
	// Initialize logger
	logger.Init()

	// Execute CLI
	cli.Execute()
}
