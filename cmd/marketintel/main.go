package main

import (
	"marketintel/cmd/cli"
	"marketintel/internal/logger"
)

func main() {
	logger.Init()
	cli.Execute()
}
