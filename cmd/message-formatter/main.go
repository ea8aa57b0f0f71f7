package main

import (
	"github.com/haytac/message-formatter/internal/cli"
	"github.com/haytac/message-formatter/internal/logging"
)

func main() {
	// Basic logger until RootCmd.PersistentPreRunE applies the configured one.
	logging.Setup(logging.Config{Level: "info", Console: true, TimeFormat: "15:04:05"})
	cli.Execute()
}
