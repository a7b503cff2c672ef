//go:build cli
// +build cli

package main

import (
	"posbridge.GO/cmd"
	"posbridge.GO/config"
)

func main() {
	config.LoadEnv()
	cmd.Execute()
}
