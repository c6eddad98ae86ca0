//go:build cli
// +build cli

package main

import (
	_ "dappstore.GO/custom"

	"dappstore.GO/cmd"
	"dappstore.GO/config"
)

func main() {
	config.LoadEnv()
	cmd.Execute()
}
