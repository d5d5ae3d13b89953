// Package main is the entry point for vidplay.
package main

import (
	"github.com/samber/lo"
	"github.com/vidplay/vidplay/cmd"
	"github.com/vidplay/vidplay/config"
	"github.com/vidplay/vidplay/internal/cache"
	"github.com/vidplay/vidplay/log"
)

func main() {
	lo.Must0(config.Setup())
	lo.Must0(log.Setup())

	cache.CollectGarbage()

	cmd.Execute()
}
