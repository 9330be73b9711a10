package cmd

import (
	"github.com/assetforge/modelpreview/config"
	"github.com/assetforge/modelpreview/log"
	"github.com/urfave/cli"
)

var logger = log.New("modelpreview")

// Apply the configured log level; -v and -vv take precedence.
func setupLogging(ctx *cli.Context, cfg *config.Config) error {
	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	log.SetLevel(level)

	if ctx.GlobalBool("v") {
		log.SetLevel(log.Info)
	}

	if ctx.GlobalBool("vv") {
		log.SetLevel(log.Debug)
	}
	return nil
}
