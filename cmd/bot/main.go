package main

import (
	"strings"

	"github.com/alecthomas/kong"
	"github.com/iamasit07/connect4-bot/internal/domain"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version kong.VersionFlag `short:"v" help:"Show version"`
	Env     string           `default:".env" help:"Path to an optional .env file"`
	Serve   ServeCmd         `cmd:"" help:"Run the Discord bot and the HTTP/WebSocket server"`
	Local   LocalCmd         `cmd:"" help:"Play a hot-seat game in this terminal"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("bot"),
		kong.Description("Reaction-driven board game bot"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
			"games":   strings.Join(domain.DefaultRegistry().Names(), ", "),
		},
	)
	err := ctx.Run(&cli)
	ctx.FatalIfErrorf(err)
}
