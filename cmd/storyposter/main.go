package main

import (
	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/storyposter/cmd/storyposter/commands"
	"git.home.luguber.info/inful/storyposter/internal/version"
)

func main() {
	var cli commands.CLI
	ctx := kong.Parse(&cli,
		kong.Name("storyposter"),
		kong.Description("Posts sequential images from a directory to a Facebook page on a daily schedule."),
		kong.UsageOnError(),
		kong.Vars{"version": version.Version},
	)

	err := ctx.Run(&commands.Global{}, &cli)
	ctx.FatalIfErrorf(err)
}
