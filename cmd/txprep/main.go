// txprep prepares Solana transactions: a cached recent blockhash plus a
// priority fee chosen by the persisted fee strategy.
package main

import (
	"fmt"
	"os"

	cli "gopkg.in/urfave/cli.v1"
)

var version = "dev"

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "txprep"
	app.Version = version
	app.Usage = "Solana transaction preparation: blockhash cache and priority fees"
	app.Flags = []cli.Flag{
		configFlag,
		debugFlag,
	}
	app.Commands = []cli.Command{
		{
			Name:   "blockhash",
			Usage:  "print a recent blockhash, served from the cache while it is fresh",
			Action: blockhashAction,
		},
		{
			Name:   "fee",
			Usage:  "resolve the priority fee for a sample transfer from the configured wallet",
			Action: feeAction,
		},
		{
			Name:  "settings",
			Usage: "write the persisted fee settings",
			Flags: []cli.Flag{
				optionFlag,
				customFeeFlag,
				multiplierFlag,
				maxCapFlag,
				capUnitFlag,
			},
			Action: settingsAction,
		},
		{
			Name:  "transfer",
			Usage: "prepare, sign and send a SOL transfer",
			Flags: []cli.Flag{
				toFlag,
				lamportsFlag,
				skipPreflightFlag,
				noWaitFlag,
			},
			Action: transferAction,
		},
		{
			Name:   "serve",
			Usage:  "keep the shared blockhash store warm and expose metrics",
			Action: serveAction,
		},
	}
	return app
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Fatal:", err)
		os.Exit(1)
	}
}
