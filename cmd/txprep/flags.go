// cmd/txprep/flags.go
package main

import (
	cli "gopkg.in/urfave/cli.v1"
)

var (
	configFlag = cli.StringFlag{
		Name:   "config",
		Value:  "configs/config.json",
		Usage:  "path to the configuration file",
		EnvVar: "TXPREP_CONFIG",
	}
	debugFlag = cli.BoolFlag{
		Name:   "debug",
		Usage:  "enable debug logging",
		EnvVar: "TXPREP_DEBUG",
	}

	// settings
	optionFlag = cli.StringFlag{
		Name:  "option",
		Usage: "fee strategy (custom|multiple|dynamic|default)",
	}
	customFeeFlag = cli.Float64Flag{
		Name:  "custom-fee",
		Usage: "fixed priority fee for the custom strategy, micro-lamports per compute unit",
	}
	multiplierFlag = cli.Float64Flag{
		Name:  "multiplier",
		Value: 1,
		Usage: "estimate multiplier for the multiple strategy",
	}
	maxCapFlag = cli.Float64Flag{
		Name:  "max-cap",
		Usage: "upper bound of the total priority fee, 0 disables the cap",
	}
	capUnitFlag = cli.StringFlag{
		Name:  "cap-unit",
		Value: "SOL",
		Usage: "unit of --max-cap (SOL|lamports)",
	}

	// transfer
	toFlag = cli.StringFlag{
		Name:  "to",
		Usage: "recipient address",
	}
	lamportsFlag = cli.Uint64Flag{
		Name:  "lamports",
		Usage: "amount to transfer",
	}
	skipPreflightFlag = cli.BoolFlag{
		Name:  "skip-preflight",
		Usage: "send without preflight simulation",
	}
	noWaitFlag = cli.BoolFlag{
		Name:  "no-wait",
		Usage: "do not wait for confirmation",
	}
)
