package main

import (
	"github.com/urfave/cli/v2"

	"github.com/atlekbai/strictstates"
	"github.com/atlekbai/strictstates/internal/logging"
)

var fileFlag = &cli.StringSliceFlag{
	Name:    "file",
	Aliases: []string{"f"},
	EnvVars: []string{"STRICTSTATES_FILE"},
	Usage:   "HCL declaration file or directory; may be repeated",
}

var logJSONFlag = &cli.BoolFlag{
	Name:  "log-json",
	Value: false,
	Usage: "log in JSON format",
}

var logDebugFlag = &cli.BoolFlag{
	Name:  "log-debug",
	Value: false,
	Usage: "log debug messages",
}

var logUIDFlag = &cli.BoolFlag{
	Name:  "log-uid",
	Value: false,
	Usage: "generate a uuid and add to all log messages",
}

var logServiceFlag = &cli.StringFlag{
	Name:  "log-service",
	Value: "strictstates",
	Usage: "add 'service' tag to logs",
}

var namespaceFlag = &cli.StringFlag{
	Name:     "namespace",
	Aliases:  []string{"n"},
	Required: true,
	Usage:    "namespace to query",
}

var machineFlag = &cli.StringFlag{
	Name:    "machine",
	Aliases: []string{"m"},
	Value:   strictstates.DefaultMachine,
	Usage:   "machine to query",
}

var formatFlag = &cli.StringFlag{
	Name:  "format",
	Value: "mermaid",
	Usage: "graph format: 'mermaid' or 'dot'",
}

var directionFlag = &cli.StringFlag{
	Name:  "direction",
	Usage: "mermaid graph direction: TB, BT, LR or RL",
}

var globalFlags = []cli.Flag{
	fileFlag,
	logJSONFlag,
	logDebugFlag,
	logUIDFlag,
	logServiceFlag,
}

func logOptions(cCtx *cli.Context) logging.Options {
	return logging.Options{
		Debug:   cCtx.Bool(logDebugFlag.Name),
		JSON:    cCtx.Bool(logJSONFlag.Name),
		UID:     cCtx.Bool(logUIDFlag.Name),
		Service: cCtx.String(logServiceFlag.Name),
		Version: version,
	}
}
