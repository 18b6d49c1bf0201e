package main

import (
	"fmt"
	"os"

	"github.com/dtnitsch/chatty/internal/collect"
	"github.com/urfave/cli/v2"
)

var version = "dev"

func newApp() *cli.App {
	return &cli.App{
		Name:      "chatty",
		Usage:     "aggregate per-site question records into a chattiness report",
		UsageText: "chatty [options] <workers>",
		ArgsUsage: "<workers>",
		Version:   version,
		Description: "Reads one .jsonl file per site from --data-dir. Each line is a record\n" +
			"{\"texts\": [...], \"tags\": [...]}. Counts questions and words per site and per tag,\n" +
			"then ranks the 10 chattiest sites and tags by words per question.\n" +
			"The single argument is the worker pool size.",
		Flags:  collect.Flags(),
		Action: collect.CollectAction,
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
}
