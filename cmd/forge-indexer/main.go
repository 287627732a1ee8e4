package main

import "github.com/forge-indexer/forge-indexer/internal/cli"

func main() {
	cli.Execute()
}
