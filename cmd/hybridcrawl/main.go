package main

import "github.com/rohmanhakim/hybridcrawl/internal/cli"

func main() {
	cli.Execute()
}
