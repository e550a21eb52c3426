package main

import "github.com/agentic-research/notional/cmd"

func main() {
	cmd.Execute()
}
