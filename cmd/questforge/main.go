package main

import "questforge/internal/cli"

func main() {
	cli.Execute()
}
