package main

import "github.com/banshee-data/microlens/internal/cli"

func main() {
	cli.Execute()
}
