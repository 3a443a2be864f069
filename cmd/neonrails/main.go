package main

import "github.com/andrescamacho/neonrails-go/internal/adapters/cli"

func main() {
	cli.Execute()
}
