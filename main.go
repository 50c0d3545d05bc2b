package main

import "github.com/Ethernal-Tech/icon-infrastructure/cli"

func main() {
	cli.Execute()
}
