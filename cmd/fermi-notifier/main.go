package main

import "github.com/PabloGalante/fermi-notifier/internal/cli"

func main() {
	cli.Execute()
}
