package main

import (
	"os"

	"github.com/cccteam/fxadmin/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
