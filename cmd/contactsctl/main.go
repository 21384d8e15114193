package main

import (
	"os"

	"github.com/Alexislovesarchitecture/contact-bubbles/interfaces/cli"
)

func main() {
	os.Exit(cli.Execute())
}
