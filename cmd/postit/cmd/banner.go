package cmd

import (
	"fmt"
)

const banner = `
  _____          _     _____ _
 |  __ \        | |   |_   _| |
 | |__) |__  ___| |_    | | | |_
 |  ___/ _ \/ __| __|   | | | __|
 | |  | (_) \__ \ |_   _| |_| |_
 |_|   \___/|___/\__| |_____|\__|

`

func printBanner() {
	fmt.Printf("\x1b[34m%s\x1b[0m", banner)
	fmt.Printf("\x1b[32m  Moderated Micro-Posting Service - Version %s\x1b[0m\n\n", Version)
}
