package main

import "github.com/jmcleod/postit/cmd/postit/cmd"

func main() {
	cmd.Execute()
}
