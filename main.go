package main

import "github.com/verdant-cli/verdant/cmd"

func main() {
	cmd.Execute()
}
