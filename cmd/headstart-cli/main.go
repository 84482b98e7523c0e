package main

import "github.com/nfrund/headstart/cmd/headstart-cli/cmd"

func main() {
	cmd.Execute()
}
