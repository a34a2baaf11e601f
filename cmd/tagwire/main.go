package main

import "github.com/rawbytedev/tagwire/cmd/tagwire/cmd"

func main() {
	cmd.Execute()
}
