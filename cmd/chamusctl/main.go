package main

import "github.com/GeovanniVera/chamus/cmd/chamusctl/cmd"

func main() {
	cmd.Execute()
}
