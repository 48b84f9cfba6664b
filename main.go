package main

import "go.resproc.io/resproc/cmd"

func main() {
	cmd.Execute()
}
