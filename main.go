package main

import "github.com/kozaktomas/faceval/cmd"

func main() {
	cmd.Execute()
}
