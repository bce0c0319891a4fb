package main

import "github.com/Daskott/vitals/cmd"

func main() {
	cmd.Execute()
}
