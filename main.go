package main

import "github.com/yhkl-dev/rainplayer/cmd"

func main() {
	cmd.Execute()
}
