package main

import "github.com/mouse-blink/blockscan/cmd"

func main() {
	cmd.Execute()
}
