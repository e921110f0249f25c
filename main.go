package main

import "github.com/mouse-blink/clientguard/cmd"

func main() {
	cmd.Execute()
}
