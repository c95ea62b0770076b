package main

import "github.com/ayusman/takebook/cmd/takebook/commands"

func main() {
	commands.Execute()
}
