package main

import "github.com/KaramelBytes/dqmon-cli/cmd"

func main() {
	cmd.Execute()
}
