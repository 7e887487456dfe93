package main

import "github.com/KaramelBytes/synthtab-cli/cmd"

func main() {
	cmd.Execute()
}
