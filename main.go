package main

import "github.com/KaramelBytes/sheetdash-cli/cmd"

func main() {
	cmd.Execute()
}
