package main

import "forensdesk/cmd/forensdesk-cli/cmd"

func main() {
	cmd.Execute()
}
