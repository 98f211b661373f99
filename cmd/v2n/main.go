package main

import "media-notes/cmd/v2n/cmd"

func main() {
	cmd.Execute()
}
