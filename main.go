package main

import "github.com/Digital-Shane/media-resolver/internal/cmd"

func main() {
	cmd.Execute()
}
