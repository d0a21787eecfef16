package main

import "github.com/andresv-qr/lumqr/cmd/lumqr/cmd"

func main() {
	cmd.Execute()
}
