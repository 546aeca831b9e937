package main

import "github.com/arkavo-org/iroh-go/cmd/iroh/cmd"

func main() {
	cmd.Execute()
}
