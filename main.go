package main

import (
	"github.com/neezs/neezspilot/cmd"
)

func main() {
	cmd.Execute()
}
