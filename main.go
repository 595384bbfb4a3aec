package main

import (
	"github.com/axellelanca/urlalias/cmd"
	_ "github.com/axellelanca/urlalias/cmd/cli"
	_ "github.com/axellelanca/urlalias/cmd/server"
)

func main() {
	cmd.Execute()
}
