package main

import (
	"fmt"
	"os"

	"github.com/worklens/git-worklens/cmd"
)

var version = "dev"

func main() {
	if len(os.Args) < 2 {
		cmd.RunQuery(os.Args[1:])
		return
	}

	switch os.Args[1] {
	case "analyze":
		cmd.RunAnalyze(os.Args[2:])
	case "--version":
		fmt.Println("git-worklens", version)
	default:
		cmd.RunQuery(os.Args[1:])
	}
}
