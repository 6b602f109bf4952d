package main

import "github.com/naka-gawa/github-liveness/cmd"

func main() {
	cmd.Execute()
}
