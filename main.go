package main

import "github.com/naka-gawa/github-projects/cmd"

func main() {
	cmd.Execute()
}
