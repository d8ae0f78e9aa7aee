package main

import "github.com/approxmatch/hostctl/cmd/matchctl/cmd"

func main() {
	cmd.Execute()
}
