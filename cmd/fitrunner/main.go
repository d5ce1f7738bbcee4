package main

import "github.com/fitlab-dev/fitrunner/pkg/cli"

func main() {
	cli.Execute()
}
