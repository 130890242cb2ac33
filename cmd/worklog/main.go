package main

import "github.com/warp/worklog-engine/cli"

func main() {
	cli.Execute()
}
