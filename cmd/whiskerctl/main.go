package main

import "github.com/example/dailywhisker/internal/cli"

func main() {
	cli.Execute()
}
