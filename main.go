package main

import "github.com/sadopc/timetracer/internal/cli"

func main() {
	cli.Execute()
}
