package main

import "rpy-localizer/internal/cli"

func main() {
	cli.Execute()
}
