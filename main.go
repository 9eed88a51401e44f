package main

import "promptchart/cmd"

func main() {
	cmd.Execute()
}
