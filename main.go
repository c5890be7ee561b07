package main

import "github.com/lockmirror/lockmirror/cmd"

func main() {
	cmd.Execute()
}
