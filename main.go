package main

import "github.com/schemato/schemato/cmd"

func main() {
	cmd.Execute()
}
