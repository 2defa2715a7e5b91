package main

import "github.com/loadstone/loadstone/cmd"

func main() {
	cmd.Execute()
}
