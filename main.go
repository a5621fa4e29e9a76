package main

import "invest-tracker/cmd"

func main() {
	cmd.Execute()
}
