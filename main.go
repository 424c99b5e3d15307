package main

import "panopto-urls/cmd"

func main() {
	cmd.Execute()
}
