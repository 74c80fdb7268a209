package main

import "layout-lens/cmd"

func main() {
	cmd.Execute()
}
