package main

import "github.com/itsmostafa/gomacro/cmd"

func main() {
	cmd.Execute()
}
