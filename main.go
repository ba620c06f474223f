package main

import "github.com/Alijeyrad/wscontext/cmd"

func main() {
	cmd.Execute()
}
