package main

import "github.com/jishaal/old.jishaal.com/cmd"

func main() {
	cmd.Execute()
}
