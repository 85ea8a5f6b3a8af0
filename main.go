package main

import "github.com/valence-tools/lpdeployer/cmd"

func main() {
	cmd.Execute()
}
