package main

import "github.com/notargets/stablefluids/cmd"

func main() {
	cmd.Execute()
}
