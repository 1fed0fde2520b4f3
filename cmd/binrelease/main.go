package main

import "github.com/oshokin/binrelease/cmd/binrelease/cmd"

func main() {
	cmd.Execute()
}
