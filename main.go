package main

import "github.com/entropyworks/loghose/cmd"

func main() {
	cmd.Execute()
}
