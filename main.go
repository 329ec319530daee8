package main

import "github.com/KaramelBytes/basketloom/cmd"

func main() {
	cmd.Execute()
}
