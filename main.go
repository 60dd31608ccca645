package main

import "github.com/Rorical/RoriDecor/cmd"

func main() {
	cmd.Execute()
}
