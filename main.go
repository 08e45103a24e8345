package main

import "github.com/mechdex/mechdex/cmd"

func main() {
	cmd.Execute()
}
