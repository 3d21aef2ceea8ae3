package main

import "github.com/finitevolume/ibflow/cmd"

func main() {
	cmd.Execute()
}
