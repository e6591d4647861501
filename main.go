package main

import "github.com/papapumpkin/quasar-thermo/cmd"

func main() {
	cmd.Execute()
}
