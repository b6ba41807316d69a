package main

import "github.com/peekknuf/metastats/cmd"

func main() {
	cmd.Execute()
}
