package main

import "github.com/gabriellmelo/analise-exploratoria-tcc/cmd"

func main() {
	cmd.Execute()
}
