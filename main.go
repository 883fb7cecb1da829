package main

import "github.com/ValentinKolb/moniker/cmd"

func main() {
	cmd.Execute()
}
