package main

import "github.com/bookclub/catalog/cmd"

func main() {
	cmd.Execute()
}
