package main

import "github.com/JakeFAU/binary-blog/cmd"

func main() {
	cmd.Execute()
}
