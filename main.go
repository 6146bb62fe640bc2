package main

import "github.com/modernshop/storefront/cmd"

func main() {
	cmd.Start()
}
