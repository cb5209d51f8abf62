package main

import "github.com/vibast-solutions/ms-go-authorizenet/cmd"

func main() {
	cmd.Execute()
}
