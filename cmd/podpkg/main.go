package main

import "github.com/podpkg/podpkg/pkg/cmd"

func main() {
	cmd.Execute()
}
