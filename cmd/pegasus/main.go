/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/ssargent/pegasus/cmd/pegasus/cmd"

func main() {
	cmd.Execute()
}
