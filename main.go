/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>

*/
package main

import "github.com/CherepinRO/my-organizer-db/cmd"

func main() {
	cmd.Execute()
}
