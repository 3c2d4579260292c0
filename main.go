package main

import "github.com/nextlevelbuilder/hiveagent/cmd"

func main() {
	cmd.Execute()
}
