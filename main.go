package main

import "github.com/chadmayfield/wxreport/cmd"

func main() {
	cmd.Execute()
}
