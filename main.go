package main

import "github.com/user/deepfocus-cli/cmd"

func main() {
	cmd.Execute()
}
