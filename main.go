package main

import "github.com/KaramelBytes/spendboard/cmd"

func main() {
	cmd.Execute()
}
