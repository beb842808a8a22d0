package main

import "github.com/KaramelBytes/hostboard/cmd"

func main() {
	cmd.Execute()
}
