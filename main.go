package main

import "github.com/monosms/sms-agent/cmd"

func main() {
	cmd.Execute()
}
