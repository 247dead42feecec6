package main

import "github.com/Alijeyrad/helpdesk_backend/cmd"

func main() {
	cmd.Execute()
}
