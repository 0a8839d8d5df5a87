package main

import "wagecore/internal/app/server"

func main() {
	server.Run()
}
