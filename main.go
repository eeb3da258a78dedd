package main

import "rotabot/internal/app"

func main() {
	app.Main()
}
