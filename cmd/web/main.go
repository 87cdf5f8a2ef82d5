package main

import "wagyu_backend/internal/app"

func main() {
	app.Run()
}
