package main

import "video-translate-service/app"

func main() {
	app.Execute()
}
