package main

import "github.com/architeacher/items/internal/runtime"

func main() {
	runtime.New().Run()
}
