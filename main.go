package main

import "github.com/Kipparis/cooking-notebook/cmd/cooking"

func main() {
	cooking.Execute()
}
