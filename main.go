package main

import camelleaked "github.com/camel-leaked/camel-leaked/cmd/camelleaked"

func main() {
	camelleaked.Execute()
}
