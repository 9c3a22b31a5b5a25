package main

import "github.com/dbsmedya/intersync/cmd/intersync/cmd"

func main() {
	cmd.Execute()
}
