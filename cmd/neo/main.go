// Command neo explores near-Earth objects and their close approaches to Earth.
package main

import "github.com/mesh-intelligence/neo/internal/cli"

func main() {
	cli.Execute()
}
