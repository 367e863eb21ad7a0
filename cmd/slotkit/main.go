// Package main is the entry point for the slotkit command line tool.
package main

func main() {
	Execute()
}
