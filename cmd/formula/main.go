// Command formula evaluates formula sets from the command line.
package main

func main() {
	Execute()
}
