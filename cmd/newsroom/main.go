// Command newsroom researches a topic with a Supervisor, a Researcher and a
// Writer and prints the resulting Markdown report.
package main

func main() {
	Execute()
}
