package main

import "task-lifecycle.com/task-lifecycle/cmd"

func main() {
	cmd.Execute()
}
