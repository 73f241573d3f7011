// Package main is the entry point for the component vulnerability monitor.
package main

import "github.com/ortelius/component-monitor/cmd"

func main() {
	cmd.Execute()
}
