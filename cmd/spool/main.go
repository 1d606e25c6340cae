// Command spool is the CLI entrypoint for the spool knowledge base engine.
package main

import "github.com/withakay/spool-go/pkg/cli"

func main() {
	cli.Execute()
}
