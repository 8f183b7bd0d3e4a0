// This program provides command line access to a ledger node.
package main

import "github.com/ardanlabs/ledger/app/tooling/ledger/cmd"

func main() {
	cmd.Execute()
}
