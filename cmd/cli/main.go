// Command cli is fdctl, the operator CLI for the funding-discovery core:
// trigger a manual session, list recent sessions, manage the blacklist and
// its cache, and replay dead-lettered events.
package main

import "fundingdiscovery/internal/cli"

func main() {
	cli.Execute()
}
