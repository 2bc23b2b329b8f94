// Command sgtree loads or generates integer sequences, inserts them
// into scapegoat trees and reports the resulting shape and rebuild
// work.
package main

import "github.com/SaiYS/sail/cmd/sgtree/cmd"

func main() {
	cmd.Execute()
}
