// Command tmemreplay replays a graphics command stream against the texture
// cache model and reports which texture uploads could be skipped.
package main

import "github.com/sarchlab/tmemsim/tmemreplay/cmd"

func main() {
	cmd.Execute()
}
