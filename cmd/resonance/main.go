// Command resonance suggests background music for a video from its speech.
package main

import "github.com/justestif/resonance/internal/cli"

func main() {
	cli.Execute()
}
