// Command runmatrix shows automation run history as an hourly status matrix.
package main

import (
	"github.com/huangsam/runmatrix/cmd"
	"github.com/huangsam/runmatrix/internal/contract"
)

func main() {
	if err := cmd.Execute(); err != nil {
		contract.LogFatal("runmatrix failed", err)
	}
}
