package main

import (
	"github.com/mchmarny/cloutcheck/pkg/cli"
)

func main() {
	cli.Execute()
}
