package main

import (
	"github.com/zhulik/tps/internal/cli"
)

func main() {
	cli.Run()
}
