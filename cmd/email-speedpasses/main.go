package main

import "github.com/sqlsaturday/satops/internal/cli"

var version = "dev"

func main() {
	cmd := cli.NewEmailSpeedPassesCmd()
	cmd.Version = version
	cli.Execute(cmd)
}
