package main

import "github.com/sqlsaturday/satops/internal/cli"

var version = "dev"

func main() {
	cmd := cli.NewPrintScheduleCmd()
	cmd.Version = version
	cli.Execute(cmd)
}
