package main

import "github.com/erpcore/erp-api/cmd"

func main() {
	cmd.Execute()
}
