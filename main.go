// SPDX-License-Identifier: MIT
package main

import "github.com/skaphos/gitopen/cmd/gitopen"

var execute = gitopen.Execute

func main() {
	execute()
}
