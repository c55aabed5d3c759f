package main

import "github.com/lu-zhengda/mailroles/internal/cli"

func main() {
	cli.Execute()
}
