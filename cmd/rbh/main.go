// cmd/rbh/main.go
package main

import (
	"rbh/internal/app"
	"rbh/internal/appshell"
)

func main() { appshell.Main(app.RunContext) }
