package main

import "github.com/jonandersen/backspread/cmd"

func main() {
	cmd.Execute()
}
