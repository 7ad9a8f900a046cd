// Command tsstruct extracts structural models from TypeScript sources.
package main

func main() {
	Execute()
}
