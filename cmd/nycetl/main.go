// Command nycetl loads the NYC open-data extracts (street tree censuses, air
// quality, heat vulnerability, temperature series) into a relational
// database through one schema-driven pipeline.
package main

func main() {
	Execute()
}
