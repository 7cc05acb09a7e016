// Large Sankey File Generator
//
// This tool generates a large sankey file for performance testing and profiling.
// It writes flows between layered energy nodes with quoted names, comments and
// exponent weights to stress-test the lexer, parser and formatter.
//
// Usage:
//
//	go run main.go > large.sankey
//	go run main.go 20000000 > large.sankey  # Specify target size in bytes
package main

import (
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	defaultTargetSize = 10 * 1024 * 1024 // 10MB
)

var (
	sources = []string{
		"Agricultural 'waste'", "Bio-conversion", "Liquid", "Losses", "Solid",
		"Gas", "Biofuel imports", "Biomass imports", "Coal imports", "Coal",
		"Coal reserves", "District heating", "Industry", "Heating and cooling - commercial",
		"Heating and cooling - homes", "Electricity grid", "Over generation / exports",
		"H2 conversion", "Road transport", "Agriculture", "Rail transport",
		"Lighting & appliances - commercial", "Lighting & appliances - homes",
		"Gas imports", "Ngas", "Gas reserves", "Thermal generation", "Geothermal",
		"H2", "Hydro", "International shipping", "Domestic aviation",
		"International aviation", "National navigation", "Marine algae", "Nuclear",
		"Oil imports", "Oil", "Oil reserves", "Other waste", "Pumped heat",
		"Solar PV", "Solar Thermal", "Solar", "Tidal", "UK land based bioenergy",
		"Wave", "Wind",
	}

	// names that need quoting when written unquoted would split the field
	awkward = []string{
		"Heat, waste", "Storage, pumped", "Exports, net", "Grid, regional",
	}

	comments = []string{
		"%% generated flow block",
		"%% values in TWh",
		"%% imports and reserves",
		"%% conversion losses",
	}
)

func main() {
	targetSize := defaultTargetSize
	if len(os.Args) > 1 {
		if size, err := strconv.Atoi(os.Args[1]); err == nil {
			targetSize = size
		}
	}

	writeHeader()

	bytesWritten := 0
	recordCount := 0

	for bytesWritten < targetSize {
		switch rand.Intn(10) {
		case 0, 1, 2, 3, 4: // 50% - Plain record
			output := generatePlainRecord()
			fmt.Print(output)
			bytesWritten += len(output)
			recordCount++

		case 5, 6: // 20% - Record with quoted names
			output := generateQuotedRecord()
			fmt.Print(output)
			bytesWritten += len(output)
			recordCount++

		case 7: // 10% - Record with an exponent weight and padding
			output := generateExponentRecord()
			fmt.Print(output)
			bytesWritten += len(output)
			recordCount++

		case 8: // 10% - Record with a trailing comment
			output := generateCommentedRecord()
			fmt.Print(output)
			bytesWritten += len(output)
			recordCount++

		case 9: // 10% - Comment line or blank line
			output := generateSeparator()
			fmt.Print(output)
			bytesWritten += len(output)
		}
	}

	fmt.Fprintf(os.Stderr, "\nGenerated %d bytes with %d records\n", bytesWritten, recordCount)
}

func writeHeader() {
	fmt.Println("%% Large Sankey File for Performance Testing")
	fmt.Println("%% Generated:", time.Now().Format("2006-01-02 15:04:05"))
	fmt.Println("sankey-beta")
	fmt.Println()
}

func generatePlainRecord() string {
	source, target := pickPair(sources)
	return fmt.Sprintf("%s,%s,%s\n", quote(source), quote(target), randWeight(0.1, 1000, 3))
}

func generateQuotedRecord() string {
	source := awkward[rand.Intn(len(awkward))]
	target := sources[rand.Intn(len(sources))]
	if rand.Intn(2) == 0 {
		source, target = target, source
	}
	return fmt.Sprintf("%s,%s,%s\n", quote(source), quote(target), randWeight(1, 500, 2))
}

func generateExponentRecord() string {
	source, target := pickPair(sources)
	weight := decimal.NewFromFloat(1 + rand.Float64()*8).Round(2)
	exponent := rand.Intn(4) - 1
	return fmt.Sprintf("%s , %s , %se%d\n", quote(source), quote(target), weight.String(), exponent)
}

func generateCommentedRecord() string {
	source, target := pickPair(sources)
	comment := comments[rand.Intn(len(comments))]
	return fmt.Sprintf("%s,%s,%s %s\n", quote(source), quote(target), randWeight(1, 100, 1), comment)
}

func generateSeparator() string {
	if rand.Intn(2) == 0 {
		return "\n"
	}
	return comments[rand.Intn(len(comments))] + "\n"
}

// Helper functions

func pickPair(names []string) (string, string) {
	source := names[rand.Intn(len(names))]
	target := names[rand.Intn(len(names))]
	for target == source {
		target = names[rand.Intn(len(names))]
	}
	return source, target
}

// quote wraps names that contain a comma or a quote character. Names with a
// single quote use double quotes.
func quote(name string) string {
	if !strings.ContainsAny(name, `,'"`) {
		return name
	}
	if strings.Contains(name, "'") {
		return `"` + name + `"`
	}
	return "'" + name + "'"
}

func randWeight(min, max float64, places int32) string {
	return decimal.NewFromFloat(min + rand.Float64()*(max-min)).StringFixed(places)
}
