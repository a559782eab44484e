// Command client drives one country's worth of competitor data at the
// aggregator, mirroring the reference load-testing client: connect,
// send the roster in paced batches, print the current ranking, then
// print the final results.
package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/okian/podium/internal/client"
)

const serverAddr = "localhost:12345"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) != 3 {
		fmt.Fprintf(os.Stderr, "usage: %s <country_id> <delta_x> <competitors_file>\n", progName())
		return 1
	}

	countryID, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "client error: invalid country_id %q: %v\n", args[0], err)
		return 1
	}
	deltaX, err := strconv.Atoi(args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "client error: invalid delta_x %q: %v\n", args[1], err)
		return 1
	}
	competitorsFile := args[2]

	fmt.Printf("Starting client for country %d with delta_x=%d\n", countryID, deltaX)

	d, err := client.Dial(serverAddr, countryID, time.Duration(deltaX)*time.Second)
	if err != nil {
		fmt.Fprintf(os.Stderr, "client error: %v\n", err)
		return 1
	}
	defer d.Close()

	pairs, err := client.LoadCompetitors(competitorsFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "client %d error: %v\n", countryID, err)
		return 1
	}

	if err := d.SendCompetitorData(pairs); err != nil {
		fmt.Fprintf(os.Stderr, "client %d error: %v\n", countryID, err)
		return 1
	}

	ranking, err := d.RequestRanking()
	if err != nil {
		fmt.Fprintf(os.Stderr, "client %d error: %v\n", countryID, err)
		return 1
	}
	fmt.Printf("Current ranking:\n%s", ranking)

	final, err := d.RequestFinalResults()
	if err != nil {
		fmt.Fprintf(os.Stderr, "client %d error: %v\n", countryID, err)
		return 1
	}
	fmt.Printf("Final results for country %d:\n%s\n", countryID, final)

	return 0
}

func progName() string {
	if len(os.Args) == 0 {
		return "client"
	}
	return os.Args[0]
}
