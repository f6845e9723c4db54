// Command dbinfo prints the TLS, concern and read preference settings a
// MongoDB connection string resolves to. With -ping it also verifies the
// cluster is reachable.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/joho/godotenv"

	"mflix-backend/internal/database"
	"mflix-backend/internal/logging"
)

func main() {
	_ = godotenv.Load()

	uri := flag.String("uri", os.Getenv("MONGODB_URI"), "MongoDB connection string")
	ping := flag.Bool("ping", false, "connect and ping the cluster")
	timeout := flag.Duration("timeout", 10*time.Second, "ping timeout")
	flag.Parse()

	if *uri == "" {
		fmt.Fprintln(os.Stderr, "dbinfo: -uri or MONGODB_URI is required")
		os.Exit(2)
	}

	settings, err := database.DescribeSettings(*uri)
	if err != nil {
		fmt.Fprintf(os.Stderr, "dbinfo: %v\n", err)
		os.Exit(1)
	}
	printSettings(os.Stdout, settings)

	if *ping {
		ctx, cancel := context.WithTimeout(context.Background(), *timeout)
		defer cancel()
		db, err := database.Connect(ctx, *uri, "admin", logging.Nop())
		if err != nil {
			fmt.Fprintf(os.Stderr, "dbinfo: %v\n", err)
			os.Exit(1)
		}
		defer db.Client().Disconnect(context.Background())
		fmt.Println("Ping: ok")
	}
}

func printSettings(w io.Writer, s database.Settings) {
	fmt.Fprintf(w, "SSLSettings: isInvalidHostNameAllowed: %t\n", s.InvalidHostsAllowed)
	fmt.Fprintf(w, "SSLSettings: isEnabled: %t\n", s.TLSEnabled)
	fmt.Fprintf(w, "ReadConcern: %s\n", s.ReadConcern)
	fmt.Fprintf(w, "WriteConcern: %s\n", s.WriteConcern)
	fmt.Fprintf(w, "ReadPreference: %s\n", s.ReadPreference)
}
