package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/eastsecure/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-g string   gRPC health bind address (e.g., ":50051")
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-m string   session strategy: jwt | database
//	-l string   log format: json | text
//	-u string   scanner base URL
//	-q string   scan queue backend: memory | amqp
//	-w int      scan workers
//	-b string   S3 bucket for scan reports (empty disables archiving)
//
// Only these flags are read; everything else on the command line is left for
// other components (see flagx.FilterArgs).
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-g", "-d", "-s", "-m", "-l", "-u", "-q", "-w", "-b"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "HTTP address and port")
	fs.StringVar(&config.GRPCAddr, "g", config.GRPCAddr, "gRPC health address and port")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.StringVar(&config.SessionStrategy, "m", config.SessionStrategy, "session strategy (jwt|database)")
	fs.StringVar(&config.LogFormat, "l", config.LogFormat, "log format (json|text)")
	fs.StringVar(&config.ScannerURL, "u", config.ScannerURL, "scanner base URL")
	fs.StringVar(&config.ScanQueueBackend, "q", config.ScanQueueBackend, "scan queue backend (memory|amqp)")
	fs.IntVar(&config.ScanWorkers, "w", config.ScanWorkers, "scan workers")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket for scan reports")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
