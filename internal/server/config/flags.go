package config

import (
	"flag"
	"os"
	"time"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":3000")
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-t int      session token validity, minutes
//	-r int      reset token validity, minutes
//	-v int      verification code validity, minutes (0 = never expires)
//	-f string   static assets directory
//	-b string   public base URL for reset links
//
// Duration flags are accepted as integers in minutes and then converted
// to time.Duration values.
func parseFlags(config *Config) {
	parseFlagsFromArgs(config, os.Args[1:])
}

func parseFlagsFromArgs(config *Config, args []string) {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	sessionTokenValidity := fs.Int("t", int(config.SessionTokenValidity.Minutes()), "session token validity (in minutes)")
	resetTokenValidity := fs.Int("r", int(config.ResetTokenValidity.Minutes()), "reset token validity (in minutes)")
	verificationCodeTTL := fs.Int("v", int(config.VerificationCodeTTL.Minutes()), "verification code validity (in minutes, 0 = never expires)")

	fs.StringVar(&config.StaticDir, "f", config.StaticDir, "static assets directory")
	fs.StringVar(&config.PublicBaseURL, "b", config.PublicBaseURL, "public base URL")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.SessionTokenValidity = time.Duration(*sessionTokenValidity) * time.Minute
	config.ResetTokenValidity = time.Duration(*resetTokenValidity) * time.Minute
	config.VerificationCodeTTL = time.Duration(*verificationCodeTTL) * time.Minute
}
