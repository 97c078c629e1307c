// Command peerberry is a small demonstration client: it logs in with the
// credentials from the PEERBERRY_* environment (or peerberry.yaml), prints
// the portfolio overview and the ten largest investable loans, and logs
// out.
package main

import (
	"fmt"
	"os"

	"github.com/common-nighthawk/go-figure"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/peerberrygo/peerberry/auth"
	"github.com/peerberrygo/peerberry/client"
	"github.com/peerberrygo/peerberry/internal/config"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("peerberry")
	}
}

func run() error {
	c := config.New()
	configureLogging(c.GetLogLevel())
	displayAppname(c.GetAppName())

	api, err := client.New(auth.Credentials{
		Email:       c.GetEmail(),
		Password:    c.GetPassword(),
		TFASecret:   c.GetTFASecret(),
		AccessToken: c.GetAccessToken(),
	}, client.WithBaseURL(c.GetBaseURL()))
	if err != nil {
		return err
	}
	defer func() {
		if err := api.Logout(); err != nil {
			log.Warn().Err(err).Msg("logout failed")
		}
	}()

	if expiry, err := api.TokenExpiry(); err == nil {
		log.Info().Time("expires_at", expiry).Msg("authenticated")
	} else {
		log.Info().Msg("authenticated")
	}

	overview, err := api.Overview()
	if err != nil {
		return err
	}
	for key, value := range overview {
		fmt.Printf("%-30s %v\n", key, value)
	}

	loans, err := api.Loans(10, 0, client.LoanFilter{Sort: "loan_amount"})
	if err != nil {
		return err
	}
	fmt.Printf("\ntop %d loans by available amount:\n", len(loans))
	for _, loan := range loans {
		fmt.Printf("  loan %v: %v%% interest, %v available\n",
			loan["loanId"], loan["interestRate"], loan["availableToInvest"])
	}
	return nil
}

func configureLogging(level string) {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		parsed = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(parsed)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
