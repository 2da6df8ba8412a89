package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/iwvelando/installment-plan/internal/catalog"
	"github.com/iwvelando/installment-plan/internal/checkout"
	"github.com/iwvelando/installment-plan/internal/config"
	"github.com/iwvelando/installment-plan/pkg/constants"
	"github.com/iwvelando/installment-plan/pkg/datetime"
	"github.com/iwvelando/installment-plan/pkg/format"
	"github.com/iwvelando/installment-plan/pkg/output"
	"github.com/iwvelando/installment-plan/pkg/validation"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func listBanks(w io.Writer, cat *catalog.Catalog) {
	fmt.Fprintf(w, "%-8s | %-8s | %-6s | %s\n", "ID", "Bank", "Months", "Interest")
	for _, offer := range cat.Offers() {
		fmt.Fprintf(w, "%-8s | %-8s | %-6d | %s\n", offer.ID, offer.Name, offer.TermMonths, format.Percent(offer.InterestRate))
	}
}

func main() {
	products := productQuantities{}

	// Process command line flags first to get config location
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file")
	bankID := flag.String("bank", "", "bank offer to finance with (see -list-banks)")
	amountFlag := flag.String("amount", "", "purchase total to finance")
	flag.Var(products, "product", "product to buy as id[:quantity], repeatable; replaces -amount")
	dateFlag := flag.String("date", "", "purchase date (YYYY-MM-DD), defaults to today")
	outputFormatFlag := flag.String("output-format", "", "type of output override: pretty, csv, json, xlsx")
	outputFile := flag.String("output-file", "", "write the plan to this file instead of stdout")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	listBanksFlag := flag.Bool("list-banks", false, "list the available bank offers and exit")
	flag.Parse()

	// Load the config file to get logging configuration
	conf, err := config.LoadConfigurationOrDefault(*configLocation, constants.DefaultConfigFile)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		os.Exit(1)
	}

	if *logLevel != "" {
		if err := validation.ValidateLogLevel(*logLevel); err != nil {
			fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"invalid log level\", \"error\": \"%v\"}\n", err)
			os.Exit(1)
		}
	}

	// Initialize logging based on config and CLI override
	logger, err := config.BuildLogger(conf.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	cat := catalog.Default()
	if *listBanksFlag {
		listBanks(os.Stdout, cat)
		return
	}

	// Determine output format (CLI override takes precedence over config)
	outputFormat := conf.Output.Format
	if *outputFormatFlag != "" {
		outputFormat = *outputFormatFlag
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}

	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		logger.Fatal(err.Error(),
			zap.String("op", "main"),
		)
	}
	if outputFormat == constants.OutputFormatXLSX && *outputFile == "" {
		logger.Fatal("xlsx output requires -output-file",
			zap.String("op", "main"),
		)
	}

	// Validate configuration and display any warnings
	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	if *bankID == "" {
		logger.Fatal("a bank is required, use -list-banks to see the offers",
			zap.String("op", "main"),
		)
	}

	total, err := purchaseTotal(conf, *amountFlag, products)
	if err != nil {
		logger.Fatal("failed to determine purchase total",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	purchaseDate, err := datetime.ParseDate(*dateFlag, time.Now())
	if err != nil {
		logger.Fatal("failed to parse purchase date",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	svc := checkout.NewService(logger, cat, nil, nil)
	quote, err := svc.QuoteOn(context.Background(), total, *bankID, purchaseDate)
	if err != nil {
		logger.Fatal("failed to compute installment plan",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	// Handle output.
	var w io.Writer = os.Stdout
	if *outputFile != "" {
		f, err := os.Create(*outputFile)
		if err != nil {
			logger.Fatal("failed to create output file",
				zap.String("op", "main"),
				zap.String("path", *outputFile),
				zap.Error(err),
			)
		}
		defer func() {
			if err := f.Close(); err != nil {
				logger.Error("failed to close output file",
					zap.String("op", "main"),
					zap.Error(err),
				)
			}
		}()
		w = f
	}

	if err := output.Write(w, outputFormat, quote.Result); err != nil {
		logger.Error("failed to write installment plan",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
}

// purchaseTotal resolves the amount to finance from either -amount or the
// -product selections.
func purchaseTotal(conf *config.Configuration, amount string, products productQuantities) (decimal.Decimal, error) {
	amount = strings.TrimSpace(amount)
	switch {
	case amount != "" && len(products) > 0:
		return decimal.Zero, errors.New("use either -amount or -product, not both")
	case amount != "":
		total, err := decimal.NewFromString(amount)
		if err != nil {
			return decimal.Zero, fmt.Errorf("invalid amount %q: %w", amount, err)
		}
		return total, nil
	case len(products) > 0:
		c, err := conf.ProductList().Fill(products)
		if err != nil {
			return decimal.Zero, err
		}
		return c.Total(), nil
	default:
		return decimal.Zero, errors.New("either -amount or -product is required")
	}
}
