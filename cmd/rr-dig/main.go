// Command rr-dig is a thin dig-like front end for the stub resolver
// library: it resolves one name against the configured nameserver and
// prints the matching records.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/haukened/rr-stub/internal/dns/common/log"
	"github.com/haukened/rr-stub/internal/dns/config"
	"github.com/haukened/rr-stub/internal/dns/domain"
	"github.com/haukened/rr-stub/internal/dns/resolvconf"
	"github.com/haukened/rr-stub/internal/dns/resolver"
)

const (
	version = "0.1.0-dev"
	appName = "rr-dig"
)

func main() {
	auth := flag.Bool("auth", false, "project the authority section instead of the answers")
	ad := flag.Bool("ad", false, "set the AD bit and print the header summary, answer and authority records")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 || flag.NArg() > 2 {
		usage()
		os.Exit(2)
	}
	name := flag.Arg(0)
	qtype := domain.RRTypeA
	if flag.NArg() == 2 {
		qtype = domain.RRTypeFromString(flag.Arg(1))
		if qtype == 0 {
			fmt.Fprintf(os.Stderr, "unknown record type %q\n", flag.Arg(1))
			os.Exit(2)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}
	if err := log.Configure(cfg.Env, cfg.LogLevel); err != nil {
		fmt.Fprintf(os.Stderr, "Logging configuration error: %v\n", err)
		os.Exit(1)
	}

	seed, err := resolver.NewSeed(resolver.SeedOptions{
		Source:  resolvconf.Source{Server: cfg.Server, Path: cfg.ResolvConf},
		Timeout: time.Duration(cfg.TimeoutMS) * time.Millisecond,
		Retries: cfg.Retries,
	})
	if err != nil {
		log.Fatal(map[string]any{"error": err}, "Failed to build resolver seed")
	}

	log.Debug(map[string]any{
		"version": version,
		"server":  seed.Addr().String(),
		"name":    name,
		"type":    qtype.String(),
	}, "Starting lookup")

	err = resolver.WithResolver(seed, func(r *resolver.Resolver) error {
		ctx := context.Background()
		if *ad {
			msg, err := r.LookupRawAD(ctx, name, qtype)
			if err != nil {
				return err
			}
			printMessage(msg)
			return nil
		}

		lookup := r.Lookup
		if *auth {
			lookup = r.LookupAuth
		}
		answers, err := lookup(ctx, name, qtype)
		if err != nil {
			return err
		}
		for _, rd := range answers {
			fmt.Println(rd)
		}
		return nil
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", appName, err)
		os.Exit(1)
	}
}

func printMessage(msg domain.Message) {
	fmt.Printf(";; id %d rcode %s ad %t\n", msg.Header.ID, msg.RCode(), msg.Header.Flags.AuthenticData)
	for _, rr := range msg.Answers {
		fmt.Println(rr)
	}
	for _, rr := range msg.Authority {
		fmt.Println(rr)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "usage: %s [-ad] [-auth] name [type]\n", appName)
	flag.PrintDefaults()
}
