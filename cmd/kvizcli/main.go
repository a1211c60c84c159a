package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"psp.com/kviz/backend/internal/catalog"
	"psp.com/kviz/backend/internal/config"
	"psp.com/kviz/backend/internal/logger"
	"psp.com/kviz/backend/internal/quiz"
)

func main() {
	configPath := flag.String("config", "quiz.yaml", "Path to the quiz config file")
	mode := flag.String("mode", "", "Source id, exam id or exam alias to draw a round from")
	n := flag.Int("n", 0, "Number of questions (defaults to round.size from the config)")
	seed := flag.Int64("seed", 0, "Seed for a reproducible draw (omit to draw randomly)")
	dump := flag.String("dump", "", "Source id whose parsed bank is written as JSON")
	output := flag.String("output", "", "Output file for -dump (defaults to <source id>.json)")
	answersFlag := flag.Bool("answers", false, "Print the accepted answers under each question")
	verbose := flag.Bool("verbose", false, "Enable verbose output")

	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	log := logger.Nop()
	if *verbose {
		if log, err = logger.New(cfg.LogMode); err != nil {
			fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
			os.Exit(1)
		}
		defer log.Sync()
	}
	cat := catalog.New(cfg, log)

	switch {
	case *dump != "":
		dumpBank(cat, *dump, *output)
	case *mode != "":
		count := *n
		if count == 0 {
			count = cfg.Round.Size
		}
		req := quiz.Request{N: count, Seed: explicitSeed(flag.CommandLine, *seed)}
		printRound(cat, *mode, req, *answersFlag, cfg.Round.PassThreshold)
	default:
		fmt.Fprintf(os.Stderr, "Usage: kvizcli -config <file> (-mode <mode> [-n N] [-seed S] [-answers] | -dump <source id> [-output <file>])\n\n")
		fmt.Fprintf(os.Stderr, "Modes:\n")
		for _, m := range cat.Modes() {
			line := fmt.Sprintf("  %-10s %s", m.ID, m.Name)
			if len(m.Aliases) > 0 {
				line += " (" + strings.Join(m.Aliases, ", ") + ")"
			}
			if m.Error != "" {
				line += " - unavailable: " + m.Error
			} else {
				line += fmt.Sprintf(" - %d questions", m.Questions)
			}
			fmt.Fprintln(os.Stderr, line)
		}
		os.Exit(2)
	}
}

// explicitSeed returns seed when -seed was given on the command line, so
// -seed 0 draws reproducibly like any other value.
func explicitSeed(fs *flag.FlagSet, seed int64) *int64 {
	given := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "seed" {
			given = true
		}
	})
	if !given {
		return nil
	}
	return &seed
}

func dumpBank(cat *catalog.Catalog, id, output string) {
	bank, err := cat.Bank(id)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading source %s: %v\n", id, err)
		os.Exit(1)
	}
	if output == "" {
		output = id + ".json"
	}
	if err := bank.Save(output); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", output, err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %d questions to %s\n", bank.Len(), output)
}

func printRound(cat *catalog.Catalog, mode string, req quiz.Request, withAnswers bool, threshold int) {
	round, err := cat.NewRound(mode, req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error drawing round: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Round %s (%s), %d questions, pass at %d\n\n", round.ID, round.Mode, len(round.Questions), threshold)
	for i, q := range round.Questions {
		fmt.Printf("%2d. %s\n", i+1, q)
		if images, _ := cat.Images(round, i); len(images) > 0 {
			fmt.Printf("    images: %s\n", strings.Join(images, ", "))
		}
		if !withAnswers {
			continue
		}
		ans, _ := round.Answers(i)
		for _, a := range ans {
			fmt.Printf("    - %s\n", a)
		}
	}
}
