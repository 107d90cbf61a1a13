package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"lp-radar/internal/filter"
	"lp-radar/internal/guardrail"
)

func main() {
	logger := log.New(os.Stderr, "[profilectl] ", 0)

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "list":
		err = runList(os.Args[2:])
	case "show":
		err = runShow(os.Args[2:])
	case "switch":
		err = runSwitch(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		logger.Fatal(err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `Usage: profilectl <command> [flags]

Commands:
  list     List built-in risk profiles
  show     Show the active profile and switch cooldown state
  switch   Switch the active profile (subject to the cooldown)

Flags common to show and switch:
  -state   Path to the persisted active-profile record (default "profile.json")`)
}

// runList prints the built-in profiles, strictest first.
func runList(args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	for _, name := range filter.BuiltinProfileNames() {
		p, err := filter.BuiltinProfile(name)
		if err != nil {
			return err
		}
		fmt.Printf("%-14s add >= %g SOL or $%g, remove >= %g%%, spike >= %gx, quota %d/day\n",
			p.Name, p.MinLiquiditySol, p.MinLiquidityUSD, p.MinRemovePct,
			p.MinVolumeMultiplier, p.DailyActionQuota)
	}
	return nil
}

// runShow prints the active profile record and whether a switch is
// currently permitted.
func runShow(args []string) error {
	fs := flag.NewFlagSet("show", flag.ExitOnError)
	statePath := fs.String("state", "profile.json", "Path to the persisted active-profile record")
	asJSON := fs.Bool("json", false, "Print the record as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	record, err := filter.LoadActiveProfile(*statePath)
	if err != nil {
		return err
	}

	if *asJSON {
		data, err := json.MarshalIndent(record, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Printf("Active profile: %s\n", record.Name)
	if record.SwitchedAt.IsZero() {
		fmt.Println("Last switch:    never (switch permitted)")
		return nil
	}

	fmt.Printf("Last switch:    %s\n", record.SwitchedAt.UTC().Format(time.RFC3339))
	earliest := record.SwitchedAt.Add(guardrail.SwitchCooldown)
	if time.Now().Before(earliest) {
		fmt.Printf("Locked until:   %s\n", earliest.UTC().Format(time.RFC3339))
	} else {
		fmt.Println("Switch permitted")
	}
	return nil
}

// runSwitch changes the active profile, enforcing the cooldown seeded
// from the persisted record.
func runSwitch(args []string) error {
	fs := flag.NewFlagSet("switch", flag.ExitOnError)
	statePath := fs.String("state", "profile.json", "Path to the persisted active-profile record")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if fs.NArg() != 1 {
		return fmt.Errorf("usage: profilectl switch [-state path] <profile>")
	}
	name := fs.Arg(0)

	profile, err := filter.BuiltinProfile(name)
	if err != nil {
		return fmt.Errorf("%w (built-ins: %v)", err, filter.BuiltinProfileNames())
	}

	record, err := filter.LoadActiveProfile(*statePath)
	if err != nil {
		return err
	}

	if record.Name == profile.Name {
		fmt.Printf("Profile %s is already active\n", profile.Name)
		return nil
	}

	guard := guardrail.New(profile.DailyActionQuota, record.SwitchedAt, nil)
	now := time.Now()
	if err := guard.RequestProfileSwitch(now); err != nil {
		var locked *guardrail.ProfileLockedError
		if errors.As(err, &locked) {
			return fmt.Errorf("cannot switch from %s: %w", record.Name, locked)
		}
		return err
	}

	record = filter.ActiveProfileRecord{Name: profile.Name, SwitchedAt: now}
	if err := filter.SaveActiveProfile(*statePath, record); err != nil {
		return err
	}

	fmt.Printf("Switched to %s (next switch allowed after %s)\n",
		profile.Name, now.Add(guardrail.SwitchCooldown).UTC().Format(time.RFC3339))
	return nil
}
