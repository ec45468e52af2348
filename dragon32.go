// This file is part of dragon32.
//
// dragon32 is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// dragon32 is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with dragon32.  If not, see <https://www.gnu.org/licenses/>.

package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/bradleyjkemp/memviz"
	"github.com/sevenhills/dragon32/console"
	"github.com/sevenhills/dragon32/hardware"
	"github.com/sevenhills/dragon32/hardware/clocks"
	"github.com/sevenhills/dragon32/logger"
	"github.com/sevenhills/dragon32/statsview"
	"github.com/sevenhills/dragon32/version"
)

func main() {
	mode := "run"
	args := os.Args[1:]
	if len(args) > 0 {
		mode = args[0]
		args = args[1:]
	}

	var err error
	switch mode {
	case "run":
		err = run(args)
	case "perf":
		err = perf(args)
	case "state":
		err = stateMode(args)
	case "version":
		v, rev, _ := version.Version()
		fmt.Printf("%s %s (%s)\n", version.ApplicationName, v, rev)
	default:
		fmt.Fprintf(os.Stderr, "usage: %s [run|perf|state|version] ...\n", version.ApplicationName)
		os.Exit(10)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", version.ApplicationName, err)
		os.Exit(10)
	}
}

// attach prepares a machine from the common command line options.
func attach(d *hardware.Dragon, basic string, extended string, cart string, tape string) error {
	roms := []struct {
		slot     int
		filename string
	}{
		{hardware.ROMBasic, basic},
		{hardware.ROMExtended, extended},
		{hardware.ROMCartridge, cart},
	}
	for _, r := range roms {
		if r.filename == "" {
			continue
		}
		if err := d.AttachROM(r.slot, r.filename); err != nil {
			return err
		}
	}

	if tape != "" {
		if err := d.Cassette.Load(tape); err != nil {
			return err
		}
	}

	return nil
}

func run(args []string) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	basic := fs.String("basic", "", "BASIC ROM image")
	extended := fs.String("extended", "", "extended BASIC ROM image")
	cart := fs.String("cart", "", "cartridge ROM image")
	tape := fs.String("tape", "", "cassette image (wav or mp3)")
	record := fs.String("record", "", "record cassette output to wav file")
	stats := fs.Bool("stats", false, "launch statistics server")
	echo := fs.Bool("log", false, "echo log entries to stderr")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *echo {
		logger.SetEcho(os.Stderr)
	}
	if *stats {
		statsview.Launch(os.Stdout)
	}

	d := hardware.NewDragon(nil)
	if err := attach(d, *basic, *extended, *cart, *tape); err != nil {
		return err
	}
	d.Reset(true)

	if *record != "" {
		d.Cassette.StartRecording(*record)
		defer func() {
			if err := d.Cassette.EndRecording(); err != nil {
				fmt.Fprintf(os.Stderr, "%v\n", err)
			}
		}()
	}

	cons, err := console.NewConsole()
	if err != nil {
		return err
	}
	defer cons.CleanUp()

	fmt.Println("q quit, p pause, m motor, w save state, other keys go to the machine")

	// pace fields against the wall clock
	fieldSec := float64(time.Second) * clocks.TicksPerField / clocks.CrystalHz
	fieldDur := time.Duration(fieldSec)
	pulse := time.NewTicker(fieldDur)
	defer pulse.Stop()

	paused := false
	var held rune

	for {
		<-pulse.C

		// keys held from the previous field are released before this one
		if held != 0 {
			d.Keyboard.SetKey(held, false)
			held = 0
		}

		if k, ok := cons.ReadKey(); ok {
			switch k {
			case 'q':
				return nil
			case 'p':
				paused = !paused
			case 'm':
				d.Cassette.SetMotor(!d.Cassette.Motor())
			case 'w':
				if err := d.Save("dragon32.state"); err != nil {
					fmt.Fprintf(os.Stderr, "%v\n", err)
				}
			default:
				if d.Keyboard.SetKey(rune(k), true) {
					held = rune(k)
				}
			}
		}

		if !paused {
			d.Idle(clocks.TicksPerField)
		}
	}
}

func perf(args []string) error {
	fs := flag.NewFlagSet("perf", flag.ExitOnError)
	fields := fs.Int("fields", 3600, "number of fields to run")
	stats := fs.Bool("stats", false, "launch statistics server")
	tape := fs.String("tape", "", "cassette image (wav or mp3)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *stats {
		statsview.Launch(os.Stdout)
	}

	d := hardware.NewDragon(nil)
	if *tape != "" {
		if err := d.Cassette.Load(*tape); err != nil {
			return err
		}
		d.Cassette.SetMotor(true)
	}

	start := time.Now()
	for i := 0; i < *fields; i++ {
		d.Idle(clocks.TicksPerField)
	}
	elapsed := time.Since(start)

	emulated := float64(*fields) * clocks.TicksPerField / clocks.CrystalHz
	fmt.Printf("%d fields in %v\n", *fields, elapsed)
	fmt.Printf("%.2fx real time\n", emulated/elapsed.Seconds())

	return nil
}

func stateMode(args []string) error {
	fs := flag.NewFlagSet("state", flag.ExitOnError)
	load := fs.String("load", "", "machine state to restore before dumping")
	out := fs.String("o", "dragon32.dot", "output file for the state graph")
	if err := fs.Parse(args); err != nil {
		return err
	}

	d := hardware.NewDragon(nil)
	if *load != "" {
		if err := d.Load(*load); err != nil {
			return err
		}
	}

	f, err := os.Create(*out)
	if err != nil {
		return fmt.Errorf("state: %w", err)
	}
	defer f.Close()

	memviz.Map(f, d)
	fmt.Printf("state graph written to %s\n", *out)

	return nil
}
