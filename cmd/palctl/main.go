// Command palctl drives the pal scheduler core from a trace file and a
// small XML configuration, the way cmd/bio-pamtool drives the bio encoding
// packages: a v.io/x/lib/cmdline tree with one subcommand per operation.
package main

import (
	"fmt"
	"log"

	"github.com/grailbio/base/cmdutil"
	"v.io/x/lib/cmdline"
)

func newCmdRun() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "run",
		Short:    "Schedule a trace file through the pal core and report final busy times",
		ArgsName: "tracepath",
	}
	opts := runOpts{
		configPath:  cmd.Flags.String("config", "", "Path to the XML Parameter/AddressLayout document"),
		latencyName: cmd.Flags.String("latency", "slc", "Latency technology: slc, mlc, or tlc"),
		snapshotOut: cmd.Flags.String("snapshot-out", "", "If set, persist the final stats.Snapshot to this path"),
	}
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 1 {
			return fmt.Errorf("run takes one trace path argument, but got %v", argv)
		}
		return runTrace(argv[0], opts, false)
	})
	return cmd
}

func newCmdStats() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "stats",
		Short:    "Like run, but prints the full per-operation stats.Snapshot",
		ArgsName: "tracepath",
	}
	opts := runOpts{
		configPath:  cmd.Flags.String("config", "", "Path to the XML Parameter/AddressLayout document"),
		latencyName: cmd.Flags.String("latency", "slc", "Latency technology: slc, mlc, or tlc"),
		snapshotOut: cmd.Flags.String("snapshot-out", "", "If set, persist the final stats.Snapshot to this path"),
	}
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 1 {
			return fmt.Errorf("stats takes one trace path argument, but got %v", argv)
		}
		return runTrace(argv[0], opts, true)
	})
	return cmd
}

func newCmdChecksum() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "checksum",
		Short:    "Compute a highwayhash checksum of a trace file's contents",
		ArgsName: "tracepath",
	}
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 1 {
			return fmt.Errorf("checksum takes one trace path argument, but got %v", argv)
		}
		return checksumFile(argv[0])
	})
	return cmd
}

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds | log.Lshortfile)
	cmdline.HideGlobalFlagsExcept()
	cmdline.Main(&cmdline.Command{
		Name:  "palctl",
		Short: "Drive the pal timeline scheduler from a trace file",
		Children: []*cmdline.Command{
			newCmdRun(),
			newCmdStats(),
			newCmdChecksum(),
		},
	})
}
