package main

import (
	"fmt"

	"github.com/grailbio/base/log"
	"github.com/pkg/errors"

	"nandpal/addr"
	"nandpal/config"
	"nandpal/latency"
	"nandpal/pal"
	"nandpal/stats"
	"nandpal/trace"
)

type runOpts struct {
	configPath  *string
	latencyName *string
	snapshotOut *string
}

func parseLatencyName(name string) (latency.Technology, error) {
	switch name {
	case "slc", "SLC":
		return latency.SLC, nil
	case "mlc", "MLC":
		return latency.MLC, nil
	case "tlc", "TLC":
		return latency.TLC, nil
	default:
		return 0, fmt.Errorf("unknown latency technology %q", name)
	}
}

func runTrace(tracePath string, opts runOpts, printSnapshot bool) error {
	p, seq, stripe, err := config.Load(*opts.configPath)
	if err != nil {
		return err
	}
	layout, err := config.BuildLayout(p, seq, stripe)
	if err != nil {
		return err
	}

	tech, err := parseLatencyName(*opts.latencyName)
	if err != nil {
		return err
	}
	table := latency.NewTable(tech)

	cmds, err := trace.LoadFile(tracePath)
	if err != nil {
		return err
	}

	collector := stats.NewCollector()
	numChannels := int(layout.Size(addr.AxisChannel))
	numDies := numChannels * int(layout.Size(addr.AxisWay)) * int(layout.Size(addr.AxisDie))
	facade := pal.NewFacade(layout, table, collector, numChannels, numDies,
		table.ChannelThresholds(), table.DieThresholds(), false)

	for i, cmd := range cmds {
		done, err := facade.Submit(cmd)
		if err != nil {
			return errors.Wrapf(err, "command %d (ppn=%d)", i, cmd.PPN)
		}
		log.Debug.Printf("cmd %d: ppn=%d op=%s start=%d finish=%d", i, done.PPN, done.Operation, done.StartTick, done.FinishTick)
	}

	busy := facade.InquireBusyTime(0)
	fmt.Printf("commands: %d\n", len(cmds))
	fmt.Printf("union MEM busy time: %d ticks\n", busy)
	fmt.Printf("read busy: %d ticks\n", facade.OpBusyTime(pal.OpRead))
	fmt.Printf("write busy: %d ticks\n", facade.OpBusyTime(pal.OpWrite))
	fmt.Printf("erase busy: %d ticks\n", facade.OpBusyTime(pal.OpErase))

	snap := collector.Snapshot()
	if printSnapshot {
		fmt.Printf("snapshot: %+v\n", snap)
	}
	if *opts.snapshotOut != "" {
		if err := stats.SaveSnapshot(*opts.snapshotOut, snap); err != nil {
			return err
		}
	}
	return nil
}
