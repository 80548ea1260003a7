package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/justyntemme/fadervst/pkg/fader"
	"github.com/justyntemme/fadervst/pkg/framework/param"
)

func runParams(args []string) error {
	var cfg config
	fs := flag.NewFlagSet("params", flag.ContinueOnError)
	cfg.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := cfg.apply(); err != nil {
		return err
	}

	p, err := cfg.newProcessor(2)
	if err != nil {
		return err
	}
	info := fader.Plugin{}.GetInfo()
	fmt.Printf("%s %s by %s (%s)\nuid %s\n\n", info.Name, info.Version, info.Vendor, info.Category, info.UIDString())
	return writeParams(os.Stdout, p.GetParameters())
}

func writeParams(w io.Writer, reg *param.Registry) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tVALUE\tDEFAULT\tFLAGS")
	for _, p := range reg.All() {
		flags := "automatable"
		if p.Flags&param.IsReadOnly != 0 {
			flags = "read-only"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", p.ID, p.Name, p.FormatValue(p.GetValue()), p.FormatValue(p.DefaultValue), flags)
	}
	return tw.Flush()
}
